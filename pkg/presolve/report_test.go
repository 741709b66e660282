package presolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReportDiffAcrossEquivalentRuns(t *testing.T) {
	build := func() *Model {
		m := NewModel()
		x := m.AddVariable(newVar("x", 0, 10))
		y := m.AddVariable(newVar("y", 0, 10))
		m.AddConstraint(&Constraint{Tag: "int_eq", Active: true, Args: []Argument{VarArg(x), VarArg(y)}})
		m.AddConstraint(&Constraint{Tag: "int_le", Active: true, Args: []Argument{VarArg(y), IntArg(4)}})
		return m
	}

	ps1 := NewPresolver(DefaultPresolverOptions())
	_, report1, err := ps1.Run(build())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	ps2 := NewPresolver(DefaultPresolverOptions())
	_, report2, err := ps2.Run(build())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if diff := cmp.Diff(report1, report2); diff != "" {
		t.Errorf("presolving the same model twice produced different reports (-first +second):\n%s", diff)
	}
}
