package presolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolVar(m *Model, name string) VarID {
	return m.AddVariable(newVar(name, 0, 1))
}

func TestRuleBool2IntTightensBothWays(t *testing.T) {
	m := NewModel()
	b := boolVar(m, "b")
	i := m.AddVariable(newVar("i", 0, 5))
	c := &Constraint{Tag: "bool2int", Active: true, Args: []Argument{VarArg(b), VarArg(i)}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleBool2Int(ps, cid))
	assert.Equal(t, int64(0), m.Var(b).Domain.Min())
	assert.Equal(t, int64(1), m.Var(b).Domain.Max())
	assert.Equal(t, int64(1), m.Var(i).Domain.Max())
}

func TestRuleArrayBoolOrEmptyArrayForcesFalse(t *testing.T) {
	m := NewModel()
	r := boolVar(m, "r")
	c := &Constraint{Tag: "array_bool_or", Active: true, Args: []Argument{VarListArg(nil), VarArg(r)}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleArrayBoolOr(ps, cid))
	assert.False(t, c.Active)
	assert.Equal(t, int64(0), m.Var(r).Domain.Value())
}

func TestRuleArrayBoolOrAnyTrueForcesResultTrue(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(newVar("a", 1, 1))
	b := boolVar(m, "b")
	r := boolVar(m, "r")
	c := &Constraint{Tag: "array_bool_or", Active: true, Args: []Argument{VarListArg([]VarID{a, b}), VarArg(r)}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleArrayBoolOr(ps, cid))
	assert.False(t, c.Active)
	assert.Equal(t, int64(1), m.Var(r).Domain.Value())
}

func TestRuleArrayBoolOrResultFalseForcesAllElementsFalse(t *testing.T) {
	m := NewModel()
	a := boolVar(m, "a")
	b := boolVar(m, "b")
	r := m.AddVariable(newVar("r", 0, 0))
	c := &Constraint{Tag: "array_bool_or", Active: true, Args: []Argument{VarListArg([]VarID{a, b}), VarArg(r)}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleArrayBoolOr(ps, cid))
	assert.Equal(t, int64(0), m.Var(a).Domain.Value())
	assert.Equal(t, int64(0), m.Var(b).Domain.Value())
}

func TestRuleArrayBoolAndEmptyArrayForcesTrue(t *testing.T) {
	m := NewModel()
	r := boolVar(m, "r")
	c := &Constraint{Tag: "array_bool_and", Active: true, Args: []Argument{VarListArg(nil), VarArg(r)}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleArrayBoolAnd(ps, cid))
	assert.Equal(t, int64(1), m.Var(r).Domain.Value())
}

func TestRuleBoolXorBothFixedForcesResult(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(newVar("a", 1, 1))
	b := m.AddVariable(newVar("b", 0, 0))
	r := boolVar(m, "r")
	c := &Constraint{Tag: "bool_xor", Active: true, Args: []Argument{VarArg(a), VarArg(b), VarArg(r)}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleBoolXor(ps, cid))
	assert.Equal(t, int64(1), m.Var(r).Domain.Value())
}

func TestRuleBoolNotFixedInput(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(newVar("a", 1, 1))
	b := boolVar(m, "b")
	c := &Constraint{Tag: "bool_not", Active: true, Args: []Argument{VarArg(a), VarArg(b)}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleBoolNot(ps, cid))
	assert.Equal(t, int64(0), m.Var(b).Domain.Value())
}

func TestRuleBoolClauseSingleSatisfiedLiteralDeactivates(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(newVar("a", 1, 1))
	b := boolVar(m, "b")
	c := &Constraint{Tag: "bool_clause", Active: true, Args: []Argument{VarListArg([]VarID{a}), VarListArg([]VarID{b})}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleBoolClause(ps, cid))
	assert.False(t, c.Active)
	assert.False(t, c.SetAsFalseFlag)
}

func TestRuleBoolClauseAllFalseIsUnsatisfiable(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(newVar("a", 0, 0))
	b := m.AddVariable(newVar("b", 1, 1)) // negated, so "not b" is false
	c := &Constraint{Tag: "bool_clause", Active: true, Args: []Argument{VarListArg([]VarID{a}), VarListArg([]VarID{b})}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleBoolClause(ps, cid))
	assert.True(t, c.SetAsFalseFlag)
}

func TestRuleBoolClauseLastLiteralForced(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(newVar("a", 0, 0))
	b := boolVar(m, "b")
	c := &Constraint{Tag: "bool_clause", Active: true, Args: []Argument{VarListArg([]VarID{a, b}), VarListArg(nil)}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleBoolClause(ps, cid))
	assert.Equal(t, int64(1), m.Var(b).Domain.Value())
}
