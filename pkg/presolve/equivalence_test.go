package presolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRepresentativeCompressesPath(t *testing.T) {
	e := newEquivalence()
	e.parent[1] = 2
	e.parent[2] = 3
	e.parent[3] = 4

	rep := e.FindRepresentative(1)
	assert.Equal(t, VarID(4), rep)
	// path compression: every visited node now points straight at the root.
	assert.Equal(t, VarID(4), e.parent[1])
	assert.Equal(t, VarID(4), e.parent[2])
	assert.Equal(t, VarID(4), e.parent[3])
}

func TestAddVariableSubstitutionPrefersEliminatingTemporary(t *testing.T) {
	m := NewModel()
	named := m.AddVariable(&Variable{Name: "x", Domain: NewIntervalDomain(0, 10), Active: true, DefiningConstraint: InvalidConstraintID})
	temp := m.AddVariable(&Variable{Name: "_t1", Domain: NewIntervalDomain(0, 10), Temporary: true, Active: true, DefiningConstraint: InvalidConstraintID})

	e := newEquivalence()
	changed := e.AddVariableSubstitution(m, temp, named)
	require.True(t, changed)

	assert.False(t, m.Var(temp).Active)
	assert.True(t, m.Var(named).Active)
	assert.Equal(t, named, e.FindRepresentative(temp))
}

func TestAddVariableSubstitutionEliminatesFromWhenNeitherIsTemporary(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(&Variable{Name: "a", Domain: NewIntervalDomain(0, 10), Active: true, DefiningConstraint: InvalidConstraintID})
	b := m.AddVariable(&Variable{Name: "b", Domain: NewIntervalDomain(5, 15), Active: true, DefiningConstraint: InvalidConstraintID})

	e := newEquivalence()
	require.True(t, e.AddVariableSubstitution(m, a, b))

	assert.False(t, m.Var(a).Active)
	// The surviving variable's domain narrows to the intersection.
	assert.Equal(t, int64(5), m.Var(b).Domain.Min())
	assert.Equal(t, int64(10), m.Var(b).Domain.Max())
}

func TestAddVariableSubstitutionNoOpWhenAlreadyUnified(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(newVar("a", 0, 10))
	e := newEquivalence()
	assert.False(t, e.AddVariableSubstitution(m, a, a))
}

func TestSubstituteEverywhereRewritesArgsAndAnnotations(t *testing.T) {
	m := NewModel()
	a := m.AddVariable(newVar("a", 0, 10))
	b := m.AddVariable(newVar("b", 0, 10))
	cid := m.AddConstraint(&Constraint{Tag: "int_le", Active: true, Args: []Argument{VarArg(a), IntArg(5)}})
	m.SearchAnnotations = append(m.SearchAnnotations, &SearchAnnotation{IsVar: true, Var: a})

	e := newEquivalence()
	aux := newAuxMaps()
	require.True(t, e.AddVariableSubstitution(m, a, b))
	e.SubstituteEverywhere(m, aux)

	assert.Equal(t, b, m.Constraint(cid).Args[0].Var)
	assert.Equal(t, b, m.SearchAnnotations[0].Var)
	assert.False(t, e.HasPending())
}
