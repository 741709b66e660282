package presolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLinearRejectsMismatchedArity(t *testing.T) {
	m := NewModel()
	ps := newTestPresolver(m)
	c := &Constraint{Tag: "int_lin_eq", Args: []Argument{IntListArg([]int64{1, 2}), VarListArg([]VarID{0})}}
	_, ok := decodeLinear(ps, c)
	assert.False(t, ok)
}

func TestRuleIntLinearCanonicalizesGeToLe(t *testing.T) {
	m := NewModel()
	x := m.AddVariable(newVar("x", 0, 20))
	c := &Constraint{Tag: "int_lin_ge", Active: true, Args: []Argument{
		IntListArg([]int64{1}), VarListArg([]VarID{x}), IntArg(5),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleIntLinear(ps, cid))
	// x >= 5 after canonicalization and unary simplification.
	assert.Equal(t, int64(5), m.Var(x).Domain.Min())
}

func TestRuleIntLinearUnaryEqualityFixesVariable(t *testing.T) {
	m := NewModel()
	x := m.AddVariable(newVar("x", 0, 20))
	// 2x = 10 -> x = 5
	c := &Constraint{Tag: "int_lin_eq", Active: true, Args: []Argument{
		IntListArg([]int64{2}), VarListArg([]VarID{x}), IntArg(10),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleIntLinear(ps, cid))
	assert.False(t, c.Active)
	assert.Equal(t, int64(5), m.Var(x).Domain.Value())
}

func TestRuleIntLinearEvaluatesFixedVariables(t *testing.T) {
	m := NewModel()
	fixed := m.AddVariable(newVar("k", 3, 3))
	x := m.AddVariable(newVar("x", 0, 20))
	// k + x = 10, k fixed at 3 -> x = 7
	c := &Constraint{Tag: "int_lin_eq", Active: true, Args: []Argument{
		IntListArg([]int64{1, 1}), VarListArg([]VarID{fixed, x}), IntArg(10),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleIntLinear(ps, cid))
	assert.False(t, c.Active)
	assert.Equal(t, int64(7), m.Var(x).Domain.Value())
}

func TestRuleIntLinearRegroupsDuplicateVariables(t *testing.T) {
	m := NewModel()
	x := m.AddVariable(newVar("x", 0, 20))
	// x + x = 10 regroups to 2x = 10 -> x = 5
	c := &Constraint{Tag: "int_lin_eq", Active: true, Args: []Argument{
		IntListArg([]int64{1, 1}), VarListArg([]VarID{x, x}), IntArg(10),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleIntLinear(ps, cid))
	assert.Equal(t, int64(5), m.Var(x).Domain.Value())
}

func TestRuleIntLinearNoVariablesLeftEvaluatesConstant(t *testing.T) {
	m := NewModel()
	fixed := m.AddVariable(newVar("k", 3, 3))
	c := &Constraint{Tag: "int_lin_eq", Active: true, Args: []Argument{
		IntListArg([]int64{1}), VarListArg([]VarID{fixed}), IntArg(3),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleIntLinear(ps, cid))
	assert.False(t, c.Active)
	assert.False(t, c.SetAsFalseFlag)
}

func TestRuleIntLinearBinaryRecordsAffineEquality(t *testing.T) {
	m := NewModel()
	y := m.AddVariable(newVar("y", 0, 10))
	z := m.AddVariable(newVar("z", 0, 10))
	// y - z = 0
	c := &Constraint{Tag: "int_lin_eq", Active: true, Args: []Argument{
		IntListArg([]int64{1, -1}), VarListArg([]VarID{y, z}), IntArg(0),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	ruleIntLinear(ps, cid)
	rel, ok := ps.aux.AffineMap[z]
	require.True(t, ok)
	assert.Equal(t, y, rel.V)
	assert.Equal(t, int64(1), rel.Coef)
	assert.Equal(t, int64(0), rel.Offset)
	// y-z=0 names no distinct a/b pair, so it must not leak into DifferenceMap.
	_, diffOK := ps.aux.DifferenceMap[z]
	assert.False(t, diffOK)
	// The recognized relation is advisory; the constraint itself survives.
	assert.True(t, c.Active)
}

func TestSimplifyIntLinEqReifDecidesFromBounds(t *testing.T) {
	m := NewModel()
	x := m.AddVariable(newVar("x", 0, 3))
	y := m.AddVariable(newVar("y", 0, 3))
	b := m.AddVariable(newVar("b", 0, 1))
	// x + y <= 100 always holds given bounds [0,3]+[0,3] -> b forced true.
	c := &Constraint{Tag: "int_lin_le_reif", Active: true, Args: []Argument{
		IntListArg([]int64{1, 1}), VarListArg([]VarID{x, y}), IntArg(100), VarArg(b),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	require.True(t, ruleIntLinear(ps, cid))
	assert.Equal(t, int64(1), m.Var(b).Domain.Value())
}

func TestPropagatePositiveLinearTightensUpperBound(t *testing.T) {
	m := NewModel()
	x := m.AddVariable(newVar("x", 0, 100))
	y := m.AddVariable(newVar("y", 2, 2))
	ps := newTestPresolver(m)
	ps.options.StrongPropagation = true

	shape := linearShape{coeffs: []int64{1, 1}, vars: []VarID{x, y}, rhs: 10, relation: "le"}
	require.True(t, propagatePositiveLinear(ps, shape))
	assert.Equal(t, int64(8), m.Var(x).Domain.Max())
}

func TestDetectDifferenceFromLinearPopulatesMap(t *testing.T) {
	m := NewModel()
	x := m.AddVariable(newVar("x", 0, 10))
	y := m.AddVariable(newVar("y", 0, 10))
	z := m.AddVariable(newVar("z", 0, 10))
	c := &Constraint{Tag: "int_lin_eq", Active: true, Args: []Argument{
		IntListArg([]int64{1, 1, -1}), VarListArg([]VarID{x, y, z}), IntArg(0),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	DetectDifferenceFromLinear(ps, cid)

	pair, ok := ps.aux.DifferenceMap[z]
	require.True(t, ok)
	assert.Equal(t, x, pair.A)
	assert.Equal(t, y, pair.B)
}

func TestDetectDifferenceFromLinearIgnoresNonzeroRHS(t *testing.T) {
	m := NewModel()
	x := m.AddVariable(newVar("x", 0, 10))
	y := m.AddVariable(newVar("y", 0, 10))
	z := m.AddVariable(newVar("z", 0, 10))
	c := &Constraint{Tag: "int_lin_eq", Active: true, Args: []Argument{
		IntListArg([]int64{1, 1, -1}), VarListArg([]VarID{x, y, z}), IntArg(5),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	DetectDifferenceFromLinear(ps, cid)

	_, ok := ps.aux.DifferenceMap[z]
	assert.False(t, ok)
}

func TestDetectDifferenceFromLinearIgnoresWrongCoefficientPattern(t *testing.T) {
	m := NewModel()
	x := m.AddVariable(newVar("x", 0, 10))
	y := m.AddVariable(newVar("y", 0, 10))
	z := m.AddVariable(newVar("z", 0, 10))
	c := &Constraint{Tag: "int_lin_eq", Active: true, Args: []Argument{
		IntListArg([]int64{2, 1, -1}), VarListArg([]VarID{x, y, z}), IntArg(0),
	}}
	cid := m.AddConstraint(c)
	ps := newTestPresolver(m)

	DetectDifferenceFromLinear(ps, cid)

	_, ok := ps.aux.DifferenceMap[z]
	assert.False(t, ok)
}
