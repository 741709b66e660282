package presolve

// cmpKind names one of the six relational operators the presolver
// rewrites, shared between the plain int_xx/bool_xx comparisons and their
// _reif counterparts.
type cmpKind int

const (
	cmpEq cmpKind = iota
	cmpNe
	cmpLe
	cmpLt
	cmpGe
	cmpGt
)

// cmpKindForTag maps a relation tag (with any "_reif" suffix already
// stripped) to its cmpKind.
func cmpKindForTag(tag string) (cmpKind, bool) {
	switch tag {
	case "int_eq", "bool_eq":
		return cmpEq, true
	case "int_ne", "bool_ne":
		return cmpNe, true
	case "int_le", "bool_le":
		return cmpLe, true
	case "int_lt", "bool_lt":
		return cmpLt, true
	case "int_ge", "bool_ge":
		return cmpGe, true
	case "int_gt", "bool_gt":
		return cmpGt, true
	}
	return 0, false
}

// flipKind returns the relation that holds when the operands of kind are
// swapped (x OP y  <=>  y flipKind(OP) x).
func flipKind(kind cmpKind) cmpKind {
	switch kind {
	case cmpLe:
		return cmpGe
	case cmpLt:
		return cmpGt
	case cmpGe:
		return cmpLe
	case cmpGt:
		return cmpLt
	default:
		return kind
	}
}

func evalCmp(kind cmpKind, a, b int64) bool {
	switch kind {
	case cmpEq:
		return a == b
	case cmpNe:
		return a != b
	case cmpLe:
		return a <= b
	case cmpLt:
		return a < b
	case cmpGe:
		return a >= b
	case cmpGt:
		return a > b
	}
	return false
}

// ruleIntEq implements §4.2's IntEq for the eq/ne pair's equality half,
// and the differences-map special case "int_eq(x,0) where x = y-z rewrites
// to int_eq(y,z)".
func ruleIntEq(ps *Presolver, cid ConstraintID) bool {
	return ruleEqNe(ps, cid, cmpEq)
}

// ruleIntNe implements the ne half of §4.2's IntEq/IntNe.
func ruleIntNe(ps *Presolver, cid ConstraintID) bool {
	return ruleEqNe(ps, cid, cmpNe)
}

func ruleEqNe(ps *Presolver, cid ConstraintID, kind cmpKind) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 {
		return false
	}
	x, y := c.Args[0], c.Args[1]

	// Special case: int_eq(x, 0) where x is a known difference y-z
	// rewrites to int_eq(y, z).
	if kind == cmpEq && x.Kind == ArgVarRef && y.HasOneValue(ps.model) && y.Value(ps.model) == 0 {
		if diff, ok := ps.aux.DifferenceMap[x.Var]; ok {
			c.Args = []Argument{VarArg(diff.A), VarArg(diff.B)}
			return true
		}
	}

	if x.HasOneValue(ps.model) && y.HasOneValue(ps.model) {
		if evalCmp(kind, x.Value(ps.model), y.Value(ps.model)) {
			c.Deactivate()
		} else {
			c.SetAsFalse()
		}
		return true
	}

	if x.HasOneValue(ps.model) && y.Kind == ArgVarRef {
		return tightenToConstant(ps, c, y.Var, x.Value(ps.model), kind)
	}
	if y.HasOneValue(ps.model) && x.Kind == ArgVarRef {
		return tightenToConstant(ps, c, x.Var, y.Value(ps.model), kind)
	}

	if kind == cmpEq && x.Kind == ArgVarRef && y.Kind == ArgVarRef {
		if ps.equiv.AddVariableSubstitution(ps.model, x.Var, y.Var) {
			c.Deactivate()
			return true
		}
	}
	return false
}

func tightenToConstant(ps *Presolver, c *Constraint, v VarID, value int64, kind cmpKind) bool {
	variable := ps.model.Var(v)
	switch kind {
	case cmpEq:
		variable.Domain = variable.Domain.IntersectInterval(value, value)
	case cmpNe:
		variable.Domain = variable.Domain.RemoveValue(value)
	default:
		return false
	}
	c.Deactivate()
	return true
}

// ruleComparison implements §4.2's "Inequalities (int/bool le/lt/ge/gt)".
func ruleComparison(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 {
		return false
	}
	kind, ok := cmpKindForTag(c.Tag)
	if !ok {
		return false
	}
	x, y := c.Args[0], c.Args[1]

	if x.HasOneValue(ps.model) && y.HasOneValue(ps.model) {
		if evalCmp(kind, x.Value(ps.model), y.Value(ps.model)) {
			c.Deactivate()
		} else {
			c.SetAsFalse()
		}
		return true
	}

	if x.HasOneValue(ps.model) && y.Kind == ArgVarRef {
		// c OP y  <=>  y flipKind(OP) c
		return tightenInequality(ps, c, y.Var, x.Value(ps.model), flipKind(kind), true)
	}
	if y.HasOneValue(ps.model) && x.Kind == ArgVarRef {
		return tightenInequality(ps, c, x.Var, y.Value(ps.model), kind, true)
	}

	if x.Kind == ArgVarRef && y.Kind == ArgVarRef {
		return crossTightenInequality(ps, x.Var, y.Var, kind)
	}
	return false
}

// tightenInequality narrows v's domain so that "v kind c" holds, where c is
// the constant bound. deactivateConstraint controls whether the now fully
// resolved constraint should be removed (always true for the
// constant-vs-variable case per §4.2).
func tightenInequality(ps *Presolver, c *Constraint, v VarID, bound int64, kind cmpKind, deactivateConstraint bool) bool {
	variable := ps.model.Var(v)
	before := variable.Domain
	switch kind {
	case cmpLe:
		variable.Domain = variable.Domain.IntersectInterval(NegativeInfinity, bound)
	case cmpLt:
		variable.Domain = variable.Domain.IntersectInterval(NegativeInfinity, bound-1)
	case cmpGe:
		variable.Domain = variable.Domain.IntersectInterval(bound, PositiveInfinity)
	case cmpGt:
		variable.Domain = variable.Domain.IntersectInterval(bound+1, PositiveInfinity)
	default:
		return false
	}
	changed := !before.Equal(variable.Domain)
	if deactivateConstraint {
		c.Deactivate()
		changed = true
	}
	return changed
}

// crossTightenInequality narrows both variables' domains per "x kind y"
// and leaves the constraint active, since further propagation as the
// domains continue to shrink may still be useful (§4.2).
func crossTightenInequality(ps *Presolver, x, y VarID, kind cmpKind) bool {
	xv, yv := ps.model.Var(x), ps.model.Var(y)
	xBefore, yBefore := xv.Domain, yv.Domain
	switch kind {
	case cmpLe:
		xv.Domain = xv.Domain.IntersectInterval(NegativeInfinity, yv.Domain.Max())
		yv.Domain = yv.Domain.IntersectInterval(xv.Domain.Min(), PositiveInfinity)
	case cmpLt:
		xv.Domain = xv.Domain.IntersectInterval(NegativeInfinity, yv.Domain.Max()-1)
		yv.Domain = yv.Domain.IntersectInterval(xv.Domain.Min()+1, PositiveInfinity)
	case cmpGe:
		xv.Domain = xv.Domain.IntersectInterval(yv.Domain.Min(), PositiveInfinity)
		yv.Domain = yv.Domain.IntersectInterval(NegativeInfinity, xv.Domain.Max())
	case cmpGt:
		xv.Domain = xv.Domain.IntersectInterval(yv.Domain.Min()+1, PositiveInfinity)
		yv.Domain = yv.Domain.IntersectInterval(NegativeInfinity, xv.Domain.Max()-1)
	default:
		return false
	}
	return !xBefore.Equal(xv.Domain) || !yBefore.Equal(yv.Domain)
}

// ruleSetIn implements §4.2's SetIn: intersect the variable's domain with
// the value set; deactivate.
func ruleSetIn(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 || c.Args[0].Kind != ArgVarRef {
		return false
	}
	v := ps.model.Var(c.Args[0].Var)
	switch c.Args[1].Kind {
	case ArgIntInterval:
		v.Domain = v.Domain.IntersectInterval(c.Args[1].Lo, c.Args[1].Hi)
	case ArgIntList:
		v.Domain = v.Domain.IntersectList(c.Args[1].IntList)
	default:
		// A set_in whose value-set argument is not a constant is a
		// contract violation; left for the cleanup pass's invariant
		// check (§7) rather than handled here.
		return false
	}
	c.Deactivate()
	return true
}

// ruleIntTimes implements §4.2's IntTimes: with both operands fixed,
// reduce the target's domain to the product (guarded against overflow).
func ruleIntTimes(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 3 || !c.Args[0].HasOneValue(ps.model) || !c.Args[1].HasOneValue(ps.model) {
		return false
	}
	a, b := c.Args[0].Value(ps.model), c.Args[1].Value(ps.model)
	product := saturatingMul(a, b)
	if isInfinite(product) {
		// Overflow: yield without tightening, leave to the solver (§7).
		return false
	}
	if c.Args[2].Kind != ArgVarRef {
		return false
	}
	target := ps.model.Var(c.Args[2].Var)
	target.Domain = target.Domain.IntersectInterval(product, product)
	c.Deactivate()
	return true
}

// ruleIntDiv implements §4.2's IntDiv: with both operands fixed, reduce
// the target's domain to the (truncating) quotient, guarded against
// division by zero.
func ruleIntDiv(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 3 || !c.Args[0].HasOneValue(ps.model) || !c.Args[1].HasOneValue(ps.model) {
		return false
	}
	a, b := c.Args[0].Value(ps.model), c.Args[1].Value(ps.model)
	if b == 0 {
		// Domain incompatibility: left to the solver, not forced
		// infeasible by this rule (§7's documented caution).
		return false
	}
	if c.Args[2].Kind != ArgVarRef {
		return false
	}
	quotient := a / b // truncating, matching int_div's defined semantics
	target := ps.model.Var(c.Args[2].Var)
	target.Domain = target.Domain.IntersectInterval(quotient, quotient)
	c.Deactivate()
	return true
}

// ruleIntMod implements the IntMod half of §4.2 ("IntMod and the final
// target-variable-singleton sweep strip a target-variable designation
// whose variable is now fixed"): with both operands fixed, reduce the
// target's domain to the remainder, and in all cases strip a
// now-meaningless target designation once the target variable is itself
// fixed.
func ruleIntMod(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	changed := false
	if len(c.Args) == 3 && c.Args[0].HasOneValue(ps.model) && c.Args[1].HasOneValue(ps.model) && c.Args[1].Value(ps.model) != 0 {
		a, b := c.Args[0].Value(ps.model), c.Args[1].Value(ps.model)
		if c.Args[2].Kind == ArgVarRef {
			target := ps.model.Var(c.Args[2].Var)
			target.Domain = target.Domain.IntersectInterval(a%b, a%b)
			changed = true
		}
		c.Deactivate()
		changed = true
	}
	if stripFixedTarget(ps, c) {
		changed = true
	}
	return changed
}

// stripFixedTarget implements the "final target-variable-singleton sweep":
// a constraint's TargetVariable designation is meaningless once that
// variable is already fixed, since nothing further needs defining.
func stripFixedTarget(ps *Presolver, c *Constraint) bool {
	if c.TargetVariable == InvalidVarID {
		return false
	}
	v := ps.model.Var(c.TargetVariable)
	if !v.Domain.HasOneValue() {
		return false
	}
	if v.DefiningConstraint != InvalidConstraintID {
		ps.model.Constraint(v.DefiningConstraint).TargetVariable = InvalidVarID
	}
	v.DefiningConstraint = InvalidConstraintID
	c.TargetVariable = InvalidVarID
	return true
}
