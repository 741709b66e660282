package presolve

import "strings"

// invertedRelation maps a relation's tag to the tag of its logical
// negation, for the cases §4.2's Unreify rule names explicitly
// (eq<->ne, le<->gt, lt<->ge, set_in<->set_not_in), generalized across the
// int_/bool_/int_lin_ families that share the same relational vocabulary.
var invertedRelation = map[string]string{
	"int_eq": "int_ne", "int_ne": "int_eq",
	"int_le": "int_gt", "int_gt": "int_le",
	"int_lt": "int_ge", "int_ge": "int_lt",
	"bool_eq": "bool_ne", "bool_ne": "bool_eq",
	"bool_le": "bool_gt", "bool_gt": "bool_le",
	"bool_lt": "bool_ge", "bool_ge": "bool_lt",
	"set_in": "set_not_in", "set_not_in": "set_in",
	"int_lin_eq": "int_lin_ne", "int_lin_ne": "int_lin_eq",
	"int_lin_le": "int_lin_gt", "int_lin_gt": "int_lin_le",
	"int_lin_lt": "int_lin_ge", "int_lin_ge": "int_lin_lt",
}

// ruleUnreify implements §4.2's Unreify rule: any constraint whose tag
// ends in "_reif" and whose last argument resolves to a constant drops
// the suffix and the argument, inverting the relation if the constant was
// false.
func ruleUnreify(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if !strings.HasSuffix(c.Tag, "_reif") || len(c.Args) == 0 {
		return false
	}
	last := c.Args[len(c.Args)-1]
	if !last.HasOneValue(ps.model) {
		return false
	}
	boolValue := last.Value(ps.model)

	base := strings.TrimSuffix(c.Tag, "_reif")
	c.Args = c.Args[:len(c.Args)-1]
	if boolValue != 0 {
		c.Tag = base
	} else if inv, ok := invertedRelation[base]; ok {
		c.Tag = inv
	} else {
		c.Tag = base
	}
	return true
}

// reifComparisonBase strips a trailing "_reif" to recover the relation
// kind (int_le_reif -> int_le, etc).
func reifComparisonBase(tag string) string {
	return strings.TrimSuffix(tag, "_reif")
}

// propagateReifiedComparison implements §4.2's PropagateReifiedComparisons:
// same-variable comparisons force the boolean by the relation's identity;
// with one side fixed, the boolean is decided once the variable's domain
// lies entirely on one side of the constant (or has already excluded it).
func propagateReifiedComparison(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 3 {
		return false
	}
	x, y, b := c.Args[0], c.Args[1], c.Args[2]
	if b.HasOneValue(ps.model) {
		return false // already unreified by ruleUnreify this sweep
	}
	kind, ok := cmpKindForTag(reifComparisonBase(c.Tag))
	if !ok {
		return false
	}

	// Same variable on both sides: the truth value is a constant
	// determined purely by the relation's identity (x OP x).
	if x.Kind == ArgVarRef && y.Kind == ArgVarRef && x.Var == y.Var {
		identity := kind == cmpEq || kind == cmpLe || kind == cmpGe
		return ps.forceBool(b.Var, identity)
	}

	if x.HasOneValue(ps.model) && !y.HasOneValue(ps.model) && y.IsVariable() {
		return decideReifiedAgainstConstant(ps, b.Var, x.Value(ps.model), y.Var, flipKind(kind))
	}
	if y.HasOneValue(ps.model) && !x.HasOneValue(ps.model) && x.IsVariable() {
		return decideReifiedAgainstConstant(ps, b.Var, y.Value(ps.model), x.Var, kind)
	}
	return false
}

// decideReifiedAgainstConstant decides b for "variable OP c" (kind
// expressed with the variable on the left, constant on the right) when
// the variable's current domain already settles the comparison.
func decideReifiedAgainstConstant(ps *Presolver, b VarID, c int64, v VarID, kind cmpKind) bool {
	dom := ps.model.Var(v).Domain
	switch kind {
	case cmpEq:
		if !dom.Contains(c) {
			return ps.forceBool(b, false)
		}
	case cmpNe:
		if !dom.Contains(c) {
			return ps.forceBool(b, true)
		}
	case cmpLe:
		if dom.Max() <= c {
			return ps.forceBool(b, true)
		}
		if dom.Min() > c {
			return ps.forceBool(b, false)
		}
	case cmpLt:
		if dom.Max() < c {
			return ps.forceBool(b, true)
		}
		if dom.Min() >= c {
			return ps.forceBool(b, false)
		}
	case cmpGe:
		if dom.Min() >= c {
			return ps.forceBool(b, true)
		}
		if dom.Max() < c {
			return ps.forceBool(b, false)
		}
	case cmpGt:
		if dom.Min() > c {
			return ps.forceBool(b, true)
		}
		if dom.Max() <= c {
			return ps.forceBool(b, false)
		}
	}
	return false
}

// forceBool intersects b's domain with {0} or {1} as appropriate. It
// reports whether the domain actually changed.
func (ps *Presolver) forceBool(b VarID, value bool) bool {
	v := ps.model.Var(b)
	target := int64(0)
	if value {
		target = 1
	}
	if v.Domain.HasOneValue() && v.Domain.Value() == target {
		return false
	}
	v.Domain = v.Domain.IntersectInterval(target, target)
	return true
}

// ruleIntEqReif combines PropagateReifiedComparisons with StoreIntEqReif
// (§4.2): it first tries to decide the boolean, then (whether or not it
// could) memoizes (x,y)->b in IntEqReifMap for SimplifyIntNeReif to find
// later.
func ruleIntEqReif(ps *Presolver, cid ConstraintID) bool {
	changed := propagateReifiedComparison(ps, cid)
	c := ps.model.Constraint(cid)
	if len(c.Args) == 3 && c.Args[0].Kind == ArgVarRef && c.Args[1].Kind == ArgVarRef && c.Args[2].Kind == ArgVarRef {
		key := newVarPair(c.Args[0].Var, c.Args[1].Var)
		if _, ok := ps.aux.IntEqReifMap[key]; !ok {
			ps.aux.IntEqReifMap[key] = c.Args[2].Var
		}
	}
	return changed
}

// ruleIntNeReif combines PropagateReifiedComparisons with
// SimplifyIntNeReif: a later int_ne_reif(x,y,b') for a pair already
// memoized by StoreIntEqReif becomes bool_not(b,b').
func ruleIntNeReif(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) == 3 && c.Args[0].Kind == ArgVarRef && c.Args[1].Kind == ArgVarRef {
		key := newVarPair(c.Args[0].Var, c.Args[1].Var)
		if b, ok := ps.aux.IntEqReifMap[key]; ok && b != c.Args[2].Var {
			c.Tag = "bool_not"
			c.Args = []Argument{VarArg(b), c.Args[2]}
			return true
		}
	}
	return propagateReifiedComparison(ps, cid)
}

// ruleIntLeReif combines PropagateReifiedComparisons with
// RemoveAbsFromIntLeReif: int_le_reif(x,c,b) with x known as |y| (via
// AbsMap) rewrites to int_eq_reif(y,0,b) when c==0, else
// set_in_reif(y,[-c,c],b).
func ruleIntLeReif(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) == 3 && c.Args[0].Kind == ArgVarRef && c.Args[1].HasOneValue(ps.model) {
		if y, ok := ps.aux.AbsMap[c.Args[0].Var]; ok {
			threshold := c.Args[1].Value(ps.model)
			b := c.Args[2]
			if threshold == 0 {
				c.Tag = "int_eq_reif"
				c.Args = []Argument{VarArg(y), IntArg(0), b}
			} else {
				c.Tag = "set_in_reif"
				c.Args = []Argument{VarArg(y), IntervalArg(-threshold, threshold), b}
			}
			return true
		}
	}
	return propagateReifiedComparison(ps, cid)
}

// ruleReifiedComparisonGeneric handles int_lt_reif/int_ge_reif/int_gt_reif,
// which need only the shared PropagateReifiedComparisons logic.
func ruleReifiedComparisonGeneric(ps *Presolver, cid ConstraintID) bool {
	return propagateReifiedComparison(ps, cid)
}
