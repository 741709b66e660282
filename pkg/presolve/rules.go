package presolve

import "strings"

// ruleFunc is the shape every rewrite rule implements: given the
// constraint identified by cid, mutate the model/aux maps/equivalence as
// needed and report whether anything changed. Rules never return an
// error; a contract violation is reported by setting the constraint
// SetAsFalse or, for a genuinely malformed shape, left to the cleanup
// pass's invariant check (§7).
type ruleFunc func(ps *Presolver, cid ConstraintID) bool

// ruleDispatch keys rules by the exact tag they apply to, per §4.2's
// "Dispatch: ... by exact tag". Rules keyed by prefix (int_lin_) or
// suffix (_reif) are applied separately by presolveOneConstraint before
// this table is consulted, so that e.g. an int_lin_eq_reif constraint
// whose reif boolean resolves this sweep is re-dispatched under its new
// tag in the same call.
var ruleDispatch = map[string]ruleFunc{
	"bool2int": ruleBool2Int,

	"int_eq": ruleIntEq,
	"int_ne": ruleIntNe,

	"int_le":  ruleComparison,
	"int_lt":  ruleComparison,
	"int_ge":  ruleComparison,
	"int_gt":  ruleComparison,
	"bool_le": ruleComparison,
	"bool_lt": ruleComparison,
	"bool_ge": ruleComparison,
	"bool_gt": ruleComparison,

	"set_in": ruleSetIn,

	"int_times": ruleIntTimes,
	"int_div":   ruleIntDiv,
	"int_mod":   ruleIntMod,
	"int_abs":   ruleIntAbs,

	"array_bool_or":  ruleArrayBoolOr,
	"array_bool_and": ruleArrayBoolAnd,

	"bool_eq_reif": ruleBoolEqNeReif,
	"bool_ne_reif": ruleBoolEqNeReif,
	"bool_xor":     ruleBoolXor,
	"bool_not":     ruleBoolNot,
	"bool_clause":  ruleBoolClause,

	"array_int_element":     ruleArrayIntElement,
	"array_var_int_element": ruleArrayVarIntElement,

	"int_eq_reif": ruleIntEqReif,
	"int_ne_reif": ruleIntNeReif,
	"int_le_reif": ruleIntLeReif,
	"int_lt_reif": ruleReifiedComparisonGeneric,
	"int_ge_reif": ruleReifiedComparisonGeneric,
	"int_gt_reif": ruleReifiedComparisonGeneric,
}

// presolveOneConstraint is PresolveOneConstraint from §4.3: offer cid to
// the suffix-keyed Unreify pass, then the prefix-keyed int_lin_ pass, then
// whatever exact-tag rule applies to its (possibly just-rewritten) tag.
func (ps *Presolver) presolveOneConstraint(cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if !c.Active {
		return false
	}

	changed := false

	if strings.HasSuffix(c.Tag, "_reif") {
		if ps.applyRule(ruleUnreify, cid) {
			changed = true
		}
		if !c.Active {
			return changed
		}
	}

	if strings.HasPrefix(c.Tag, "int_lin_") {
		if ps.applyRule(ruleIntLinear, cid) {
			changed = true
		}
		if !c.Active {
			return changed
		}
	}

	if fn, ok := ruleDispatch[c.Tag]; ok {
		if ps.applyRule(fn, cid) {
			changed = true
		}
	}

	return changed
}
