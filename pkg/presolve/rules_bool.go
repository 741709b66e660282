package presolve

// ruleBool2Int implements §4.2's Bool2Int: a bool2int(b, i) constraint
// links a 0/1 boolean variable to an integer variable with the same
// domain of possible values; whichever side is more constrained tightens
// the other. Once both are fixed to the same value the constraint
// deactivates; otherwise i is recorded as a substitution for b and the
// constraint deactivates.
func ruleBool2Int(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 || c.Args[0].Kind != ArgVarRef || c.Args[1].Kind != ArgVarRef {
		return false
	}
	b := ps.model.Var(c.Args[0].Var)
	i := ps.model.Var(c.Args[1].Var)

	changed := false
	before := b.Domain
	b.Domain = b.Domain.IntersectInterval(0, 1).Intersect(i.Domain)
	if !before.Equal(b.Domain) {
		changed = true
	}
	before = i.Domain
	i.Domain = i.Domain.Intersect(b.Domain)
	if !before.Equal(i.Domain) {
		changed = true
	}
	if b.Domain.HasOneValue() && i.Domain.HasOneValue() {
		c.Deactivate()
		changed = true
	} else {
		// Neither side is fixed: i and b take the same value, so i is
		// replaced by b everywhere and the link itself is dropped.
		ps.equiv.AddVariableSubstitution(ps.model, c.Args[1].Var, c.Args[0].Var)
		c.Deactivate()
		changed = true
	}
	return changed
}

// ruleArrayBoolOr implements §4.2's ArrayBoolOr together with the
// RemoveEmptyArray supplemental rule (§4.2.1): array_bool_or(as, r) holds
// iff r == (as[0] \/ as[1] \/ ...). An empty as forces r false outright.
// Any constant-true element forces r true. Once every element is known
// false, r is forced false. Once r is known false, every element is forced
// false. Once r is known true and only one element remains undetermined,
// that element is forced true.
func ruleArrayBoolOr(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 || c.Args[0].Kind != ArgVarRefArray || c.Args[1].Kind != ArgVarRef {
		return false
	}
	as, r := c.Args[0].VarList, c.Args[1].Var

	if len(as) == 0 {
		changed := ps.forceBool(r, false)
		c.Deactivate()
		return changed || true
	}

	changed := false
	anyTrue := false
	undetermined := []VarID{}
	allFalse := true
	for _, v := range as {
		dom := ps.model.Var(v).Domain
		if dom.HasOneValue() {
			if dom.Value() != 0 {
				anyTrue = true
			} else {
				continue
			}
			allFalse = false
		} else {
			allFalse = false
			undetermined = append(undetermined, v)
		}
	}
	if anyTrue {
		if ps.forceBool(r, true) {
			changed = true
		}
		c.Deactivate()
		return true
	}
	if allFalse {
		if ps.forceBool(r, false) {
			changed = true
		}
		c.Deactivate()
		return true
	}
	if ps.model.Var(r).Domain.HasOneValue() {
		if ps.model.Var(r).Domain.Value() == 0 {
			for _, v := range undetermined {
				if ps.forceBool(v, false) {
					changed = true
				}
			}
			c.Deactivate()
			return true
		}
		if len(undetermined) == 1 {
			if ps.forceBool(undetermined[0], true) {
				changed = true
			}
			c.Deactivate()
			return true
		}
	}
	return changed
}

// ruleArrayBoolAnd is the dual of ruleArrayBoolOr: r == (as[0] /\ as[1]
// /\ ...). An empty as forces r true.
func ruleArrayBoolAnd(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 || c.Args[0].Kind != ArgVarRefArray || c.Args[1].Kind != ArgVarRef {
		return false
	}
	as, r := c.Args[0].VarList, c.Args[1].Var

	if len(as) == 0 {
		changed := ps.forceBool(r, true)
		c.Deactivate()
		return changed || true
	}

	changed := false
	anyFalse := false
	undetermined := []VarID{}
	allTrue := true
	for _, v := range as {
		dom := ps.model.Var(v).Domain
		if dom.HasOneValue() {
			if dom.Value() == 0 {
				anyFalse = true
			} else {
				continue
			}
			allTrue = false
		} else {
			allTrue = false
			undetermined = append(undetermined, v)
		}
	}
	if anyFalse {
		if ps.forceBool(r, false) {
			changed = true
		}
		c.Deactivate()
		return true
	}
	if allTrue {
		if ps.forceBool(r, true) {
			changed = true
		}
		c.Deactivate()
		return true
	}
	if ps.model.Var(r).Domain.HasOneValue() {
		if ps.model.Var(r).Domain.Value() != 0 {
			for _, v := range undetermined {
				if ps.forceBool(v, true) {
					changed = true
				}
			}
			c.Deactivate()
			return true
		}
		if len(undetermined) == 1 {
			if ps.forceBool(undetermined[0], false) {
				changed = true
			}
			c.Deactivate()
			return true
		}
	}
	return changed
}

// ruleBoolEqNeReif handles bool_eq_reif/bool_ne_reif, which share
// PropagateReifiedComparisons' logic exactly (a boolean compared for
// equality or inequality is just cmpEq/cmpNe over {0,1}-domains).
func ruleBoolEqNeReif(ps *Presolver, cid ConstraintID) bool {
	return propagateReifiedComparison(ps, cid)
}

// ruleBoolXor implements bool_xor(a, b, r): r == (a != b). With any two of
// the three fixed, the third is forced.
func ruleBoolXor(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 3 {
		return false
	}
	a, b, r := c.Args[0], c.Args[1], c.Args[2]
	if a.HasOneValue(ps.model) && b.HasOneValue(ps.model) {
		want := (a.Value(ps.model) != 0) != (b.Value(ps.model) != 0)
		if r.Kind == ArgVarRef {
			changed := ps.forceBool(r.Var, want)
			c.Deactivate()
			return changed || true
		}
	}
	if a.HasOneValue(ps.model) && r.HasOneValue(ps.model) && b.Kind == ArgVarRef {
		want := (a.Value(ps.model) != 0) != (r.Value(ps.model) != 0)
		changed := ps.forceBool(b.Var, want)
		c.Deactivate()
		return changed || true
	}
	if b.HasOneValue(ps.model) && r.HasOneValue(ps.model) && a.Kind == ArgVarRef {
		want := (b.Value(ps.model) != 0) != (r.Value(ps.model) != 0)
		changed := ps.forceBool(a.Var, want)
		c.Deactivate()
		return changed || true
	}
	return false
}

// ruleBoolNot implements bool_not(a, b): b == !a.
func ruleBoolNot(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 {
		return false
	}
	a, b := c.Args[0], c.Args[1]
	if a.HasOneValue(ps.model) && b.Kind == ArgVarRef {
		changed := ps.forceBool(b.Var, a.Value(ps.model) == 0)
		c.Deactivate()
		return changed || true
	}
	if b.HasOneValue(ps.model) && a.Kind == ArgVarRef {
		changed := ps.forceBool(a.Var, b.Value(ps.model) == 0)
		c.Deactivate()
		return changed || true
	}
	return false
}

// ruleBoolClause implements bool_clause(pos, neg): a disjunction of
// positive and negated literals, equivalent to array_bool_or over pos ++
// negated(neg) with r fixed true. Rather than materializing that rewrite,
// the same propagation is applied directly: any satisfied literal
// deactivates the clause outright; once every literal but one is known
// false, the remaining one is forced to satisfy the clause; if every
// literal is known false the clause is unsatisfiable.
func ruleBoolClause(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 || c.Args[0].Kind != ArgVarRefArray || c.Args[1].Kind != ArgVarRefArray {
		return false
	}
	pos, neg := c.Args[0].VarList, c.Args[1].VarList

	type literal struct {
		v      VarID
		negate bool
	}
	var literals []literal
	for _, v := range pos {
		literals = append(literals, literal{v, false})
	}
	for _, v := range neg {
		literals = append(literals, literal{v, true})
	}
	if len(literals) == 0 {
		c.SetAsFalse()
		return true
	}

	var undetermined []literal
	for _, lit := range literals {
		dom := ps.model.Var(lit.v).Domain
		if dom.HasOneValue() {
			satisfied := (dom.Value() != 0) != lit.negate
			if satisfied {
				c.Deactivate()
				return true
			}
			continue
		}
		undetermined = append(undetermined, lit)
	}
	if len(undetermined) == 0 {
		c.SetAsFalse()
		return true
	}
	if len(undetermined) == 1 {
		changed := ps.forceBool(undetermined[0].v, !undetermined[0].negate)
		c.Deactivate()
		return changed || true
	}
	return false
}
