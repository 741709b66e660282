package presolve

// firstPassModelScan implements FirstPassModelScan (§4.3): a single pass
// over the as-loaded model that seeds the auxiliary maps and the decision
// variable set before the general fixed-point loop starts, so that rules
// relying on DifferenceMap/AffineMap/AbsMap/DecisionVariables have
// something to consult from the very first sweep rather than only after
// whichever constraint would have populated them happens to run.
func (ps *Presolver) firstPassModelScan() {
	for cid, c := range ps.model.Constraints {
		if !c.Active {
			continue
		}
		if c.Tag == "int_lin_eq" {
			DetectAffineFromLinear(ps, ConstraintID(cid))
			DetectArray2DIndexFromLinear(ps, ConstraintID(cid))
			DetectDifferenceFromLinear(ps, ConstraintID(cid))
		}
	}
	// array_int_element's abs-pattern recognizer depends on AffineMap
	// entries populated above, so it runs in a second pass over the same
	// constraint list.
	for cid, c := range ps.model.Constraints {
		if !c.Active {
			continue
		}
		if c.Tag == "array_int_element" {
			DetectAbsFromElement(ps, ConstraintID(cid))
		}
	}

	for _, ann := range ps.model.SearchAnnotations {
		ps.harvestDecisionVariables(ann)
	}
}

// harvestDecisionVariables walks a search annotation tree collecting every
// variable reference it names as a decision variable (§3, supplemented):
// the presolver does not schedule search itself, but DecisionVariables
// lets a downstream search strategy ask "is this still a real decision, or
// did presolving fix it already?" without re-walking the annotation tree.
func (ps *Presolver) harvestDecisionVariables(ann *SearchAnnotation) {
	if ann == nil {
		return
	}
	if ann.IsVar {
		ps.aux.DecisionVariables.Insert(ann.Var)
	}
	for _, child := range ann.Children {
		ps.harvestDecisionVariables(child)
	}
}

// mergeIntEqNe implements the duplicate-reification canonicalization run
// once before the main loop (§4.3): two int_eq_reif constraints over the
// same unordered variable pair assert the same proposition, so their
// reification booleans are equivalent even though nothing else in the
// model says so directly. Rather than waiting for ruleIntEqReif's
// per-constraint StoreIntEqReif memoization to notice this one pair at a
// time across sweeps, this sweeps the whole model up front and unifies
// every duplicate in one pass.
func (ps *Presolver) mergeIntEqNe() {
	seen := make(map[varPair]VarID)
	for cid, c := range ps.model.Constraints {
		if !c.Active || c.Tag != "int_eq_reif" || len(c.Args) != 3 {
			continue
		}
		if c.Args[0].Kind != ArgVarRef || c.Args[1].Kind != ArgVarRef || c.Args[2].Kind != ArgVarRef {
			continue
		}
		key := newVarPair(c.Args[0].Var, c.Args[1].Var)
		b := c.Args[2].Var
		if existing, ok := seen[key]; ok {
			if existing != b {
				if ps.equiv.AddVariableSubstitution(ps.model, b, existing) {
					ps.model.Constraint(ConstraintID(cid)).Deactivate()
				}
			} else {
				ps.model.Constraint(ConstraintID(cid)).Deactivate()
			}
			continue
		}
		seen[key] = b
		ps.aux.IntEqReifMap[key] = b
	}
}
