package presolve

import "strings"

// cleanup implements the terminal cleanup pass of §4.4: after the
// fixed-point loop has stopped finding anything more to rewrite, cleanup
// runs a handful of sub-passes that are deliberately NOT re-run to a
// fixed point themselves (each is a single sweep), followed by the
// invariant check of §7 that turns any remaining contract violation into
// a reported error instead of a silent malformed model.
func (ps *Presolver) cleanup() error {
	ps.stripUnsupportedTargets()
	ps.dedupeMultiTargetVariables()
	ps.attachReifiedComparisonTargets()
	ps.stripFixedTargetsSweep()
	ps.regroupMinMaxChains()
	ps.regroupLinearSumChains()

	ps.aux.buildVarToConstraints(ps.model)
	return ps.checkInvariants()
}

// unsupportedTargetTags names tags whose semantics can't honor a
// TargetVariable designation: count_reif and set_in_reif don't compute a
// single value the way an arithmetic builtin does, and
// array_var_int_element's target is chosen from a variable array rather
// than defined outright.
var unsupportedTargetTags = map[string]bool{
	"count_reif":            true,
	"set_in_reif":           true,
	"array_var_int_element": true,
}

// clearTarget removes c's TargetVariable designation, symmetrically
// clearing the named variable's DefiningConstraint back-pointer when that
// pointer names c (a pointer to another constraint is left alone).
func (ps *Presolver) clearTarget(c *Constraint) {
	if c.TargetVariable == InvalidVarID {
		return
	}
	v := ps.model.Var(c.TargetVariable)
	if v.DefiningConstraint != InvalidConstraintID && ps.model.Constraint(v.DefiningConstraint) == c {
		v.DefiningConstraint = InvalidConstraintID
	}
	c.TargetVariable = InvalidVarID
}

// stripUnsupportedTargets implements §4.4 sub-pass 1: clear any
// TargetVariable a constraint's tag cannot honor, strip the target from
// an over-wide strong_propagation int_lin_eq (those fall back to a table
// encoding instead), and canonicalize a targeted int_lin_eq so its
// target's coefficient is always -1, negating every coefficient and the
// RHS when the target was recorded with coefficient +1.
func (ps *Presolver) stripUnsupportedTargets() {
	for _, c := range ps.model.Constraints {
		if !c.Active {
			continue
		}

		if unsupportedTargetTags[c.Tag] {
			ps.clearTarget(c)
			continue
		}

		if c.Tag != "int_lin_eq" {
			continue
		}
		shape, ok := decodeLinear(ps, c)
		if !ok {
			continue
		}
		if c.StrongPropagation && len(shape.vars) > 3 {
			ps.clearTarget(c)
			continue
		}
		if c.TargetVariable == InvalidVarID {
			continue
		}
		for i, v := range shape.vars {
			if v != c.TargetVariable || shape.coeffs[i] != 1 {
				continue
			}
			negated := shape
			negated.coeffs = make([]int64, len(shape.coeffs))
			for j, coef := range shape.coeffs {
				negated.coeffs[j] = saturatingNeg(coef)
			}
			negated.rhs = saturatingNeg(shape.rhs)
			writeBackLinear(ps, c, negated)
			break
		}
	}
}

// dedupeMultiTargetVariables implements §4.4 sub-pass 2: when more than
// one constraint ended up targeting the same variable, only the
// smallest-arity one is kept as its definition (ties broken by
// preferring a non-reified constraint); the target is stripped from
// every other claimant.
func (ps *Presolver) dedupeMultiTargetVariables() {
	owners := make(map[VarID][]ConstraintID)
	for cid, c := range ps.model.Constraints {
		if c.Active && c.TargetVariable != InvalidVarID {
			owners[c.TargetVariable] = append(owners[c.TargetVariable], ConstraintID(cid))
		}
	}
	for _, cids := range owners {
		if len(cids) < 2 {
			continue
		}
		best := cids[0]
		for _, cand := range cids[1:] {
			if ps.betterTargetOwner(cand, best) {
				best = cand
			}
		}
		for _, cid := range cids {
			if cid != best {
				ps.clearTarget(ps.model.Constraint(cid))
			}
		}
	}
}

// betterTargetOwner reports whether candidate should replace current as
// the surviving owner of a shared target variable: smaller arity wins;
// ties are broken by preferring whichever constraint is not a reified
// one, per §4.4 sub-pass 2.
func (ps *Presolver) betterTargetOwner(candidate, current ConstraintID) bool {
	cand := ps.model.Constraint(candidate)
	cur := ps.model.Constraint(current)
	if len(cand.Args) != len(cur.Args) {
		return len(cand.Args) < len(cur.Args)
	}
	candReif := strings.HasSuffix(cand.Tag, "_reif")
	curReif := strings.HasSuffix(cur.Tag, "_reif")
	return curReif && !candReif
}

// attachReifiedComparisonTargets implements §4.4 sub-pass 3: a reified
// comparison that survived the main loop without a target still defines
// a single value, its own boolean, so once nothing claimed that
// relationship during presolving this makes it explicit -- as long as
// the boolean isn't already defined elsewhere.
func (ps *Presolver) attachReifiedComparisonTargets() {
	for cid, c := range ps.model.Constraints {
		if !c.Active || unsupportedTargetTags[c.Tag] || !strings.HasSuffix(c.Tag, "_reif") {
			continue
		}
		if c.TargetVariable != InvalidVarID || len(c.Args) == 0 {
			continue
		}
		last := c.Args[len(c.Args)-1]
		if last.Kind != ArgVarRef {
			continue
		}
		b := ps.model.Var(last.Var)
		if b.DefiningConstraint != InvalidConstraintID {
			continue
		}
		c.TargetVariable = last.Var
		b.DefiningConstraint = ConstraintID(cid)
	}
}

// stripFixedTargetsSweep implements the final target-variable-singleton
// sweep (§4.4): a TargetVariable designation that names an
// already-fixed variable no longer protects anything a later consumer
// needs, so it is cleared uniformly across every constraint, not only the
// ones int_mod happened to touch mid-loop.
func (ps *Presolver) stripFixedTargetsSweep() {
	for cid, c := range ps.model.Constraints {
		if !c.Active {
			continue
		}
		stripFixedTarget(ps, ps.model.Constraint(ConstraintID(cid)))
	}
}

// regroupMinMaxChains implements §4.4's min/max chain regrouping: a chain
// starts at a double-argument int_max(x0,x0,t1) (or int_min), and each
// following link takes the previous carry as its *second* operand --
// int_max(x1,t1,t2), int_max(x2,t2,t3), ... -- folding a new element in
// through Args[0] each time. Once every intermediate carry is referenced
// by exactly the two constraints that produce and consume it, the whole
// chain collapses into one maximum_int (or minimum_int) over
// [x0,x1,x2,...].
func (ps *Presolver) regroupMinMaxChains() {
	ps.regroupChain("int_max", "maximum_int")
	ps.regroupChain("int_min", "minimum_int")
}

func (ps *Presolver) regroupChain(pairTag, arrayTag string) {
	// consumer maps a carry variable (a link's output) to the constraint
	// that consumes it as the NEXT link's carry operand (Args[1]), so the
	// walk below follows the chain forward from producer to consumer
	// instead of trying to look a link's own output back up in itself.
	consumer := make(map[VarID]ConstraintID)
	ambiguous := make(map[VarID]bool)
	for cid, c := range ps.model.Constraints {
		if !c.Active || c.Tag != pairTag || len(c.Args) != 3 {
			continue
		}
		if c.Args[0].Kind != ArgVarRef || c.Args[1].Kind != ArgVarRef {
			continue
		}
		if c.Args[0].Var == c.Args[1].Var {
			continue // double-argument chain start, not a successor link
		}
		carry := c.Args[1].Var
		if _, seen := consumer[carry]; seen {
			ambiguous[carry] = true
			continue
		}
		consumer[carry] = ConstraintID(cid)
	}

	visited := make(map[ConstraintID]bool)
	for cid, c := range ps.model.Constraints {
		cid := ConstraintID(cid)
		if visited[cid] || !c.Active || c.Tag != pairTag || len(c.Args) != 3 {
			continue
		}
		if c.Args[0].Kind != ArgVarRef || c.Args[1].Kind != ArgVarRef || c.Args[2].Kind != ArgVarRef {
			continue
		}
		if c.Args[0].Var != c.Args[1].Var {
			continue // not a chain start
		}
		visited[cid] = true

		elems := []VarID{c.Args[0].Var}
		result := c.Args[2].Var
		for {
			if ambiguous[result] {
				// result feeds more than one successor; which one would
				// inherit the folded chain is undefined, so stop here.
				break
			}
			nextCid, ok := consumer[result]
			if !ok {
				break
			}
			if refs := ps.aux.ConstraintsReferencing(result); refs != nil && refs.Size() > 2 {
				// result feeds something besides its producer and the
				// next link; regrouping would change what that third
				// constraint observes, so stop here.
				break
			}
			next := ps.model.Constraint(nextCid)
			elems = append(elems, next.Args[0].Var)
			visited[nextCid] = true
			ps.clearTarget(next)
			next.Deactivate()
			result = next.Args[2].Var
		}

		if len(elems) >= 2 {
			ps.finalizeChain(cid, arrayTag, elems, result)
		}
	}
}

// finalizeChain rewrites the chain head constraint into a single
// arrayTag(elems, result) constraint and, unless result is already
// defined elsewhere, makes the head result's defining constraint. The
// other links are deactivated by regroupChain as it walks the chain.
func (ps *Presolver) finalizeChain(headCid ConstraintID, arrayTag string, elems []VarID, result VarID) {
	head := ps.model.Constraint(headCid)
	ps.clearTarget(head)
	head.Tag = arrayTag
	head.Args = []Argument{VarListArg(elems), VarArg(result)}
	if rv := ps.model.Var(result); rv.DefiningConstraint == InvalidConstraintID {
		head.TargetVariable = result
		rv.DefiningConstraint = headCid
	}
}

// regroupLinearSumChains implements §4.4's linear-sum chain regrouping:
// an int_lin_eq whose only variable term is a single temporary defined by
// another int_lin_eq (coefficient 1, nothing else referencing the
// temporary) inlines that definition directly, the linear-arithmetic
// analogue of regroupMinMaxChains.
func (ps *Presolver) regroupLinearSumChains() {
	definedBy := make(map[VarID]ConstraintID)
	for cid, c := range ps.model.Constraints {
		if c.Active && c.Tag == "int_lin_eq" {
			if t := linearSoleTarget(ps, c); t != InvalidVarID {
				definedBy[t] = ConstraintID(cid)
			}
		}
	}

	for cid, c := range ps.model.Constraints {
		cid := ConstraintID(cid)
		if !c.Active || c.Tag != "int_lin_eq" {
			continue
		}
		shape, ok := decodeLinear(ps, c)
		if !ok {
			continue
		}
		inlined := false
		for i, v := range shape.vars {
			defCid, ok := definedBy[v]
			if !ok || defCid == cid {
				continue
			}
			refs := ps.aux.ConstraintsReferencing(v)
			if refs != nil && refs.Size() > 1 {
				continue
			}
			defShape, ok := decodeLinear(ps, ps.model.Constraint(defCid))
			if !ok {
				continue
			}
			coef := shape.coeffs[i]
			newVars := append([]VarID(nil), shape.vars[:i]...)
			newCoeffs := append([]int64(nil), shape.coeffs[:i]...)
			for j, w := range defShape.vars {
				newVars = append(newVars, w)
				newCoeffs = append(newCoeffs, saturatingMul(coef, defShape.coeffs[j]))
			}
			newVars = append(newVars, shape.vars[i+1:]...)
			newCoeffs = append(newCoeffs, shape.coeffs[i+1:]...)
			shape.vars, shape.coeffs = newVars, newCoeffs
			shape.rhs = saturatingSub(shape.rhs, saturatingMul(coef, defShape.rhs))
			ps.model.Constraint(defCid).Deactivate()
			inlined = true
			break
		}
		if inlined {
			if regrouped, did := regroupLinear(shape); did {
				shape = regrouped
			}
			writeBackLinear(ps, c, shape)
		}
	}
}

// linearSoleTarget returns the variable an int_lin_eq constraint defines
// (coefficient 1, rhs==0 offset folded in, exactly one variable term)
// or InvalidVarID if it doesn't have that shape.
func linearSoleTarget(ps *Presolver, c *Constraint) VarID {
	shape, ok := decodeLinear(ps, c)
	if !ok || len(shape.vars) != 1 || shape.coeffs[0] != 1 || shape.relation != "eq" {
		return InvalidVarID
	}
	return shape.vars[0]
}

// checkInvariants implements §7's final contract check: every active
// constraint's variable references must point at active variables, and an
// active constraint's TargetVariable must name a variable whose
// DefiningConstraint points back at that constraint. Violations accumulate via multierror.Append so a caller
// sees every problem found in one Run, not just the first.
func (ps *Presolver) checkInvariants() error {
	var result error
	for cid, c := range ps.model.Constraints {
		if !c.Active {
			continue
		}
		cid := ConstraintID(cid)
		for _, v := range c.Vars() {
			if !ps.model.Var(v).Active {
				result = ps.invalidShape(result, cid, "references an inactive variable")
			}
		}
		if c.TargetVariable != InvalidVarID {
			tv := ps.model.Var(c.TargetVariable)
			if tv.DefiningConstraint != cid {
				result = ps.invalidShape(result, cid, "TargetVariable's DefiningConstraint does not point back")
			}
		}
		if c.Tag == "set_in" && len(c.Args) == 2 && c.Args[1].Kind != ArgIntInterval && c.Args[1].Kind != ArgIntList {
			result = ps.invalidShape(result, cid, "set_in's value-set argument is not a constant")
		}
	}
	return result
}
