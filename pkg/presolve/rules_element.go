package presolve

// ruleArrayIntElement implements §4.2's ArrayIntElement:
// array_int_element(idx, array, target) constrains target == array[idx]
// under the modeling language's 1-based indexing. A fixed idx resolves
// target outright; otherwise idx's domain is truncated to the array's
// valid index range, the target's domain is narrowed to the values the
// array takes on across idx's remaining domain, and a fixed target
// narrows idx to only the indices whose array entry matches.
func ruleArrayIntElement(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 3 || c.Args[0].Kind != ArgVarRef || c.Args[1].Kind != ArgIntList || c.Args[2].Kind != ArgVarRef {
		return false
	}
	idx, array, target := c.Args[0].Var, c.Args[1].IntList, c.Args[2].Var

	if rel, ok := ps.aux.Array2DIndexMap[idx]; ok {
		if rewriteElementThrough2DIndex(ps, c, rel, array, target) {
			return true
		}
	}
	if rel, ok := ps.aux.AffineMap[idx]; ok {
		if rewriteElementThroughAffine(ps, c, rel, array, target) {
			return true
		}
	}

	idxVar := ps.model.Var(idx)
	changed := false

	before := idxVar.Domain
	idxVar.Domain = idxVar.Domain.IntersectInterval(1, int64(len(array)))
	if !before.Equal(idxVar.Domain) {
		changed = true
	}

	if idxVar.Domain.HasOneValue() {
		value := array[idxVar.Domain.Value()-1]
		targetVar := ps.model.Var(target)
		targetVar.Domain = targetVar.Domain.IntersectInterval(value, value)
		c.Deactivate()
		return true
	}

	// Even with idx unresolved, every index it could still take bounds
	// the target to the array values reachable from those positions.
	targetVar := ps.model.Var(target)
	reachable := make([]int64, 0, idxVar.Domain.Size())
	idxVar.Domain.ForEach(func(i int64) {
		reachable = append(reachable, array[i-1])
	})
	beforeTarget := targetVar.Domain
	targetVar.Domain = targetVar.Domain.IntersectList(reachable)
	if !beforeTarget.Equal(targetVar.Domain) {
		changed = true
	}

	if targetVar.Domain.HasOneValue() {
		wanted := targetVar.Domain.Value()
		var admissible []int64
		idxVar.Domain.ForEach(func(i int64) {
			if array[i-1] == wanted {
				admissible = append(admissible, i)
			}
		})
		restricted := NewListDomain(admissible)
		before := idxVar.Domain
		idxVar.Domain = idxVar.Domain.Intersect(restricted)
		if !before.Equal(idxVar.Domain) {
			changed = true
		}
		if idxVar.Domain.HasOneValue() {
			c.Deactivate()
			return true
		}
	}
	return changed
}

// rewriteElementThroughAffine implements the AffineMap branch of the
// Element rules (§4.2): when the index is known to be a scaled variable
// (idx = Coef*j + Offset), the array is resampled at the positions j's
// current domain reaches and the constraint retargets directly onto j,
// so the affine constraint that produced the mapping is no longer
// needed. Declines (returns false, leaving the original index in place)
// if any reachable j value would fall outside the array's bounds, since
// that means the recorded relation doesn't actually hold universally
// over j's domain yet.
func rewriteElementThroughAffine(ps *Presolver, c *Constraint, rel AffineRelation, array []int64, target VarID) bool {
	origin := ps.model.Constraint(rel.OriginConstraint)
	if !origin.Active {
		return false
	}
	jVar := ps.model.Var(rel.V)
	resampled := make([]int64, 0, jVar.Domain.Size())
	ok := true
	jVar.Domain.ForEach(func(j int64) {
		if !ok {
			return
		}
		pos := rel.Coef*j + rel.Offset
		if pos < 1 || pos > int64(len(array)) {
			ok = false
			return
		}
		resampled = append(resampled, array[pos-1])
	})
	if !ok || len(resampled) == 0 {
		return false
	}
	c.Args = []Argument{VarArg(rel.V), IntListArg(resampled), VarArg(target)}
	origin.Deactivate()
	return true
}

// rewriteElementThrough2DIndex implements the Array2DIndexMap branch of
// the Element rules (§4.2): when the index is known to flatten a 2D
// position (idx = Coef1*V1 + V2 + Offset), there is no single
// replacement index variable to resample onto the way the 1D affine
// case has, so the element access is rewritten directly into its
// two-index form instead, and the linear constraint that produced the
// mapping is retired.
func rewriteElementThrough2DIndex(ps *Presolver, c *Constraint, rel Array2DIndexRelation, array []int64, target VarID) bool {
	origin := ps.model.Constraint(rel.OriginConstraint)
	if !origin.Active {
		return false
	}
	c.Tag = "array_int_element_2d"
	c.Args = []Argument{
		VarArg(rel.V1),
		IntArg(rel.Coef1),
		VarArg(rel.V2),
		IntArg(rel.Offset),
		IntListArg(array),
		VarArg(target),
	}
	origin.Deactivate()
	return true
}

// ruleArrayVarIntElement implements §4.2's ArrayVarIntElement, the
// variable-array analogue of ArrayIntElement. Once idx is fixed, the
// constraint rewrites to a direct int_eq(array[idx], target); if every
// array entry also happens to be fixed, the whole thing downgrades to
// array_int_element so ruleArrayIntElement's narrower logic applies on
// the next sweep.
func ruleArrayVarIntElement(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 3 || c.Args[0].Kind != ArgVarRef || c.Args[1].Kind != ArgVarRefArray || c.Args[2].Kind != ArgVarRef {
		return false
	}
	idx, array, target := c.Args[0].Var, c.Args[1].VarList, c.Args[2].Var
	idxVar := ps.model.Var(idx)
	changed := false

	before := idxVar.Domain
	idxVar.Domain = idxVar.Domain.IntersectInterval(1, int64(len(array)))
	if !before.Equal(idxVar.Domain) {
		changed = true
	}

	if idxVar.Domain.HasOneValue() {
		chosen := array[idxVar.Domain.Value()-1]
		c.Tag = "int_eq"
		c.Args = []Argument{VarArg(chosen), VarArg(target)}
		return true
	}

	allFixed := true
	ints := make([]int64, len(array))
	for i, v := range array {
		dom := ps.model.Var(v).Domain
		if !dom.HasOneValue() {
			allFixed = false
			break
		}
		ints[i] = dom.Value()
	}
	if allFixed {
		c.Tag = "array_int_element"
		c.Args = []Argument{VarArg(idx), IntListArg(ints), VarArg(target)}
		return true
	}
	return changed
}

// ruleIntAbs implements the int_abs(x, y) builtin: y == |x|. Populates
// AbsMap[y] = x so later rules (e.g. RemoveAbsFromIntLeReif in
// rules_reif.go) can fold a comparison against y back into a bounded
// comparison against x directly.
func ruleIntAbs(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	if len(c.Args) != 2 || c.Args[0].Kind != ArgVarRef || c.Args[1].Kind != ArgVarRef {
		return false
	}
	x, y := c.Args[0].Var, c.Args[1].Var
	changed := false
	if _, ok := ps.aux.AbsMap[y]; !ok {
		ps.aux.AbsMap[y] = x
		changed = true
	}

	xVar, yVar := ps.model.Var(x), ps.model.Var(y)
	if xVar.Domain.HasOneValue() {
		v := xVar.Domain.Value()
		abs := v
		if abs < 0 {
			abs = -abs
		}
		before := yVar.Domain
		yVar.Domain = yVar.Domain.IntersectInterval(abs, abs)
		if !before.Equal(yVar.Domain) {
			changed = true
		}
		c.Deactivate()
		return true
	}
	// Tighten y's lower bound to 0 and its upper bound to max(|lo|,|hi|).
	lo, hi := xVar.Domain.Min(), xVar.Domain.Max()
	if !isInfinite(lo) && !isInfinite(hi) {
		bound := hi
		if -lo > bound {
			bound = -lo
		}
		before := yVar.Domain
		yVar.Domain = yVar.Domain.IntersectInterval(0, bound)
		if !before.Equal(yVar.Domain) {
			changed = true
		}
	}
	return changed
}

// DetectAbsFromElement implements the supplemental recognition rule of
// §4.2.1: an array_int_element whose constant array is the symmetric
// "distance from the middle index" pattern ([n, n-1, ..., 1, 0, 1, ...,
// n]) is how some flatteners encode abs(x) = y when int_abs isn't
// available as a builtin. Recognizing it populates AbsMap exactly as
// ruleIntAbs would, letting the reif folding rules treat both encodings
// identically.
func DetectAbsFromElement(ps *Presolver, cid ConstraintID) {
	c := ps.model.Constraint(cid)
	if c.Tag != "array_int_element" || len(c.Args) != 3 {
		return
	}
	if c.Args[0].Kind != ArgVarRef || c.Args[1].Kind != ArgIntList || c.Args[2].Kind != ArgVarRef {
		return
	}
	array := c.Args[1].IntList
	n := len(array)
	if n == 0 || n%2 == 0 {
		return
	}
	mid := n / 2
	if array[mid] != 0 {
		return
	}
	for i := 1; i <= mid; i++ {
		if array[mid-i] != int64(i) || array[mid+i] != int64(i) {
			return
		}
	}
	// The entry at 1-based idx is |x| exactly when idx = x + mid + 1.
	// Without a recorded affine relation for idx we cannot recover x
	// directly, so this recognizer only fires when idx has an AffineMap
	// entry of that shape (coefficient 1, offset mid+1).
	rel, ok := ps.aux.AffineMap[c.Args[0].Var]
	if !ok || rel.Coef != 1 || rel.Offset != int64(mid)+1 {
		return
	}
	if _, ok := ps.aux.AbsMap[c.Args[2].Var]; !ok {
		ps.aux.AbsMap[c.Args[2].Var] = rel.V
	}
}
