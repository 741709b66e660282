package presolve

import "strings"

// linearShape is a decoded int_lin_xx constraint: coeffs[i] * vars[i]
// summed must relate to rhs by relation, with reifBool set for the _reif
// variants (InvalidVarID otherwise).
type linearShape struct {
	coeffs   []int64
	vars     []VarID
	rhs      int64
	relation string // "eq", "ne", "le", "ge"
	reifBool VarID
}

// decodeLinear parses a constraint's Args into a linearShape, or reports
// ok=false if the shape doesn't match int_lin_xx's documented contract
// (§7's "Invalid shape").
func decodeLinear(ps *Presolver, c *Constraint) (linearShape, bool) {
	base := strings.TrimSuffix(c.Tag, "_reif")
	reified := strings.HasSuffix(c.Tag, "_reif")
	wantArgs := 3
	if reified {
		wantArgs = 4
	}
	if len(c.Args) != wantArgs || c.Args[0].Kind != ArgIntList || c.Args[1].Kind != ArgVarRefArray || !c.Args[2].HasOneValue(ps.model) {
		return linearShape{}, false
	}
	if len(c.Args[0].IntList) != len(c.Args[1].VarList) {
		return linearShape{}, false
	}
	var relation string
	switch {
	case strings.HasSuffix(base, "int_lin_eq"):
		relation = "eq"
	case strings.HasSuffix(base, "int_lin_ne"):
		relation = "ne"
	case strings.HasSuffix(base, "int_lin_le"):
		relation = "le"
	case strings.HasSuffix(base, "int_lin_lt"):
		relation = "le" // canonicalized below
	case strings.HasSuffix(base, "int_lin_ge"):
		relation = "ge"
	case strings.HasSuffix(base, "int_lin_gt"):
		relation = "ge" // canonicalized below
	default:
		return linearShape{}, false
	}
	rhs := c.Args[2].Value(ps.model)
	if strings.HasSuffix(base, "int_lin_lt") {
		rhs--
	}
	if strings.HasSuffix(base, "int_lin_gt") {
		rhs++
	}
	shape := linearShape{
		coeffs:   append([]int64(nil), c.Args[0].IntList...),
		vars:     append([]VarID(nil), c.Args[1].VarList...),
		rhs:      rhs,
		relation: relation,
	}
	shape.reifBool = InvalidVarID
	if reified {
		if c.Args[3].Kind != ArgVarRef {
			return linearShape{}, false
		}
		shape.reifBool = c.Args[3].Var
	}
	return shape, true
}

// negateLinear flips the relation's direction by negating every
// coefficient and the rhs, turning a >= constraint into an equivalent <=
// constraint (IntLinGt/IntLinLt canonicalization, §4.2).
func negateLinear(s linearShape) linearShape {
	out := s
	out.coeffs = make([]int64, len(s.coeffs))
	for i, v := range s.coeffs {
		out.coeffs[i] = saturatingNeg(v)
	}
	out.rhs = saturatingNeg(s.rhs)
	out.relation = "le"
	return out
}

// ruleIntLinear is the prefix-dispatched entry point for every int_lin_xx
// tag (§4.3's prefix pass): it canonicalizes ge/gt to le by sign flip,
// regroups duplicate variable references, evaluates fixed variables into
// the constant term, and then hands off to the arity-specific simplifier.
func ruleIntLinear(ps *Presolver, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	shape, ok := decodeLinear(ps, c)
	if !ok {
		return false
	}
	changed := false

	if shape.relation == "ge" {
		shape = negateLinear(shape)
		writeBackLinear(ps, c, shape)
		changed = true
	}

	if regrouped, did := regroupLinear(shape); did {
		shape = regrouped
		writeBackLinear(ps, c, shape)
		changed = true
	}

	if evaluated, did := evaluateFixedVars(ps, shape); did {
		shape = evaluated
		writeBackLinear(ps, c, shape)
		changed = true
	}

	if len(shape.vars) == 0 {
		if decideConstantLinear(ps, c, shape) {
			changed = true
		}
		return changed
	}

	if len(shape.vars) == 1 {
		if simplifyUnaryLinear(ps, c, shape) {
			changed = true
		}
		return changed
	}

	if len(shape.vars) == 2 && shape.relation == "eq" && shape.reifBool == InvalidVarID {
		if simplifyBinaryLinear(ps, cid, shape) {
			changed = true
		}
	}

	if shape.reifBool != InvalidVarID {
		if simplifyIntLinEqReif(ps, c, shape) {
			changed = true
		}
	} else if shape.relation == "le" && ps.options.StrongPropagation {
		if propagatePositiveLinear(ps, shape) {
			changed = true
		}
	}

	return changed
}

// writeBackLinear re-serializes shape into c.Args, matching the original
// tag shape (plain vs _reif).
func writeBackLinear(ps *Presolver, c *Constraint, shape linearShape) {
	args := []Argument{IntListArg(shape.coeffs), VarListArg(shape.vars), IntArg(shape.rhs)}
	if shape.reifBool != InvalidVarID {
		args = append(args, VarArg(shape.reifBool))
	}
	c.Args = args
	switch shape.relation {
	case "eq":
		c.Tag = "int_lin_eq"
	case "ne":
		c.Tag = "int_lin_ne"
	case "le":
		c.Tag = "int_lin_le"
	}
	if shape.reifBool != InvalidVarID {
		c.Tag += "_reif"
	}
}

// regroupLinear implements RegroupLinear (§4.2): coalesce repeated
// variable references by summing their coefficients, dropping any that
// cancel to zero.
func regroupLinear(s linearShape) (linearShape, bool) {
	index := make(map[VarID]int, len(s.vars))
	coeffs := make([]int64, 0, len(s.vars))
	vars := make([]VarID, 0, len(s.vars))
	changed := false
	for i, v := range s.vars {
		if pos, ok := index[v]; ok {
			coeffs[pos] = saturatingAdd(coeffs[pos], s.coeffs[i])
			changed = true
			continue
		}
		index[v] = len(vars)
		vars = append(vars, v)
		coeffs = append(coeffs, s.coeffs[i])
	}
	outVars := vars[:0]
	outCoeffs := coeffs[:0]
	for i, v := range vars {
		if coeffs[i] == 0 {
			changed = true
			continue
		}
		outVars = append(outVars, v)
		outCoeffs = append(outCoeffs, coeffs[i])
	}
	if !changed {
		return s, false
	}
	out := s
	out.vars = outVars
	out.coeffs = outCoeffs
	return out, true
}

// evaluateFixedVars implements the "zero-variable evaluation" half of
// PresolveLinear (§4.2): any already-fixed variable is folded into the
// constant term and dropped from the sum.
func evaluateFixedVars(ps *Presolver, s linearShape) (linearShape, bool) {
	var vars []VarID
	var coeffs []int64
	rhs := s.rhs
	changed := false
	for i, v := range s.vars {
		dom := ps.model.Var(v).Domain
		if dom.HasOneValue() {
			rhs = saturatingSub(rhs, saturatingMul(s.coeffs[i], dom.Value()))
			changed = true
			continue
		}
		vars = append(vars, v)
		coeffs = append(coeffs, s.coeffs[i])
	}
	if !changed {
		return s, false
	}
	out := s
	out.vars, out.coeffs, out.rhs = vars, coeffs, rhs
	return out, true
}

// decideConstantLinear handles a linear constraint with no variables left
// (every term evaluated away): it reduces to "0 REL rhs", a constant fact.
func decideConstantLinear(ps *Presolver, c *Constraint, s linearShape) bool {
	holds := false
	switch s.relation {
	case "eq":
		holds = s.rhs == 0
	case "ne":
		holds = s.rhs != 0
	case "le":
		holds = s.rhs >= 0
	}
	if s.reifBool != InvalidVarID {
		changed := ps.forceBool(s.reifBool, holds)
		c.Deactivate()
		return changed || true
	}
	if holds {
		c.Deactivate()
	} else {
		c.SetAsFalse()
	}
	return true
}

// simplifyUnaryLinear implements SimplifyUnaryLinear (§4.2): a single
// remaining term "coef*v REL rhs" rewrites directly into a domain
// tightening (or, for ne, a single value removal), bypassing the general
// n-ary machinery.
func simplifyUnaryLinear(ps *Presolver, c *Constraint, s linearShape) bool {
	if s.reifBool != InvalidVarID {
		return false
	}
	coef, v := s.coeffs[0], s.vars[0]
	if coef == 0 {
		return decideConstantLinear(ps, c, linearShape{relation: s.relation, rhs: s.rhs})
	}
	variable := ps.model.Var(v)
	before := variable.Domain
	switch s.relation {
	case "eq":
		q, ok := exactDiv(s.rhs, coef)
		if !ok {
			c.SetAsFalse()
			return true
		}
		variable.Domain = variable.Domain.IntersectInterval(q, q)
	case "ne":
		if q, ok := exactDiv(s.rhs, coef); ok {
			variable.Domain = variable.Domain.RemoveValue(q)
		} else {
			c.Deactivate()
			return true
		}
	case "le":
		// coef*v <= rhs
		if coef > 0 {
			bound, _ := floorDiv(s.rhs, coef)
			variable.Domain = variable.Domain.IntersectInterval(NegativeInfinity, bound)
		} else {
			bound, _ := ceilDiv(s.rhs, coef)
			variable.Domain = variable.Domain.IntersectInterval(bound, PositiveInfinity)
		}
	}
	c.Deactivate()
	_ = before
	return true
}

// exactDiv returns rhs/coef when it divides evenly.
func exactDiv(rhs, coef int64) (int64, bool) {
	if coef == 0 || rhs%coef != 0 {
		return 0, false
	}
	return rhs / coef, true
}

// simplifyBinaryLinear implements SimplifyBinaryLinear (§4.2): a two-term
// equality "c1*x + c2*y = rhs" is recorded into AffineMap for the general
// "y = coef*x + offset" shape, so later element/comparison rules can
// recognize and fold through it. The constraint itself is left active:
// the mapping is advisory, not a replacement for the constraint.
//
// This two-term shape does not feed DifferenceMap: DifferenceMap records
// a genuine three-distinct-variable relation "z = a - b" (see
// DetectDifferenceFromLinear), and a two-term "x - y = 0" is already
// fully captured by the AffineMap entry below (Coef 1, Offset 0).
func simplifyBinaryLinear(ps *Presolver, cid ConstraintID, s linearShape) bool {
	c1, x := s.coeffs[0], s.vars[0]
	c2, y := s.coeffs[1], s.vars[1]
	changed := false

	if c2 != 0 && (c2 == 1 || c2 == -1) {
		// y's coefficient is ±1: solve for y = (rhs - c1*x)/c2.
		if _, ok := ps.aux.AffineMap[y]; !ok {
			coef := -c1 / c2
			offset := s.rhs / c2
			if c1%c2 == 0 && s.rhs%c2 == 0 {
				ps.aux.AffineMap[y] = AffineRelation{V: x, Coef: coef, Offset: offset, OriginConstraint: cid}
				CreateLinearTarget(ps.model, cid, y)
				changed = true
			}
		}
	}
	return changed
}

// propagatePositiveLinear implements PropagatePositiveLinear (§4.2): when
// every coefficient is positive, each variable's upper bound can be
// tightened from the others' current bounds without waiting for them to
// become fixed. This is gated on StrongPropagation because it runs a full
// bound sweep every time it fires and only strictly tightens (never
// resolves) the constraint.
func propagatePositiveLinear(ps *Presolver, s linearShape) bool {
	allPositive := true
	for _, v := range s.coeffs {
		if v <= 0 {
			allPositive = false
			break
		}
	}
	if !allPositive {
		return false
	}
	changed := false
	for i, v := range s.vars {
		var othersMin int64
		for j, w := range s.vars {
			if j == i {
				continue
			}
			othersMin = saturatingAdd(othersMin, saturatingMul(s.coeffs[j], ps.model.Var(w).Domain.Min()))
		}
		bound, _ := floorDiv(saturatingSub(s.rhs, othersMin), s.coeffs[i])
		variable := ps.model.Var(v)
		before := variable.Domain
		variable.Domain = variable.Domain.IntersectInterval(NegativeInfinity, bound)
		if !before.Equal(variable.Domain) {
			changed = true
		}
	}
	return changed
}

// simplifyIntLinEqReif implements SimplifyIntLinEqReif (§4.2): when the
// bounds of the linear sum already guarantee (or preclude) meeting rhs,
// the reification boolean can be decided outright via
// CheckIntLinReifBounds.
func simplifyIntLinEqReif(ps *Presolver, c *Constraint, s linearShape) bool {
	min, max := linearBounds(ps, s)
	switch s.relation {
	case "eq":
		if min > s.rhs || max < s.rhs {
			changed := ps.forceBool(s.reifBool, false)
			c.Deactivate()
			return changed || true
		}
		if min == max && min == s.rhs {
			changed := ps.forceBool(s.reifBool, true)
			c.Deactivate()
			return changed || true
		}
	case "le":
		if max <= s.rhs {
			changed := ps.forceBool(s.reifBool, true)
			c.Deactivate()
			return changed || true
		}
		if min > s.rhs {
			changed := ps.forceBool(s.reifBool, false)
			c.Deactivate()
			return changed || true
		}
	case "ne":
		if min == max && min == s.rhs {
			changed := ps.forceBool(s.reifBool, false)
			c.Deactivate()
			return changed || true
		}
		if min > s.rhs || max < s.rhs {
			changed := ps.forceBool(s.reifBool, true)
			c.Deactivate()
			return changed || true
		}
	}
	return false
}

// linearBounds computes CheckIntLinReifBounds' min/max achievable sum
// given each variable's current domain.
func linearBounds(ps *Presolver, s linearShape) (int64, int64) {
	var min, max int64
	for i, v := range s.vars {
		dom := ps.model.Var(v).Domain
		lo, hi := dom.Min(), dom.Max()
		coef := s.coeffs[i]
		var termMin, termMax int64
		if coef >= 0 {
			termMin, termMax = saturatingMul(coef, lo), saturatingMul(coef, hi)
		} else {
			termMin, termMax = saturatingMul(coef, hi), saturatingMul(coef, lo)
		}
		min = saturatingAdd(min, termMin)
		max = saturatingAdd(max, termMax)
	}
	return min, max
}

// CreateLinearTarget records a constraint's TargetVariable when its
// linear shape isolates a single variable with coefficient ±1 on one side
// of an equality — the common artifact of flattening "y = expr" into
// int_lin_eq. Exported so scan.go's FirstPassModelScan can call it while
// building the difference/affine maps in the same sweep.
func CreateLinearTarget(m *Model, cid ConstraintID, target VarID) {
	c := m.Constraint(cid)
	if c.TargetVariable != InvalidVarID {
		return
	}
	v := m.Var(target)
	if v.DefiningConstraint != InvalidConstraintID {
		return
	}
	c.TargetVariable = target
	v.DefiningConstraint = cid
}

// DetectAffineFromLinear implements the supplemental recognition rule of
// §4.2.1: any two-term int_lin_eq of the shape "y - coef*x = offset"
// (coefficient on y equal to ±1) populates AffineMap during
// FirstPassModelScan, before the general fixed-point loop has had a
// chance to reach this constraint on its own, letting DetectAbsFromElement
// and the element rules fold through a scaled relationship from the very
// first sweep.
func DetectAffineFromLinear(ps *Presolver, cid ConstraintID) {
	c := ps.model.Constraint(cid)
	if c.Tag != "int_lin_eq" {
		return
	}
	shape, ok := decodeLinear(ps, c)
	if !ok || len(shape.vars) != 2 {
		return
	}
	simplifyBinaryLinear(ps, cid, shape)
}

// DetectArray2DIndexFromLinear implements the 2D analogue of
// DetectAffineFromLinear (§4.2.1): a three-term int_lin_eq of the shape
// "i = coef1*v1 + v2 + offset" (coefficient -1 on the index term i,
// exactly 1 on v2) populates Array2DIndexMap during FirstPassModelScan,
// the common artifact of flattening a 2D array access "a[v1][v2]" into a
// single linear index computation ahead of the element constraint.
func DetectArray2DIndexFromLinear(ps *Presolver, cid ConstraintID) {
	c := ps.model.Constraint(cid)
	if c.Tag != "int_lin_eq" {
		return
	}
	shape, ok := decodeLinear(ps, c)
	if !ok || len(shape.vars) != 3 {
		return
	}
	for ii, ci := range shape.coeffs {
		if ci != -1 {
			continue
		}
		i := shape.vars[ii]
		if _, exists := ps.aux.Array2DIndexMap[i]; exists {
			continue
		}
		for jj, cj := range shape.coeffs {
			if jj == ii || cj != 1 {
				continue
			}
			kk := 3 - ii - jj
			ps.aux.Array2DIndexMap[i] = Array2DIndexRelation{
				V1:               shape.vars[kk],
				Coef1:            shape.coeffs[kk],
				V2:               shape.vars[jj],
				Offset:           -shape.rhs,
				OriginConstraint: cid,
			}
			return
		}
	}
}

// DetectDifferenceFromLinear implements §4.3's DifferenceMap seeding: a
// three-term int_lin_eq with coefficients ±[1,-1,1] and RHS 0 is the
// flattening artifact of "z = a - b" (equivalently "a + b's negation -
// z = 0" in whatever order the flattener emitted the terms). The lone
// variable carrying the -1 coefficient is z; the other two, in their
// original argument order, are (a, b).
func DetectDifferenceFromLinear(ps *Presolver, cid ConstraintID) {
	c := ps.model.Constraint(cid)
	if c.Tag != "int_lin_eq" {
		return
	}
	shape, ok := decodeLinear(ps, c)
	if !ok || len(shape.vars) != 3 || shape.rhs != 0 {
		return
	}

	negIdx := -1
	posCount := 0
	for i, coef := range shape.coeffs {
		switch coef {
		case -1:
			if negIdx != -1 {
				return
			}
			negIdx = i
		case 1:
			posCount++
		default:
			return
		}
	}
	if negIdx == -1 || posCount != 2 {
		return
	}

	z := shape.vars[negIdx]
	if _, exists := ps.aux.DifferenceMap[z]; exists {
		return
	}
	var a, b VarID
	first := true
	for i, v := range shape.vars {
		if i == negIdx {
			continue
		}
		if first {
			a = v
			first = false
		} else {
			b = v
		}
	}
	ps.aux.DifferenceMap[z] = DifferencePair{A: a, B: b}
}
