package presolve

import (
	"github.com/hashicorp/go-set/v3"
)

// DifferencePair records "var = a - b", discovered by FirstPassModelScan
// from an int_lin_eq([1,1,-1],[a,b,var],0)-shaped constraint.
type DifferencePair struct {
	A, B VarID
}

// AffineRelation records "var = coef*V + Offset", discovered from a
// two-term int_lin_eq. OriginConstraint is kept so element rules can
// deactivate the constraint that produced the mapping once they have
// consumed it.
type AffineRelation struct {
	V                VarID
	Coef             int64
	Offset           int64
	OriginConstraint ConstraintID
}

// Array2DIndexRelation records "var = Coef1*V1 + V2 + Offset", the 2D
// analogue of AffineRelation used to rewrite element constraints indexed
// by a flattened 2D position.
type Array2DIndexRelation struct {
	V1               VarID
	Coef1            int64
	V2               VarID
	Offset           int64
	OriginConstraint ConstraintID
}

// varPair is a canonically-ordered (small, large) key for IntEqReifMap, so
// that (x,y) and (y,x) memoize to the same entry.
type varPair struct{ lo, hi VarID }

func newVarPair(a, b VarID) varPair {
	if a <= b {
		return varPair{lo: a, hi: b}
	}
	return varPair{lo: b, hi: a}
}

// AuxMaps bundles every auxiliary index populated by recognition rules and
// consumed by rewrite rules (§3). All of it lives only for the duration of
// a single Presolver.Run.
type AuxMaps struct {
	DifferenceMap   map[VarID]DifferencePair
	AbsMap          map[VarID]VarID
	AffineMap       map[VarID]AffineRelation
	Array2DIndexMap map[VarID]Array2DIndexRelation
	IntEqReifMap    map[varPair]VarID

	// VarToConstraints is the reverse index from a variable to every
	// active constraint currently referencing it, backed by
	// github.com/hashicorp/go-set/v3 for cheap membership/removal during
	// SubstituteEverywhere's reindexing.
	VarToConstraints map[VarID]*set.Set[ConstraintID]

	// DecisionVariables is harvested from search annotations by
	// FirstPassModelScan.
	DecisionVariables *set.Set[VarID]
}

// newAuxMaps returns an empty AuxMaps ready for a single Run.
func newAuxMaps() *AuxMaps {
	return &AuxMaps{
		DifferenceMap:     make(map[VarID]DifferencePair),
		AbsMap:            make(map[VarID]VarID),
		AffineMap:         make(map[VarID]AffineRelation),
		Array2DIndexMap:   make(map[VarID]Array2DIndexRelation),
		IntEqReifMap:      make(map[varPair]VarID),
		VarToConstraints:  make(map[VarID]*set.Set[ConstraintID]),
		DecisionVariables: set.New[VarID](0),
	}
}

// buildVarToConstraints rebuilds the whole reverse index from scratch, as
// the driver does once at the start of a Run if it was never built (§4.3:
// "if var_to_constraints empty: build it from the model").
func (aux *AuxMaps) buildVarToConstraints(m *Model) {
	aux.VarToConstraints = make(map[VarID]*set.Set[ConstraintID])
	for cid, c := range m.Constraints {
		if !c.Active {
			continue
		}
		aux.reindexConstraint(m, ConstraintID(cid))
	}
}

// reindexConstraint recomputes the reverse-index memberships for a single
// constraint, adding it under every variable it currently references.
// Stale memberships under variables it no longer references are left
// behind (they are harmless: a set membership for an inactive or
// no-longer-referencing pairing is simply never consulted again) except
// when the constraint itself went inactive, in which case every mapping
// for it is dropped.
func (aux *AuxMaps) reindexConstraint(m *Model, cid ConstraintID) {
	c := m.Constraint(cid)
	if !c.Active {
		for _, s := range aux.VarToConstraints {
			s.Remove(cid)
		}
		return
	}
	for _, v := range c.Vars() {
		s, ok := aux.VarToConstraints[v]
		if !ok {
			s = set.New[ConstraintID](1)
			aux.VarToConstraints[v] = s
		}
		s.Insert(cid)
	}
}

// ConstraintsReferencing returns the set of active constraints currently
// referencing v, or nil if none are indexed.
func (aux *AuxMaps) ConstraintsReferencing(v VarID) *set.Set[ConstraintID] {
	return aux.VarToConstraints[v]
}

// clear resets every auxiliary map. The driver calls this after a
// SubstituteEverywhere flush, since the maps may reference variables that
// no longer exist under their recorded identity. The scan passes run once
// per Run, before any flush, so entries only they write (DifferenceMap,
// Array2DIndexMap, and AbsMap entries from DetectAbsFromElement) are not
// rebuilt; AffineMap, AbsMap and IntEqReifMap entries come back as
// ruleIntLinear, ruleIntAbs and ruleIntEqReif fire again.
func (aux *AuxMaps) clear() {
	aux.DifferenceMap = make(map[VarID]DifferencePair)
	aux.AbsMap = make(map[VarID]VarID)
	aux.AffineMap = make(map[VarID]AffineRelation)
	aux.Array2DIndexMap = make(map[VarID]Array2DIndexRelation)
	aux.IntEqReifMap = make(map[varPair]VarID)
	// VarToConstraints and DecisionVariables survive a flush: they are
	// rebuilt by reindexConstraint as substitution rewrites run, and
	// decision_variables is scan-once per Run, not per sweep.
}
