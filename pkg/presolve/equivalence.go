package presolve

// substitution records one completed AddVariableSubstitution call: from has
// been retired in favor of to. The driver replays this list against the
// whole model in SubstituteEverywhere, then clears it.
type substitution struct {
	from, to VarID
}

// equivalence is the union-find over variable indices described in §4.1.
// Path compression happens lazily in FindRepresentative; unions happen in
// AddVariableSubstitution. parent only holds entries for variables that
// have actually been unioned with something — a variable absent from the
// map is its own representative.
type equivalence struct {
	parent  map[VarID]VarID
	pending []substitution
}

func newEquivalence() *equivalence {
	return &equivalence{parent: make(map[VarID]VarID)}
}

// FindRepresentative walks parent pointers to the root and compresses the
// path traversed so that every visited node points directly at the root,
// per §4.1 and the representative-closure testable property (§8.6).
func (e *equivalence) FindRepresentative(v VarID) VarID {
	root := v
	for {
		p, ok := e.parent[root]
		if !ok {
			break
		}
		root = p
	}
	for v != root {
		next := e.parent[v]
		e.parent[v] = root
		v = next
	}
	return root
}

// HasPending reports whether any substitution has been recorded since the
// last flush. The driver treats a true result as a break point: abort the
// current sweep, flush, and restart (§4.3, §5).
func (e *equivalence) HasPending() bool { return len(e.pending) > 0 }

// Pending returns the substitutions recorded since the last flush.
func (e *equivalence) Pending() []substitution { return e.pending }

// clearPending discards the recorded substitutions after a flush.
func (e *equivalence) clearPending() { e.pending = nil }

// AddVariableSubstitution records that from and to denote the same value
// and should be unified, per §4.1. Returns false if the two sides already
// share a representative (nothing to do).
func (e *equivalence) AddVariableSubstitution(m *Model, from, to VarID) bool {
	from = e.FindRepresentative(from)
	to = e.FindRepresentative(to)
	if from == to {
		return false
	}

	fromVar, toVar := m.Var(from), m.Var(to)

	// If exactly one side is temporary, eliminate that side so the
	// non-temporary variable survives.
	if !fromVar.Temporary && toVar.Temporary {
		from, to = to, from
		fromVar, toVar = toVar, fromVar
	}

	if fromVar.DefiningConstraint != InvalidConstraintID && toVar.DefiningConstraint != InvalidConstraintID {
		// Both sides used to define a value; the survivor's defining
		// constraint wins, the eliminated side's target is cleared.
		m.Constraint(fromVar.DefiningConstraint).TargetVariable = InvalidVarID
		fromVar.DefiningConstraint = InvalidConstraintID
	}

	toVar.Name = fromVar.Name
	toVar.Domain = toVar.Domain.Intersect(fromVar.Domain)
	if toVar.DefiningConstraint == InvalidConstraintID && fromVar.DefiningConstraint != InvalidConstraintID {
		toVar.DefiningConstraint = fromVar.DefiningConstraint
		m.Constraint(toVar.DefiningConstraint).TargetVariable = to
	}

	fromVar.Active = false
	e.parent[from] = to
	e.pending = append(e.pending, substitution{from: from, to: to})
	return true
}

// rewriteArg rewrites every variable reference in a to its current
// representative, reporting whether anything changed.
func (e *equivalence) rewriteArg(a Argument) (Argument, bool) {
	switch a.Kind {
	case ArgVarRef:
		rep := e.FindRepresentative(a.Var)
		if rep == a.Var {
			return a, false
		}
		a.Var = rep
		return a, true
	case ArgVarRefArray:
		changed := false
		list := a.VarList
		for i, v := range list {
			if rep := e.FindRepresentative(v); rep != v {
				if !changed {
					list = append([]VarID(nil), a.VarList...)
					changed = true
				}
				list[i] = rep
			}
		}
		if changed {
			a.VarList = list
		}
		return a, changed
	default:
		return a, false
	}
}

func (e *equivalence) rewriteAnnotation(n *SearchAnnotation) {
	if n == nil {
		return
	}
	if n.IsVar {
		n.Var = e.FindRepresentative(n.Var)
	}
	for _, child := range n.Children {
		e.rewriteAnnotation(child)
	}
}

// SubstituteEverywhere materializes every pending substitution across the
// whole model: constraint arguments, target variables, search annotations,
// and output specs (§4.1). It rebuilds the var-to-constraints reverse
// index (owned by AuxMaps) to match and, finally, re-intersects each
// surviving representative's domain with its eliminated variable's last
// known domain so that any tightening recorded against the eliminated side
// between the union and this flush is not lost.
func (e *equivalence) SubstituteEverywhere(m *Model, aux *AuxMaps) {
	for cid, c := range m.Constraints {
		if !c.Active {
			continue
		}
		changedAny := false
		for i, a := range c.Args {
			if rewritten, changed := e.rewriteArg(a); changed {
				c.Args[i] = rewritten
				changedAny = true
			}
		}
		if c.TargetVariable != InvalidVarID {
			if rep := e.FindRepresentative(c.TargetVariable); rep != c.TargetVariable {
				c.TargetVariable = rep
				changedAny = true
			}
		}
		if changedAny {
			aux.reindexConstraint(m, ConstraintID(cid))
		}
	}

	for _, ann := range m.SearchAnnotations {
		e.rewriteAnnotation(ann)
	}
	for _, out := range m.Outputs {
		out.Arg, _ = e.rewriteArg(out.Arg)
	}

	for _, sub := range e.pending {
		root := e.FindRepresentative(sub.to)
		toVar, fromVar := m.Var(root), m.Var(sub.from)
		toVar.Domain = toVar.Domain.Intersect(fromVar.Domain)
	}
	e.clearPending()
}
