package presolve

import "fmt"

// VarID indexes into Model.Variables. It is used instead of a *Variable
// pointer so that substitution and deactivation (which retarget or disable
// entries in place) are safe to observe from code holding an older VarID
// captured before a sweep ran; see §9 DESIGN NOTES.
type VarID int

// ConstraintID indexes into Model.Constraints, for the same reason VarID
// indexes Model.Variables rather than using a pointer.
type ConstraintID int

// InvalidVarID and InvalidConstraintID mark an absent reference: a
// Constraint with no TargetVariable, or a Variable with no
// DefiningConstraint.
const (
	InvalidVarID        VarID        = -1
	InvalidConstraintID ConstraintID = -1
)

// Variable is one integer decision variable of the model.
type Variable struct {
	// Name is used only for diagnostics (verbose logging, String()); the
	// presolver never branches on it.
	Name string
	// Domain is this variable's current set of admissible values.
	Domain Domain
	// Active is false once the variable has been substituted away by
	// AddVariableSubstitution. An inactive variable must not be referenced
	// by any active constraint (§3 invariant).
	Active bool
	// Temporary marks a variable introduced by flattening (as opposed to
	// one named directly in the source model). AddVariableSubstitution
	// prefers eliminating temporary variables over named ones.
	Temporary bool
	// DefiningConstraint is the constraint, if any, that computes this
	// variable's value from the others. InvalidConstraintID means none.
	DefiningConstraint ConstraintID
}

// ArgKind discriminates the payload a Argument carries.
type ArgKind int

const (
	// ArgIntValue carries a single integer constant.
	ArgIntValue ArgKind = iota
	// ArgIntInterval carries an integer interval constant [Lo, Hi].
	ArgIntInterval
	// ArgIntList carries an explicit list of integer constants.
	ArgIntList
	// ArgVarRef carries a reference to a single variable.
	ArgVarRef
	// ArgVarRefArray carries an ordered list of variable references.
	ArgVarRefArray
)

// Argument is a tagged union over a constraint's operands, mirroring the
// flat modeling language's own argument shapes: a scalar constant, an
// interval constant, a list constant, a variable, or a variable array.
type Argument struct {
	Kind ArgKind

	IntValue int64   // valid when Kind == ArgIntValue
	Lo, Hi   int64   // valid when Kind == ArgIntInterval
	IntList  []int64 // valid when Kind == ArgIntList

	Var     VarID   // valid when Kind == ArgVarRef
	VarList []VarID // valid when Kind == ArgVarRefArray
}

// IntArg returns an ArgIntValue argument.
func IntArg(v int64) Argument { return Argument{Kind: ArgIntValue, IntValue: v} }

// IntervalArg returns an ArgIntInterval argument.
func IntervalArg(lo, hi int64) Argument { return Argument{Kind: ArgIntInterval, Lo: lo, Hi: hi} }

// IntListArg returns an ArgIntList argument.
func IntListArg(values []int64) Argument { return Argument{Kind: ArgIntList, IntList: values} }

// VarArg returns an ArgVarRef argument.
func VarArg(v VarID) Argument { return Argument{Kind: ArgVarRef, Var: v} }

// VarListArg returns an ArgVarRefArray argument.
func VarListArg(vars []VarID) Argument { return Argument{Kind: ArgVarRefArray, VarList: vars} }

// IsVariable reports whether the argument references one or more
// variables (ArgVarRef or ArgVarRefArray), as opposed to carrying a
// constant payload outright.
func (a Argument) IsVariable() bool {
	return a.Kind == ArgVarRef || a.Kind == ArgVarRefArray
}

// HasOneValue reports whether the argument resolves to a single integer:
// true for any constant-kind argument that is itself a singleton (a scalar
// value, or a singleton interval/list), and for an ArgVarRef whose
// variable currently has a singleton domain.
func (a Argument) HasOneValue(m *Model) bool {
	switch a.Kind {
	case ArgIntValue:
		return true
	case ArgIntInterval:
		return a.Lo == a.Hi
	case ArgIntList:
		return len(a.IntList) == 1
	case ArgVarRef:
		return m.Var(a.Var).Domain.HasOneValue()
	default:
		return false
	}
}

// Value returns the sole integer this argument resolves to. Behavior is
// undefined if HasOneValue is false.
func (a Argument) Value(m *Model) int64 {
	switch a.Kind {
	case ArgIntValue:
		return a.IntValue
	case ArgIntInterval:
		return a.Lo
	case ArgIntList:
		return a.IntList[0]
	case ArgVarRef:
		return m.Var(a.Var).Domain.Value()
	default:
		panic("presolve: Value called on an argument with no single value")
	}
}

// Constraint is one entry of the flattened model: a tag naming the
// operator plus its argument vector, together with presolve bookkeeping.
type Constraint struct {
	// Tag names the operator, e.g. "int_eq", "array_bool_or",
	// "int_lin_eq_reif". Dispatch in rules.go keys off this by exact
	// match, prefix ("int_lin_"), or suffix ("_reif").
	Tag string
	// Args is the operator's fixed-arity argument vector.
	Args []Argument
	// Active is false once the constraint has been presolved away. An
	// inactive constraint is ignored by every subsequent pass (§3).
	Active bool
	// TargetVariable is the variable this constraint is responsible for
	// defining, or InvalidVarID if none. When set, TargetVariable must
	// appear among Args's variable references, and
	// Model.Var(TargetVariable).DefiningConstraint must point back to this
	// constraint's ConstraintID.
	TargetVariable VarID
	// PresolvePropagationDone guards a once-only propagation that would
	// otherwise refire on every sweep without making further progress.
	PresolvePropagationDone bool
	// StrongPropagation is an input annotation opting a constraint into
	// rules that are valid but only worth their cost for constraints the
	// upstream model explicitly flagged (see the cleanup pass, §4.4).
	StrongPropagation bool
	// SetAsFalseFlag, once true, marks this constraint as a detected
	// unsatisfiable constant: the model as a whole is infeasible. The
	// presolver does not act further on this information; see §7.
	SetAsFalseFlag bool
}

// SetAsFalse marks the constraint as an unsatisfiable constant and
// deactivates it (an inconsistent constraint has nothing further to
// presolve).
func (c *Constraint) SetAsFalse() {
	c.SetAsFalseFlag = true
	c.Active = false
}

// Deactivate marks the constraint as presolved away.
func (c *Constraint) Deactivate() { c.Active = false }

// Vars returns every VarID this constraint's arguments reference, in
// argument order (ArgVarRefArray contributes each element in turn).
func (c *Constraint) Vars() []VarID {
	var out []VarID
	for _, a := range c.Args {
		switch a.Kind {
		case ArgVarRef:
			out = append(out, a.Var)
		case ArgVarRefArray:
			out = append(out, a.VarList...)
		}
	}
	return out
}

// String renders the constraint for diagnostics and verbose logging.
func (c *Constraint) String() string {
	status := ""
	if !c.Active {
		status = " [inactive]"
	}
	return fmt.Sprintf("%s(%d args)%s", c.Tag, len(c.Args), status)
}

// SearchAnnotation is a node of the recursive search-annotation tree the
// upstream flattener emits alongside the Model (§3, supplemented). It is
// either a leaf (an int constant, a variable reference, or a bare
// identifier atom such as "input_order") or a function-call node carrying
// a name and child arguments, e.g. int_search(xs, input_order,
// indomain_min, complete).
type SearchAnnotation struct {
	// Atom is non-empty for a leaf identifier (e.g. "input_order").
	Atom string
	// IsInt and IntValue hold a leaf integer constant.
	IsInt    bool
	IntValue int64
	// IsVar and Var hold a leaf variable reference.
	IsVar bool
	Var   VarID

	// Call, when non-empty, names a function-call node; Children holds
	// its argument list (possibly itself containing ArgVarRefArray-like
	// var-list leaves represented as nested SearchAnnotation atoms).
	Call     string
	Children []*SearchAnnotation
}

// OutputSpec is one named output the downstream printer must eventually
// render (§3, supplemented); the presolver only needs to keep the
// variable reference(s) it carries consistent under substitution.
type OutputSpec struct {
	Name string
	Arg  Argument
	// ArrayDims records the declared array shape for an array-of-var
	// output; empty for a scalar output. Pretty-printing the dims is out
	// of scope here (owned by the downstream printer) but the dims
	// themselves must survive substitution untouched.
	ArrayDims []int
}

// Model is the mutable IR the presolver consumes and rewrites in place.
type Model struct {
	Variables         []*Variable
	Constraints       []*Constraint
	SearchAnnotations []*SearchAnnotation
	Outputs           []*OutputSpec
}

// NewModel returns an empty Model ready to have variables and constraints
// added via AddVariable / AddConstraint.
func NewModel() *Model {
	return &Model{}
}

// AddVariable appends v to the model and returns its VarID.
func (m *Model) AddVariable(v *Variable) VarID {
	m.Variables = append(m.Variables, v)
	return VarID(len(m.Variables) - 1)
}

// AddConstraint appends c to the model and returns its ConstraintID.
func (m *Model) AddConstraint(c *Constraint) ConstraintID {
	m.Constraints = append(m.Constraints, c)
	return ConstraintID(len(m.Constraints) - 1)
}

// Var returns the Variable for id.
func (m *Model) Var(id VarID) *Variable { return m.Variables[id] }

// Constraint returns the Constraint for id.
func (m *Model) Constraint(id ConstraintID) *Constraint { return m.Constraints[id] }

// NumVariables returns the number of variables the model holds, active or
// not.
func (m *Model) NumVariables() int { return len(m.Variables) }

// NumConstraints returns the number of constraints the model holds, active
// or not.
func (m *Model) NumConstraints() int { return len(m.Constraints) }
