package presolve

import "errors"

// Sentinel errors surfaced by Presolver.Run. Individual rules never return
// an error themselves (a rule signals its effect through its bool return
// and the mutations it made in place); only the driver-level entry point
// and the cleanup pass raise these, wrapped with additional context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidShape means a constraint's argument vector does not match
	// the shape its tag requires (e.g. a set_in whose value-set argument is
	// a variable rather than a constant list). This is a contract
	// violation by the caller that built the Model, not a presolve
	// failure, and is fatal: Run aborts without attempting further rules.
	ErrInvalidShape = errors.New("presolve: constraint has invalid argument shape for its tag")

	// ErrEmptyDomain names the case where a rule's domain intersection
	// leaves a variable with no admissible values. No code path in this
	// package returns or records it: the core does not treat this as fatal
	// per §3, the field is left empty and the downstream solver is
	// expected to detect infeasibility.
	ErrEmptyDomain = errors.New("presolve: variable domain became empty")

	// ErrEvaluationOverflow names the case where saturating arithmetic
	// detects that a bounds computation would exceed the representable
	// range. No code path in this package returns or records it: the
	// originating rule yields without tightening; see §7.
	ErrEvaluationOverflow = errors.New("presolve: bounds computation overflowed")

	// ErrAlreadyRunning guards against reentrant or concurrent use of a
	// single Presolver for the same Model; see §5.
	ErrAlreadyRunning = errors.New("presolve: Run is not reentrant for a single Presolver")
)
