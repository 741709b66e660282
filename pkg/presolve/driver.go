package presolve

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// PresolverOptions configures a Presolver, mirroring the reference
// implementation's SolverConfig/DefaultSolverConfig pattern (SPEC_FULL.md
// §2.1). There is deliberately no flag-parsing or CLI wiring here — that
// is an external collaborator's concern.
type PresolverOptions struct {
	// StrongPropagation opts in to rules that are valid but only worth
	// their cost when the upstream model explicitly asked for them; it
	// gates propagatePositiveLinear. The cleanup pass (§4.4) reads the
	// per-constraint Constraint.StrongPropagation instead.
	StrongPropagation bool
	// Verbose, when true, makes the driver log one Trace-level line per
	// rule application (§6: "verbose log lines... informational only").
	Verbose bool
	// Logger receives the verbose trace lines. A nil Logger is replaced
	// with hclog.NewNullLogger() so callers never have to supply one.
	Logger hclog.Logger
}

// DefaultPresolverOptions returns the zero-configuration defaults: no
// strong propagation, no verbose logging.
func DefaultPresolverOptions() PresolverOptions {
	return PresolverOptions{}
}

// Report summarizes a completed Run for a caller that wants more than a
// pass/fail result (SPEC_FULL.md §4.5). It is purely additive: nothing in
// the testable properties of §8 depends on it.
type Report struct {
	Sweeps                 int
	ConstraintsDeactivated int
	ConstraintsRewritten   int
	VariablesSubstituted   int
	SubstitutionFlushes    int
}

// Presolver runs the fixed-point rewriting engine against a single Model.
// A Presolver is not safe for concurrent use, and Run is not reentrant: a
// Presolver borrows its Model mutably for the duration of one Run call
// (§5).
type Presolver struct {
	options PresolverOptions
	logger  hclog.Logger

	model   *Model
	aux     *AuxMaps
	equiv   *equivalence
	running bool
	report  Report
}

// NewPresolver returns a Presolver configured by opts, ready to Run
// against any Model.
func NewPresolver(opts PresolverOptions) *Presolver {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Presolver{options: opts, logger: logger}
}

// trace emits a verbose rule-application line when the Presolver was
// constructed with Verbose set. Side channel only, per §6.
func (ps *Presolver) trace(format string, args ...interface{}) {
	if !ps.options.Verbose {
		return
	}
	ps.logger.Trace(fmt.Sprintf(format, args...))
}

// Run presolves model to a fixed point per §4.3 and returns the mutated
// model (the same pointer, for convenience), a Report, and an error if a
// contract violation (§7 "Invalid shape") was detected. Run is not
// reentrant on the same Presolver.
func (ps *Presolver) Run(model *Model) (*Model, Report, error) {
	if ps.running {
		return model, Report{}, ErrAlreadyRunning
	}
	ps.running = true
	defer func() { ps.running = false }()

	ps.model = model
	ps.aux = newAuxMaps()
	ps.equiv = newEquivalence()
	ps.report = Report{}

	ps.aux.buildVarToConstraints(model)

	ps.firstPassModelScan()
	ps.mergeIntEqNe()
	if ps.equiv.HasPending() {
		ps.flush()
	}

	// Prime pass: run Bool2Int on every active bool2int constraint before
	// the general fixed-point loop, then flush (§4.3).
	for cid, c := range model.Constraints {
		if c.Active && c.Tag == "bool2int" {
			ps.applyRule(ruleBool2Int, ConstraintID(cid))
		}
	}
	if ps.equiv.HasPending() {
		ps.flush()
	}

	if err := ps.mainLoop(); err != nil {
		return model, ps.report, err
	}

	if err := ps.cleanup(); err != nil {
		return model, ps.report, err
	}

	return model, ps.report, nil
}

// mainLoop is the fixed-point loop of §4.3: repeatedly sweep every active
// constraint through PresolveOneConstraint, flushing and restarting the
// sweep as soon as any rule records a substitution, until a full sweep
// makes no changes at all.
func (ps *Presolver) mainLoop() error {
	for {
		changed := false
		for cid, c := range ps.model.Constraints {
			if !c.Active {
				continue
			}
			if ps.presolveOneConstraint(ConstraintID(cid)) {
				changed = true
			}
			if ps.equiv.HasPending() {
				break
			}
		}
		if ps.equiv.HasPending() {
			ps.flush()
			changed = true
		}
		if !changed {
			return nil
		}
		ps.report.Sweeps++
	}
}

// flush materializes every pending substitution across the model and
// clears the auxiliary maps that are only valid against the pre-flush
// variable identities (§4.1, §4.3).
func (ps *Presolver) flush() {
	ps.report.VariablesSubstituted += len(ps.equiv.Pending())
	ps.equiv.SubstituteEverywhere(ps.model, ps.aux)
	ps.aux.clear()
	ps.report.SubstitutionFlushes++
}

// applyRule invokes fn against cid, bookkeeping the report counters and
// verbose trace line that every dispatch path shares.
func (ps *Presolver) applyRule(fn ruleFunc, cid ConstraintID) bool {
	c := ps.model.Constraint(cid)
	wasActive := c.Active
	tagBefore := c.Tag
	changed := fn(ps, cid)
	if changed {
		ps.trace("rule applied: constraint=%d tag=%s->%s active=%v->%v",
			cid, tagBefore, c.Tag, wasActive, c.Active)
		if tagBefore != c.Tag {
			ps.report.ConstraintsRewritten++
		}
		if wasActive && !c.Active {
			ps.report.ConstraintsDeactivated++
		}
	}
	return changed
}

// invalidShape reports a contract violation for cid and aborts the Run by
// returning an error wrapping ErrInvalidShape, accumulating with
// multierror.Append so that more than one violation found during a single
// pass is reported together (§7).
func (ps *Presolver) invalidShape(existing error, cid ConstraintID, reason string) error {
	c := ps.model.Constraint(cid)
	return multierror.Append(existing, fmt.Errorf("constraint %d (%s): %s: %w", cid, c.Tag, reason, ErrInvalidShape))
}
