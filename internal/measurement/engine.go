// Package measurement executes projective measurements with collapse on
// single- and two-qubit states.
package measurement

import (
	"fmt"
	"math/cmplx"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
)

// Order selects which subsystem of a pair is measured first.
type Order int

const (
	// OrderFirst measures subsystem A first.
	OrderFirst Order = iota
	// OrderSecond measures subsystem B first.
	OrderSecond
	// OrderRandom draws the order uniformly per trial. The outcome-pair
	// distribution is identical for all three settings.
	OrderRandom
)

// ParseOrder maps a wire name to an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "first", "":
		return OrderFirst, nil
	case "second":
		return OrderSecond, nil
	case "random":
		return OrderRandom, nil
	default:
		return 0, fmt.Errorf("%w: unknown measurement order %q", quantum.ErrConfiguration, s)
	}
}

// JointResult is the outcome pair of a two-qubit trial, mapped back to the
// (A, B) labelling regardless of which subsystem was measured first.
type JointResult struct {
	A int // ±1
	B int // ±1
}

// Engine samples measurement outcomes. It owns its RNG so runs are
// reproducible from an explicit seed; nothing in the engine reaches for
// process-wide randomness.
type Engine struct {
	rng *rand.Rand
	log zerolog.Logger
}

// New creates an engine seeded with the given value.
func New(seed uint64, log zerolog.Logger) *Engine {
	return &Engine{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log: log.With().Str("component", "measurement_engine").Logger(),
	}
}

// Uniform returns a uniform draw in [0,1) from the engine's RNG stream.
func (e *Engine) Uniform() float64 { return e.rng.Float64() }

// IntN returns a uniform draw in [0,n) from the engine's RNG stream.
func (e *Engine) IntN(n int) int { return e.rng.IntN(n) }

// clip guards a probability computed from Tr(Pρ) against floating-point
// overshoot near 0 and 1 before it is compared with a uniform draw.
func clip(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// MeasureSingle measures a single-qubit state along dir. The probability of
// +1 is |<d+|ψ>|². The returned collapsed state is the eigenvector matching
// the outcome; in discrete-trial mode the caller simply discards it, in
// continuous-preparation mode it becomes the state for the next tick.
func (e *Engine) MeasureSingle(st quantum.State, dir quantum.Direction) (int, quantum.State, error) {
	if st.Dim() != 2 {
		return 0, quantum.State{}, fmt.Errorf("%w: single measurement needs a 2-dimensional state, got %d",
			quantum.ErrConfiguration, st.Dim())
	}
	plus, minus := dir.EigenPair()
	amp := quantum.Dot(plus, st.Vector())
	p := clip(cmplx.Abs(amp) * cmplx.Abs(amp))

	if e.rng.Float64() < p {
		collapsed, err := quantum.NewState(plus)
		return +1, collapsed, err
	}
	collapsed, err := quantum.NewState(minus)
	return -1, collapsed, err
}

// MeasureJoint performs the sequential projective measurement of an
// entangled pair:
//
//  1. Pick the first-measured subsystem from order.
//  2. Compute its reduced density matrix by tracing out the partner.
//  3. Sample the first outcome from Tr(P+ ρ_first).
//  4. Collapse the joint state through the matching 4×4 projector and
//     renormalize.
//  5. Compute the partner's reduced density matrix from the collapsed state
//     and sample the second outcome.
//
// The result is mapped back to (A, B). The state passed in is never
// modified; the collapsed terminal state is internal to the trial.
func (e *Engine) MeasureJoint(st quantum.State, dirA, dirB quantum.Direction, order Order) (JointResult, error) {
	if st.Dim() != 4 {
		return JointResult{}, fmt.Errorf("%w: joint measurement needs a 4-dimensional state, got %d",
			quantum.ErrConfiguration, st.Dim())
	}

	firstIsA := true
	switch order {
	case OrderFirst:
	case OrderSecond:
		firstIsA = false
	case OrderRandom:
		firstIsA = e.rng.Float64() < 0.5
	default:
		return JointResult{}, fmt.Errorf("%w: unknown measurement order %d", quantum.ErrConfiguration, int(order))
	}

	psi := st.Vector()

	plusA, minusA := dirA.EigenPair()
	plusB, minusB := dirB.EigenPair()

	// 2×2 projectors per apparatus, then the 4×4 joint projectors for the
	// first-measured subsystem. The identity sits on the partner's factor.
	var projFirstPlus, projSecondPlus *mat.CDense
	var jointPlus, jointMinus *mat.CDense
	if firstIsA {
		projFirstPlus = quantum.Outer(plusA)
		projSecondPlus = quantum.Outer(plusB)
		jointPlus = quantum.Kron(quantum.Outer(plusA), quantum.Identity())
		jointMinus = quantum.Kron(quantum.Outer(minusA), quantum.Identity())
	} else {
		projFirstPlus = quantum.Outer(plusB)
		projSecondPlus = quantum.Outer(plusA)
		jointPlus = quantum.Kron(quantum.Identity(), quantum.Outer(plusB))
		jointMinus = quantum.Kron(quantum.Identity(), quantum.Outer(minusB))
	}

	rho := quantum.Outer(psi)
	var rhoFirst *mat.CDense
	var err error
	if firstIsA {
		rhoFirst, err = quantum.TraceOutSecond(rho)
	} else {
		rhoFirst, err = quantum.TraceOutFirst(rho)
	}
	if err != nil {
		return JointResult{}, err
	}

	pFirst := clip(cmplx.Abs(quantum.Trace(quantum.MulMat(projFirstPlus, rhoFirst))))
	spFirst := -1
	if e.rng.Float64() < pFirst {
		spFirst = +1
	}

	// Collapse the joint state onto the observed eigenspace.
	projector := jointMinus
	if spFirst == +1 {
		projector = jointPlus
	}
	collapsed, err := quantum.Normalize(quantum.MatVec(projector, psi))
	if err != nil {
		// Theoretically unreachable for a valid projector; the caller
		// re-draws the trial rather than propagating NaNs.
		e.log.Warn().Err(err).Msg("Degenerate collapse vector, trial must be re-drawn")
		return JointResult{}, err
	}

	rhoCollapsed := quantum.Outer(collapsed)
	var rhoSecond *mat.CDense
	if firstIsA {
		rhoSecond, err = quantum.TraceOutFirst(rhoCollapsed)
	} else {
		rhoSecond, err = quantum.TraceOutSecond(rhoCollapsed)
	}
	if err != nil {
		return JointResult{}, err
	}

	pSecond := clip(cmplx.Abs(quantum.Trace(quantum.MulMat(projSecondPlus, rhoSecond))))
	spSecond := -1
	if e.rng.Float64() < pSecond {
		spSecond = +1
	}

	if firstIsA {
		return JointResult{A: spFirst, B: spSecond}, nil
	}
	return JointResult{A: spSecond, B: spFirst}, nil
}
