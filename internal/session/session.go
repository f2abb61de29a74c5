// Package session owns the lifecycle of one simulation run: the prepared
// state, the apparatus directions with their switch settings, the
// measurement engine and the accumulated statistics.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/azimonti/quantum-entanglement-simulation/internal/events"
	"github.com/azimonti/quantum-entanglement-simulation/internal/measurement"
	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
	"github.com/azimonti/quantum-entanglement-simulation/internal/statistics"
)

// SwitchCount is the number of precomputed directions per apparatus.
const SwitchCount = 3

// maxDegenerateRetries bounds re-draws of a trial whose collapse vector came
// out numerically degenerate.
const maxDegenerateRetries = 3

// Policy selects how switch settings are chosen per trial.
type Policy int

const (
	// PolicyFixed keeps the configured switch settings for every trial.
	PolicyFixed Policy = iota
	// PolicyRandom draws both switches uniformly per trial.
	PolicyRandom
)

// ParsePolicy maps a wire name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fixed", "":
		return PolicyFixed, nil
	case "random":
		return PolicyRandom, nil
	default:
		return 0, fmt.Errorf("%w: unknown switch policy %q", quantum.ErrConfiguration, s)
	}
}

// Config describes a session at creation time. It is passed by value into
// the session; there is no process-wide shared configuration.
type Config struct {
	Kind   quantum.Kind
	Params quantum.PrepareParams

	// Base apparatus orientations, degrees.
	ThetaA, PhiA float64
	ThetaB, PhiB float64

	// Real-to-Bloch scale coefficients, defaulting to 1 (spin-1/2).
	ThetaScale, PhiScale float64

	// SwitchOffsets are the per-switch angle offsets in degrees added to
	// the base θ of each apparatus. The zero value yields the classic
	// L/C/R layout of 240°, 0°, 120°.
	SwitchOffsets [SwitchCount]float64

	// SwitchA and SwitchB are the fixed-policy settings.
	SwitchA, SwitchB int

	// Invert flips apparatus B outcomes in the recorded results, so the
	// singlet's anti-correlation reads as agreement. A display transform;
	// the physical trial is untouched.
	Invert bool

	// PersistCollapse keeps the collapsed state as the current state in
	// single-qubit mode until the next re-preparation tick.
	PersistCollapse bool

	// TrackAxes additionally samples the σz/σx/σy pairs on every joint
	// trial, feeding the per-axis expectation and correlation statistics.
	TrackAxes bool

	// Seed for the engine and switch RNG streams. 0 derives one from the
	// wall clock.
	Seed uint64
}

func (c *Config) applyDefaults() {
	if c.SwitchOffsets == ([SwitchCount]float64{}) {
		c.SwitchOffsets = [SwitchCount]float64{240, 0, 120}
	}
	if c.ThetaScale == 0 {
		c.ThetaScale = 1
	}
	if c.PhiScale == 0 {
		c.PhiScale = 1
	}
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
}

// axisSeries holds the per-axis ±1 sample series of both subsystems.
type axisSeries struct {
	A map[quantum.Axis][]float64
	B map[quantum.Axis][]float64
}

func newAxisSeries() *axisSeries {
	return &axisSeries{
		A: map[quantum.Axis][]float64{},
		B: map[quantum.Axis][]float64{},
	}
}

// Session is one running experiment. All methods are safe for concurrent
// use; a single mutex serializes the otherwise synchronous core.
type Session struct {
	id       string
	cfg      Config
	prepared quantum.State
	current  quantum.State
	engine   *measurement.Engine
	agg      *statistics.Aggregator
	axes     *axisSeries
	ticks    int64

	mu  sync.Mutex
	log zerolog.Logger
	bus *events.Bus
}

// New prepares the configured state and wires a session around it.
func New(cfg Config, log zerolog.Logger, bus *events.Bus) (*Session, error) {
	cfg.applyDefaults()

	if cfg.SwitchA < 0 || cfg.SwitchA >= SwitchCount || cfg.SwitchB < 0 || cfg.SwitchB >= SwitchCount {
		return nil, fmt.Errorf("%w: switch settings (%d,%d) out of range 0..%d",
			quantum.ErrConfiguration, cfg.SwitchA, cfg.SwitchB, SwitchCount-1)
	}

	st, err := quantum.Prepare(cfg.Kind, cfg.Params)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	s := &Session{
		id:       id,
		cfg:      cfg,
		prepared: st,
		current:  st,
		engine:   measurement.New(cfg.Seed, log),
		agg:      statistics.NewAggregator(),
		axes:     newAxisSeries(),
		log:      log.With().Str("component", "session").Str("session_id", id).Logger(),
		bus:      bus,
	}
	s.log.Info().Str("kind", cfg.Kind.String()).Bool("single", cfg.Kind.Single()).Msg("Session prepared")
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Kind returns the prepared state kind.
func (s *Session) Kind() quantum.Kind { return s.cfg.Kind }

// Single reports whether this is a single-qubit session.
func (s *Session) Single() bool { return s.cfg.Kind.Single() }

// PersistCollapse reports whether collapse outcomes persist across ticks.
func (s *Session) PersistCollapse() bool { return s.cfg.PersistCollapse }

// direction computes the apparatus direction for a switch setting as a pure
// function of the current base angles.
func (s *Session) direction(subsystemA bool, sw int) quantum.Direction {
	theta, phi := s.cfg.ThetaB, s.cfg.PhiB
	if subsystemA {
		theta, phi = s.cfg.ThetaA, s.cfg.PhiA
	}
	return quantum.NewScaledDirection(theta+s.cfg.SwitchOffsets[sw], phi, s.cfg.ThetaScale, s.cfg.PhiScale)
}

// baseDirection is the apparatus direction at its unshifted orientation.
func (s *Session) baseDirection(subsystemA bool) quantum.Direction {
	theta, phi := s.cfg.ThetaB, s.cfg.PhiB
	if subsystemA {
		theta, phi = s.cfg.ThetaA, s.cfg.PhiA
	}
	return quantum.NewScaledDirection(theta, phi, s.cfg.ThetaScale, s.cfg.PhiScale)
}

// SetDirection updates the base orientation of one apparatus. Angles are in
// degrees. Derived eigenvectors are always recomputed on read, so the change
// takes effect immediately.
func (s *Session) SetDirection(subsystem string, thetaDeg, phiDeg float64) error {
	s.mu.Lock()
	switch subsystem {
	case "A", "a":
		s.cfg.ThetaA, s.cfg.PhiA = thetaDeg, phiDeg
	case "B", "b":
		s.cfg.ThetaB, s.cfg.PhiB = thetaDeg, phiDeg
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown subsystem %q", quantum.ErrConfiguration, subsystem)
	}
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(&events.DirectionChangedData{
			SessionID: s.id,
			Subsystem: subsystem,
			ThetaDeg:  thetaDeg,
			PhiDeg:    phiDeg,
		})
	}
	return nil
}

// SetScales updates the real-to-Bloch scale coefficients. Zero values keep
// the current coefficient.
func (s *Session) SetScales(thetaScale, phiScale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if thetaScale != 0 {
		s.cfg.ThetaScale = thetaScale
	}
	if phiScale != 0 {
		s.cfg.PhiScale = phiScale
	}
}

// SetInvert toggles the apparatus B display inversion for future trials.
func (s *Session) SetInvert(invert bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Invert = invert
}

// MeasureSingle measures the current single-qubit state along the apparatus
// A orientation. With PersistCollapse the collapsed eigenvector becomes the
// current state for the next measurement; otherwise the current state is
// left as prepared.
func (s *Session) MeasureSingle() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Single() {
		return 0, fmt.Errorf("%w: single measurement on a two-qubit session", quantum.ErrConfiguration)
	}

	outcome, collapsed, err := s.engine.MeasureSingle(s.current, s.baseDirection(true))
	if err != nil {
		return 0, err
	}
	if s.cfg.PersistCollapse {
		s.current = collapsed
	}
	// Single-mode trials carry only the one measured outcome; the B-side
	// fields of the record stay zero and never surface in the snapshot.
	s.agg.Record(statistics.Record{OutcomeA: outcome})
	return outcome, nil
}

// MeasureJoint runs one two-qubit trial at the given switch settings and
// commits its record. Degenerate trials are re-drawn.
func (s *Session) MeasureJoint(switchA, switchB int, order measurement.Order) (statistics.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.measureJointLocked(switchA, switchB, order)
}

func (s *Session) measureJointLocked(switchA, switchB int, order measurement.Order) (statistics.Record, error) {
	if s.Single() {
		return statistics.Record{}, fmt.Errorf("%w: joint measurement on a single-qubit session", quantum.ErrConfiguration)
	}
	if switchA < 0 || switchA >= SwitchCount || switchB < 0 || switchB >= SwitchCount {
		return statistics.Record{}, fmt.Errorf("%w: switch settings (%d,%d) out of range 0..%d",
			quantum.ErrConfiguration, switchA, switchB, SwitchCount-1)
	}

	if s.cfg.TrackAxes {
		if err := s.sampleAxes(); err != nil {
			return statistics.Record{}, err
		}
	}

	dirA := s.direction(true, switchA)
	dirB := s.direction(false, switchB)

	var res measurement.JointResult
	var err error
	for attempt := 0; ; attempt++ {
		// Each trial starts from the originally prepared state, not a
		// continuously evolving trajectory.
		res, err = s.engine.MeasureJoint(s.prepared, dirA, dirB, order)
		if err == nil {
			break
		}
		if attempt >= maxDegenerateRetries {
			return statistics.Record{}, err
		}
		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("Re-drawing degenerate trial")
	}

	rec := statistics.Record{
		SwitchA:  switchA,
		SwitchB:  switchB,
		OutcomeA: res.A,
		OutcomeB: res.B,
	}
	if s.cfg.Invert {
		rec.OutcomeB = -rec.OutcomeB
	}
	s.agg.Record(rec)
	return rec, nil
}

// sampleAxes measures the σz/σx/σy pairs on a fresh copy of the prepared
// state and appends the ±1 samples to the per-axis series.
func (s *Session) sampleAxes() error {
	for _, axis := range []quantum.Axis{quantum.AxisZ, quantum.AxisX, quantum.AxisY} {
		dir, err := quantum.AxisDirection(axis)
		if err != nil {
			return err
		}
		res, err := s.engine.MeasureJoint(s.prepared, dir, dir, measurement.OrderFirst)
		if err != nil {
			return err
		}
		s.axes.A[axis] = append(s.axes.A[axis], float64(res.A))
		s.axes.B[axis] = append(s.axes.B[axis], float64(res.B))
	}
	return nil
}

// RunTrials executes n independent joint trials. With PolicyRandom both
// switch settings are re-drawn uniformly per trial; the measurement order is
// applied per trial as given. Returns the number of committed records.
func (s *Session) RunTrials(n int, policy Policy, order measurement.Order) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: trial count %d", quantum.ErrConfiguration, n)
	}

	s.mu.Lock()
	committed := 0
	var err error
	for i := 0; i < n; i++ {
		swA, swB := s.cfg.SwitchA, s.cfg.SwitchB
		if policy == PolicyRandom {
			swA = s.engine.IntN(SwitchCount)
			swB = s.engine.IntN(SwitchCount)
		}
		if _, err = s.measureJointLocked(swA, swB, order); err != nil {
			break
		}
		committed++
	}
	total := s.agg.Len()
	s.mu.Unlock()

	if committed > 0 && s.bus != nil {
		s.bus.Publish(&events.TrialsRecordedData{
			SessionID: s.id,
			Count:     committed,
			Total:     total,
		})
	}
	return committed, err
}

// Reprepare resets the current state to the originally prepared state. The
// periodic tick uses it to republish the immutable preparation in
// continuous mode.
func (s *Session) Reprepare() {
	s.mu.Lock()
	s.current = s.prepared
	s.ticks++
	tick := s.ticks
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(&events.StateRepreparedData{
			SessionID: s.id,
			Kind:      s.cfg.Kind.String(),
			Tick:      tick,
		})
	}
}

// TrialCount returns the number of committed trials.
func (s *Session) TrialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Len()
}

// CurrentState returns the state the next measurement will consume.
func (s *Session) CurrentState() quantum.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Bell evaluates the three-setting inequality over the recorded trials.
// The analytic sides derive each pairwise angle gap from the switch offsets
// alone, which is only meaningful while both apparatuses share the same
// base orientation; mismatched bases are rejected rather than compared
// against the wrong gaps.
func (s *Session) Bell(triple statistics.BellTriple) (statistics.BellResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.ThetaA != s.cfg.ThetaB || s.cfg.PhiA != s.cfg.PhiB {
		return statistics.BellResult{}, fmt.Errorf(
			"%w: bell estimate needs equal base orientations, apparatus A at (%g,%g) and B at (%g,%g)",
			quantum.ErrConfiguration, s.cfg.ThetaA, s.cfg.PhiA, s.cfg.ThetaB, s.cfg.PhiB)
	}

	thetas := make(map[int]float64, SwitchCount)
	for i := 0; i < SwitchCount; i++ {
		thetas[i] = s.cfg.ThetaA + s.cfg.SwitchOffsets[i]
	}
	return s.agg.BellCheck(triple, thetas)
}
