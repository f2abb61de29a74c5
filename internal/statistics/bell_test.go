package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
)

func TestJointProbability_PoolsBothOrderings(t *testing.T) {
	a := NewAggregator()
	// Direct ordering (0,1): one (+,−) match out of two trials.
	a.Record(Record{SwitchA: 0, SwitchB: 1, OutcomeA: +1, OutcomeB: -1})
	a.Record(Record{SwitchA: 0, SwitchB: 1, OutcomeA: +1, OutcomeB: +1})
	// Swapped ordering (1,0): outcome roles swap, so (−,+) counts as a
	// (+,−) match for the (0,1) pair.
	a.Record(Record{SwitchA: 1, SwitchB: 0, OutcomeA: -1, OutcomeB: +1})
	a.Record(Record{SwitchA: 1, SwitchB: 0, OutcomeA: +1, OutcomeB: -1})
	// Unrelated pair, ignored.
	a.Record(Record{SwitchA: 2, SwitchB: 2, OutcomeA: +1, OutcomeB: -1})

	p, n, err := a.JointProbability(0, 1, +1, -1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.InDelta(t, 0.5, p, 1e-12)
}

func TestJointProbability_SameSettingNotDoubleCounted(t *testing.T) {
	a := NewAggregator()
	a.Record(Record{SwitchA: 1, SwitchB: 1, OutcomeA: +1, OutcomeB: -1})
	a.Record(Record{SwitchA: 1, SwitchB: 1, OutcomeA: -1, OutcomeB: +1})

	p, n, err := a.JointProbability(1, 1, +1, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 0.5, p, 1e-12)
}

func TestJointProbability_NoTrials(t *testing.T) {
	a := NewAggregator()
	a.Record(Record{SwitchA: 0, SwitchB: 0})
	_, _, err := a.JointProbability(1, 2, +1, -1)
	assert.ErrorIs(t, err, quantum.ErrInsufficientData)
}

func TestBellCheck_AnalyticSides(t *testing.T) {
	a := NewAggregator()
	// One trial per switch pair so the empirical sides are defined.
	a.Record(Record{SwitchA: 0, SwitchB: 1, OutcomeA: +1, OutcomeB: -1})
	a.Record(Record{SwitchA: 1, SwitchB: 2, OutcomeA: +1, OutcomeB: +1})
	a.Record(Record{SwitchA: 0, SwitchB: 2, OutcomeA: +1, OutcomeB: -1})

	triple := BellTriple{L: 0, C: 1, R: 2}
	thetas := map[int]float64{0: 240, 1: 0, 2: 120}
	res, err := a.BellCheck(triple, thetas)
	require.NoError(t, err)

	// All pairwise gaps are 120° or 240°: sin²(60°) = sin²(120°) = 3/4,
	// so every analytic term is 0.375.
	assert.InDelta(t, 0.75, res.AnalyticLHS, 1e-12)
	assert.InDelta(t, 0.375, res.AnalyticRHS, 1e-12)

	assert.InDelta(t, 1.0, res.LHS, 1e-12)
	assert.InDelta(t, 1.0, res.RHS, 1e-12)
	assert.False(t, res.Violated)
	assert.Equal(t, 1, res.SamplesLC)
	assert.Equal(t, 1, res.SamplesCR)
	assert.Equal(t, 1, res.SamplesLR)
}

func TestBellCheck_AnalyticViolation(t *testing.T) {
	// The 0°/45°/90° triple violates the inequality analytically:
	// 2·½sin²(22.5°) < ½sin²(45°).
	a := NewAggregator()
	a.Record(Record{SwitchA: 0, SwitchB: 1, OutcomeA: +1, OutcomeB: +1})
	a.Record(Record{SwitchA: 1, SwitchB: 2, OutcomeA: +1, OutcomeB: +1})
	a.Record(Record{SwitchA: 0, SwitchB: 2, OutcomeA: +1, OutcomeB: -1})

	res, err := a.BellCheck(BellTriple{L: 0, C: 1, R: 2}, map[int]float64{0: 0, 1: 45, 2: 90})
	require.NoError(t, err)

	s225 := math.Sin(22.5 * math.Pi / 180)
	s45 := math.Sin(45 * math.Pi / 180)
	assert.InDelta(t, s225*s225, res.AnalyticLHS, 1e-12)
	assert.InDelta(t, 0.5*s45*s45, res.AnalyticRHS, 1e-12)
	assert.Less(t, res.AnalyticLHS, res.AnalyticRHS)

	// The empirical sides above were arranged to violate too.
	assert.True(t, res.Violated)
}

func TestBellCheck_MissingAngle(t *testing.T) {
	a := NewAggregator()
	a.Record(Record{SwitchA: 0, SwitchB: 1, OutcomeA: +1, OutcomeB: -1})
	a.Record(Record{SwitchA: 1, SwitchB: 2, OutcomeA: +1, OutcomeB: -1})
	a.Record(Record{SwitchA: 0, SwitchB: 2, OutcomeA: +1, OutcomeB: -1})

	_, err := a.BellCheck(BellTriple{L: 0, C: 1, R: 2}, map[int]float64{0: 240, 1: 0})
	assert.ErrorIs(t, err, quantum.ErrConfiguration)
}

func TestBellCheck_PropagatesInsufficientData(t *testing.T) {
	a := NewAggregator()
	_, err := a.BellCheck(BellTriple{L: 0, C: 1, R: 2}, map[int]float64{0: 240, 1: 0, 2: 120})
	assert.ErrorIs(t, err, quantum.ErrInsufficientData)
}
