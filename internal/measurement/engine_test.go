package measurement

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
)

func testEngine(seed uint64) *Engine {
	return New(seed, zerolog.Nop())
}

func TestMeasureSingle_DeterministicAxes(t *testing.T) {
	e := testEngine(1)
	up, err := quantum.NewState(quantum.Up())
	require.NoError(t, err)

	zDir, err := quantum.AxisDirection(quantum.AxisZ)
	require.NoError(t, err)

	// |u> measured along z is always +1 and collapses onto |u>.
	for i := 0; i < 100; i++ {
		outcome, collapsed, err := e.MeasureSingle(up, zDir)
		require.NoError(t, err)
		assert.Equal(t, +1, outcome)
		assert.InDelta(t, 1.0, real(collapsed.Amplitude(0)), 1e-12)
	}

	// |u> rotated 180° away is always −1.
	flipped := quantum.NewDirection(180, 0)
	for i := 0; i < 100; i++ {
		outcome, _, err := e.MeasureSingle(up, flipped)
		require.NoError(t, err)
		assert.Equal(t, -1, outcome)
	}
}

func TestMeasureSingle_BornRule(t *testing.T) {
	e := testEngine(2)
	up, err := quantum.NewState(quantum.Up())
	require.NoError(t, err)

	// At 60° the +1 probability is cos²(30°) = 0.75.
	dir := quantum.NewDirection(60, 0)
	const n = 20000
	plus := 0
	for i := 0; i < n; i++ {
		outcome, _, err := e.MeasureSingle(up, dir)
		require.NoError(t, err)
		if outcome == +1 {
			plus++
		}
	}
	assert.InDelta(t, 0.75, float64(plus)/n, 0.01)
}

func TestMeasureSingle_RejectsTwoQubitState(t *testing.T) {
	e := testEngine(3)
	zDir, _ := quantum.AxisDirection(quantum.AxisZ)
	_, _, err := e.MeasureSingle(quantum.Singlet(), zDir)
	assert.ErrorIs(t, err, quantum.ErrConfiguration)
}

func TestMeasureJoint_SingletEqualAnglesAntiCorrelated(t *testing.T) {
	e := testEngine(4)
	st := quantum.Singlet()
	dir := quantum.NewDirection(37, 12)

	const n = 10000
	opposite := 0
	for i := 0; i < n; i++ {
		res, err := e.MeasureJoint(st, dir, dir, OrderRandom)
		require.NoError(t, err)
		if res.A == -res.B {
			opposite++
		}
	}
	// Equal apparatus angles on the singlet are perfectly anti-correlated;
	// inverting B upstream presents this as perfect agreement.
	assert.GreaterOrEqual(t, float64(opposite)/n, 0.99)
}

func TestMeasureJoint_PartialStateMarginal(t *testing.T) {
	e := testEngine(5)
	st := quantum.PartiallyEntangled()
	zDir, err := quantum.AxisDirection(quantum.AxisZ)
	require.NoError(t, err)

	const n = 10000
	plusA := 0
	for i := 0; i < n; i++ {
		res, err := e.MeasureJoint(st, zDir, zDir, OrderFirst)
		require.NoError(t, err)
		if res.A == +1 {
			plusA++
		}
	}
	// √0.6 |ud> − √0.4 |du>: subsystem A is up with probability 0.6.
	assert.InDelta(t, 0.6, float64(plusA)/n, 0.02)
}

func TestMeasureJoint_MarginalsUnaffectedByPartnerSetting(t *testing.T) {
	// No-signalling check: B's switch setting cannot move A's marginal.
	st := quantum.Singlet()
	dirA := quantum.NewDirection(0, 0)

	marginal := func(seed uint64, dirB quantum.Direction) float64 {
		e := testEngine(seed)
		const n = 20000
		plus := 0
		for i := 0; i < n; i++ {
			res, err := e.MeasureJoint(st, dirA, dirB, OrderRandom)
			require.NoError(t, err)
			if res.A == +1 {
				plus++
			}
		}
		return float64(plus) / n
	}

	p0 := marginal(6, quantum.NewDirection(0, 0))
	p1 := marginal(7, quantum.NewDirection(120, 0))
	assert.InDelta(t, 0.5, p0, 0.015)
	assert.InDelta(t, 0.5, p1, 0.015)
}

// pairIndex maps an outcome pair to a cell in {++, +−, −+, −−}.
func pairIndex(r JointResult) int {
	idx := 0
	if r.A == -1 {
		idx += 2
	}
	if r.B == -1 {
		idx++
	}
	return idx
}

func TestMeasureJoint_OrderInvariance(t *testing.T) {
	// Measuring A first or B first must yield the same outcome-pair
	// distribution. Compared with a chi-square homogeneity test over the
	// four outcome cells; dof = 3.
	st := quantum.Singlet()
	dirA := quantum.NewDirection(0, 0)
	dirB := quantum.NewDirection(45, 0)

	run := func(seed uint64, order Order) [4]int {
		e := testEngine(seed)
		var counts [4]int
		for i := 0; i < 50000; i++ {
			res, err := e.MeasureJoint(st, dirA, dirB, order)
			require.NoError(t, err)
			counts[pairIndex(res)]++
		}
		return counts
	}

	first := run(100, OrderFirst)
	second := run(200, OrderSecond)

	var chi2 float64
	n1, n2 := 50000.0, 50000.0
	for i := 0; i < 4; i++ {
		pooled := float64(first[i]+second[i]) / (n1 + n2)
		e1 := pooled * n1
		e2 := pooled * n2
		d1 := float64(first[i]) - e1
		d2 := float64(second[i]) - e2
		chi2 += d1*d1/e1 + d2*d2/e2
	}

	p := 1 - distuv.ChiSquared{K: 3}.CDF(chi2)
	assert.Greater(t, p, 0.01, "chi2=%v first=%v second=%v", chi2, first, second)
}

func TestMeasureJoint_Reproducible(t *testing.T) {
	st := quantum.Singlet()
	dirA := quantum.NewDirection(30, 0)
	dirB := quantum.NewDirection(75, 0)

	e1 := testEngine(42)
	e2 := testEngine(42)
	for i := 0; i < 200; i++ {
		r1, err := e1.MeasureJoint(st, dirA, dirB, OrderRandom)
		require.NoError(t, err)
		r2, err := e2.MeasureJoint(st, dirA, dirB, OrderRandom)
		require.NoError(t, err)
		assert.Equal(t, r1, r2, "trial %d", i)
	}
}

func TestMeasureJoint_RejectsSingleQubitState(t *testing.T) {
	e := testEngine(8)
	up, err := quantum.NewState(quantum.Up())
	require.NoError(t, err)
	zDir, _ := quantum.AxisDirection(quantum.AxisZ)
	_, err = e.MeasureJoint(up, zDir, zDir, OrderFirst)
	assert.ErrorIs(t, err, quantum.ErrConfiguration)
}

func TestParseOrder(t *testing.T) {
	for s, want := range map[string]Order{"": OrderFirst, "first": OrderFirst, "second": OrderSecond, "random": OrderRandom} {
		o, err := ParseOrder(s)
		require.NoError(t, err)
		assert.Equal(t, want, o)
	}
	_, err := ParseOrder("sideways")
	assert.ErrorIs(t, err, quantum.ErrConfiguration)
}
