package quantum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEigenPair_Orthonormal(t *testing.T) {
	angles := []struct{ theta, phi float64 }{
		{0, 0}, {90, 0}, {90, 90}, {45, 30}, {120, 240}, {333, 17},
	}
	for _, a := range angles {
		plus, minus := NewDirection(a.theta, a.phi).EigenPair()
		assert.InDelta(t, 1.0, Norm(plus), 1e-12, "theta=%v phi=%v", a.theta, a.phi)
		assert.InDelta(t, 1.0, Norm(minus), 1e-12, "theta=%v phi=%v", a.theta, a.phi)
		assert.InDelta(t, 0.0, cmplx.Abs(Dot(plus, minus)), 1e-12, "theta=%v phi=%v", a.theta, a.phi)
	}
}

func TestEigenPair_ComputationalAxes(t *testing.T) {
	zDir, err := AxisDirection(AxisZ)
	require.NoError(t, err)
	plus, minus := zDir.EigenPair()
	assertVecInDelta(t, Up(), plus)
	assertVecInDelta(t, Down(), minus)

	xDir, err := AxisDirection(AxisX)
	require.NoError(t, err)
	plus, _ = xDir.EigenPair()
	assertVecInDelta(t, Right(), plus)

	yDir, err := AxisDirection(AxisY)
	require.NoError(t, err)
	plus, _ = yDir.EigenPair()
	assertVecInDelta(t, In(), plus)
}

func TestEigenPair_RecomputedOnRead(t *testing.T) {
	d := NewDirection(0, 0)
	plus, _ := d.EigenPair()
	assertVecInDelta(t, Up(), plus)

	// Mutating the angle must be visible on the next read.
	d.Theta = math.Pi
	plus, _ = d.EigenPair()
	assert.InDelta(t, 0.0, cmplx.Abs(plus[0]), 1e-12)
	assert.InDelta(t, 1.0, cmplx.Abs(plus[1]), 1e-12)
}

func TestEigenPair_PhotonScale(t *testing.T) {
	// With the factor-2 polarization mapping, a 45° real rotation is a 90°
	// Bloch rotation: the +1 eigenvector becomes |r>.
	d := NewScaledDirection(45, 0, 2, 1)
	plus, _ := d.EigenPair()
	assertVecInDelta(t, Right(), plus)
}

func TestBlochAngles_RoundTrip(t *testing.T) {
	for _, a := range []struct{ theta, phi float64 }{{30, 60}, {90, 0}, {90, 90}, {150, 200}} {
		plus := NewDirection(a.theta, a.phi).Plus()
		theta, phi, err := BlochAngles(plus)
		require.NoError(t, err)
		assert.InDelta(t, a.theta, theta*180/math.Pi, 1e-9)
		assert.InDelta(t, a.phi, phi*180/math.Pi, 1e-9)
	}
}

func TestBlochAngles_RejectsTwoQubitVector(t *testing.T) {
	_, _, err := BlochAngles(Singlet().Vector())
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestAgreement(t *testing.T) {
	// Aligned directions always agree, opposite never do.
	assert.InDelta(t, 1.0, Agreement(0, 0, 0, 0), 1e-12)
	assert.InDelta(t, 0.0, Agreement(0, 0, math.Pi, 0), 1e-12)
	// Perpendicular axes agree half the time.
	assert.InDelta(t, 0.5, Agreement(0, 0, math.Pi/2, 0), 1e-12)
}

func assertVecInDelta(t *testing.T, want, got Vec) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.InDelta(t, real(want[i]), real(got[i]), 1e-12)
		assert.InDelta(t, imag(want[i]), imag(got[i]), 1e-12)
	}
}
