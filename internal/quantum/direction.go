package quantum

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Direction is an apparatus orientation on the Bloch sphere. Angles are
// stored in radians; constructors take degrees since that is what crosses
// the API boundary. The eigenvectors are recomputed on every read so a
// mutated angle can never be observed through a stale cache.
type Direction struct {
	Theta float64 // polar angle, radians
	Phi   float64 // azimuthal angle, radians

	// ThetaScale and PhiScale map a real-world rotation angle onto the
	// Hilbert-space angle. Spin-1/2 uses 1; photon polarization uses 2
	// (a 90° polarizer rotation is a 180° Bloch rotation).
	ThetaScale float64
	PhiScale   float64
}

// NewDirection builds a spin-1/2 direction from angles in degrees.
func NewDirection(thetaDeg, phiDeg float64) Direction {
	return NewScaledDirection(thetaDeg, phiDeg, 1, 1)
}

// NewScaledDirection builds a direction from angles in degrees with explicit
// real-to-Bloch scale coefficients.
func NewScaledDirection(thetaDeg, phiDeg, thetaScale, phiScale float64) Direction {
	return Direction{
		Theta:      thetaDeg * math.Pi / 180,
		Phi:        phiDeg * math.Pi / 180,
		ThetaScale: thetaScale,
		PhiScale:   phiScale,
	}
}

func (d Direction) scales() (float64, float64) {
	st, sp := d.ThetaScale, d.PhiScale
	if st == 0 {
		st = 1
	}
	if sp == 0 {
		sp = 1
	}
	return st, sp
}

// Plus returns the +1 eigenvector of the spin operator along d:
// [cos(θ·s_t/2), e^{iφ·s_p}·sin(θ·s_t/2)].
func (d Direction) Plus() Vec {
	st, sp := d.scales()
	half := d.Theta * st / 2
	phase := cmplx.Exp(complex(0, d.Phi*sp))
	return Vec{complex(math.Cos(half), 0), phase * complex(math.Sin(half), 0)}
}

// Minus returns the −1 eigenvector: the same construction with θ shifted
// by π, orthogonal to Plus.
func (d Direction) Minus() Vec {
	st, sp := d.scales()
	half := math.Pi/2 + d.Theta*st/2
	phase := cmplx.Exp(complex(0, d.Phi*sp))
	return Vec{complex(math.Cos(half), 0), phase * complex(math.Sin(half), 0)}
}

// EigenPair returns the (+1, −1) orthonormal eigenvector pair along d.
func (d Direction) EigenPair() (Vec, Vec) {
	return d.Plus(), d.Minus()
}

// AxisDirection returns the measurement direction whose eigenbasis is the
// standard z, x or y basis.
func AxisDirection(axis Axis) (Direction, error) {
	switch axis {
	case AxisZ:
		return NewDirection(0, 0), nil
	case AxisX:
		return NewDirection(90, 0), nil
	case AxisY:
		return NewDirection(90, 90), nil
	default:
		return Direction{}, fmt.Errorf("%w: no measurement direction for axis %q", ErrConfiguration, axis)
	}
}

// BlochAngles recovers the Bloch-sphere angles (θ, φ) in radians of a
// single-qubit state. φ is 0 when the second amplitude vanishes.
func BlochAngles(v Vec) (float64, float64, error) {
	if len(v) != 2 {
		return 0, 0, fmt.Errorf("%w: vector dimension %d, want 2", ErrConfiguration, len(v))
	}
	theta := 2 * math.Atan2(cmplx.Abs(v[1]), cmplx.Abs(v[0]))
	// A negative real leading amplitude sits on the far side of the sphere.
	if real(v[0]) < 0 {
		theta = 2*math.Pi - theta
	}
	var phi float64
	if v[1] != 0 {
		phi = cmplx.Phase(v[1])
	}
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return theta, phi, nil
}

// Agreement returns cos²(α/2), the predicted probability that a measurement
// along a agrees with a spin prepared along b, where α is the angle between
// the two Bloch vectors.
func Agreement(aTheta, aPhi, bTheta, bPhi float64) float64 {
	dot := math.Sin(aTheta)*math.Sin(bTheta)*math.Cos(aPhi-bPhi) +
		math.Cos(aTheta)*math.Cos(bTheta)
	dot = math.Max(-1, math.Min(1, dot))
	alpha := math.Acos(dot)
	c := math.Cos(alpha / 2)
	return c * c
}
