package quantum

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Axis names a Pauli operator / measurement axis.
type Axis string

const (
	AxisZ Axis = "z"
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisI Axis = "I"
)

// Constructors return fresh matrices so callers can never mutate a shared
// operator.

// Identity returns the 2×2 identity.
func Identity() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{1, 0, 0, 1})
}

// PauliZ returns σ_z.
func PauliZ() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{1, 0, 0, -1})
}

// PauliX returns σ_x.
func PauliX() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{0, 1, 1, 0})
}

// PauliY returns σ_y.
func PauliY() *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{0, complex(0, -1), complex(0, 1), 0})
}

// Sigma returns the Pauli operator for the given axis.
func Sigma(axis Axis) (*mat.CDense, error) {
	switch axis {
	case AxisZ:
		return PauliZ(), nil
	case AxisX:
		return PauliX(), nil
	case AxisY:
		return PauliY(), nil
	case AxisI:
		return Identity(), nil
	default:
		return nil, fmt.Errorf("%w: unknown axis %q", ErrConfiguration, axis)
	}
}

// SigmaA returns σ_axis ⊗ I, acting on the first subsystem of a pair.
func SigmaA(axis Axis) (*mat.CDense, error) {
	s, err := Sigma(axis)
	if err != nil {
		return nil, err
	}
	return Kron(s, Identity()), nil
}

// SigmaB returns I ⊗ σ_axis, acting on the second subsystem of a pair.
func SigmaB(axis Axis) (*mat.CDense, error) {
	s, err := Sigma(axis)
	if err != nil {
		return nil, err
	}
	return Kron(Identity(), s), nil
}

// SigmaAB returns σ_axisA ⊗ σ_axisB on the composite system.
func SigmaAB(axisA, axisB Axis) (*mat.CDense, error) {
	sa, err := Sigma(axisA)
	if err != nil {
		return nil, err
	}
	sb, err := Sigma(axisB)
	if err != nil {
		return nil, err
	}
	return Kron(sa, sb), nil
}

// Expectation returns <ψ|M|ψ>. The imaginary part vanishes for Hermitian M
// and is discarded.
func Expectation(state Vec, op *mat.CDense) (float64, error) {
	r, c := op.Dims()
	if r != c || r != len(state) {
		return 0, fmt.Errorf("%w: operator is %dx%d for a state of dimension %d",
			ErrConfiguration, r, c, len(state))
	}
	return real(Dot(state, MatVec(op, state))), nil
}
