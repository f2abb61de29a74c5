// Package quantum implements the numerical core of the spin simulation:
// complex vector algebra, Pauli operators, Bloch-sphere apparatus directions
// and canonical state preparation for one- and two-qubit systems.
package quantum

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// UnitNormTol is the tolerance used when checking the unit-norm invariant
// at observable boundaries (after preparation and after collapse).
const UnitNormTol = 1e-9

// Vec is a complex column vector. Qubit states have length 2, two-qubit
// states length 4 indexed by the basis {uu, ud, du, dd}.
type Vec []complex128

// Clone returns an independent copy of v.
func (v Vec) Clone() Vec {
	out := make(Vec, len(v))
	copy(out, v)
	return out
}

// Norm returns the Euclidean norm of v.
func Norm(v Vec) float64 {
	var sum float64
	for _, c := range v {
		sum += real(c)*real(c) + imag(c)*imag(c)
	}
	return math.Sqrt(sum)
}

// IsUnit reports whether v has unit norm within tol.
func IsUnit(v Vec, tol float64) bool {
	return math.Abs(Norm(v)-1) <= tol
}

// CheckDim validates that v is a single- or two-qubit vector.
func CheckDim(v Vec) error {
	if len(v) != 2 && len(v) != 4 {
		return fmt.Errorf("%w: vector dimension %d, want 2 or 4", ErrConfiguration, len(v))
	}
	return nil
}

// CheckUnit validates the unit-norm invariant of v.
func CheckUnit(v Vec) error {
	if err := CheckDim(v); err != nil {
		return err
	}
	if !IsUnit(v, UnitNormTol) {
		return fmt.Errorf("%w: vector norm %.12f, want 1", ErrValidation, Norm(v))
	}
	return nil
}

// Dot returns the Hermitian inner product <a|b>.
func Dot(a, b Vec) complex128 {
	var sum complex128
	for i := range a {
		sum += cmplx.Conj(a[i]) * b[i]
	}
	return sum
}

// Scale returns s*v as a new vector.
func Scale(s complex128, v Vec) Vec {
	out := make(Vec, len(v))
	for i, c := range v {
		out[i] = s * c
	}
	return out
}

// Add returns a+b as a new vector.
func Add(a, b Vec) Vec {
	out := make(Vec, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Sub returns a-b as a new vector.
func Sub(a, b Vec) Vec {
	out := make(Vec, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Normalize returns v scaled to unit norm. A near-zero input cannot be
// normalized and yields ErrDegenerate.
func Normalize(v Vec) (Vec, error) {
	n := Norm(v)
	if n < 1e-12 {
		return nil, fmt.Errorf("%w: norm %.3e", ErrDegenerate, n)
	}
	return Scale(complex(1/n, 0), v), nil
}

// Outer builds the projector |v><v| as a dense complex matrix.
func Outer(v Vec) *mat.CDense {
	n := len(v)
	m := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, v[i]*cmplx.Conj(v[j]))
		}
	}
	return m
}

// Kron returns the Kronecker product A⊗B.
func Kron(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	m := mat.NewCDense(ar*br, ac*bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			s := a.At(i, j)
			for k := 0; k < br; k++ {
				for l := 0; l < bc; l++ {
					m.Set(i*br+k, j*bc+l, s*b.At(k, l))
				}
			}
		}
	}
	return m
}

// KronVec returns the tensor product a⊗b of two state vectors.
func KronVec(a, b Vec) Vec {
	out := make(Vec, len(a)*len(b))
	for i, x := range a {
		for j, y := range b {
			out[i*len(b)+j] = x * y
		}
	}
	return out
}

// MatVec applies M to v.
func MatVec(m *mat.CDense, v Vec) Vec {
	r, c := m.Dims()
	out := make(Vec, r)
	for i := 0; i < r; i++ {
		var sum complex128
		for j := 0; j < c; j++ {
			sum += m.At(i, j) * v[j]
		}
		out[i] = sum
	}
	return out
}

// Trace returns the trace of a square matrix.
func Trace(m *mat.CDense) complex128 {
	r, _ := m.Dims()
	var sum complex128
	for i := 0; i < r; i++ {
		sum += m.At(i, i)
	}
	return sum
}

// MulMat returns the matrix product A·B.
func MulMat(a, b *mat.CDense) *mat.CDense {
	ar, _ := a.Dims()
	_, bc := b.Dims()
	out := mat.NewCDense(ar, bc, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, a.RawCMatrix(), b.RawCMatrix(), 0, out.RawCMatrix())
	return out
}

// TraceOutSecond traces the second tensor factor out of a 4×4 density
// matrix, yielding the 2×2 reduced density matrix of the first subsystem.
func TraceOutSecond(rho *mat.CDense) (*mat.CDense, error) {
	if err := checkRho4(rho); err != nil {
		return nil, err
	}
	out := mat.NewCDense(2, 2, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			var sum complex128
			for k := 0; k < 2; k++ {
				sum += rho.At(i*2+k, j*2+k)
			}
			out.Set(i, j, sum)
		}
	}
	return out, nil
}

// TraceOutFirst traces the first tensor factor out of a 4×4 density matrix,
// yielding the 2×2 reduced density matrix of the second subsystem.
func TraceOutFirst(rho *mat.CDense) (*mat.CDense, error) {
	if err := checkRho4(rho); err != nil {
		return nil, err
	}
	out := mat.NewCDense(2, 2, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			var sum complex128
			for k := 0; k < 2; k++ {
				sum += rho.At(k*2+i, k*2+j)
			}
			out.Set(i, j, sum)
		}
	}
	return out, nil
}

func checkRho4(rho *mat.CDense) error {
	r, c := rho.Dims()
	if r != 4 || c != 4 {
		return fmt.Errorf("%w: density matrix is %dx%d, want 4x4", ErrConfiguration, r, c)
	}
	return nil
}
