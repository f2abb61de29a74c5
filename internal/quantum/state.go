package quantum

import (
	"fmt"
	"math"
)

// Kind selects a canonical preparation. Each variant maps to exactly one
// constructor; Prepare rejects anything else.
type Kind int

const (
	// Two-qubit preparations.
	KindProduct Kind = iota + 1
	KindSinglet
	KindTripletI
	KindTripletII
	KindTripletIII
	KindPartial

	// Single-qubit preparations.
	KindUp
	KindDown
	KindLeft
	KindRight
	KindIn
	KindOut
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindProduct:
		return "product"
	case KindSinglet:
		return "singlet"
	case KindTripletI:
		return "tripletI"
	case KindTripletII:
		return "tripletII"
	case KindTripletIII:
		return "tripletIII"
	case KindPartial:
		return "partial"
	case KindUp:
		return "up"
	case KindDown:
		return "down"
	case KindLeft:
		return "left"
	case KindRight:
		return "right"
	case KindIn:
		return "in"
	case KindOut:
		return "out"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a wire name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k := KindProduct; k <= KindOut; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown state kind %q", ErrConfiguration, s)
}

// Single returns true for single-qubit kinds.
func (k Kind) Single() bool {
	return k >= KindUp
}

// State is an immutable unit-norm pure state. It is replaced wholesale by
// re-preparation or by the engine's collapse step, never mutated in place.
type State struct {
	vec Vec
}

// NewState validates v and wraps it. The input is copied.
func NewState(v Vec) (State, error) {
	if err := CheckUnit(v); err != nil {
		return State{}, err
	}
	return State{vec: v.Clone()}, nil
}

// Vector returns a copy of the underlying amplitudes.
func (s State) Vector() Vec { return s.vec.Clone() }

// Dim returns the Hilbert-space dimension.
func (s State) Dim() int { return len(s.vec) }

// Amplitude returns the i-th basis amplitude.
func (s State) Amplitude(i int) complex128 { return s.vec[i] }

// IsZero reports whether s is the zero value (never prepared).
func (s State) IsZero() bool { return s.vec == nil }

// Single-qubit basis kets in the {up, down} basis.

// Up returns |u>.
func Up() Vec { return Vec{1, 0} }

// Down returns |d>.
func Down() Vec { return Vec{0, 1} }

// Right returns (|u>+|d>)/√2.
func Right() Vec { return Vec{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)} }

// Left returns (|u>−|d>)/√2.
func Left() Vec { return Vec{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)} }

// In returns (|u>+i|d>)/√2.
func In() Vec { return Vec{complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2)} }

// Out returns (|u>−i|d>)/√2.
func Out() Vec { return Vec{complex(1/math.Sqrt2, 0), complex(0, -1/math.Sqrt2)} }

// BasisVector returns the two-qubit basis ket for a label in
// {uu, ud, du, dd}.
func BasisVector(label string) (Vec, error) {
	switch label {
	case "uu":
		return KronVec(Up(), Up()), nil
	case "ud":
		return KronVec(Up(), Down()), nil
	case "du":
		return KronVec(Down(), Up()), nil
	case "dd":
		return KronVec(Down(), Down()), nil
	default:
		return nil, fmt.Errorf("%w: unknown basis label %q", ErrConfiguration, label)
	}
}

// ProductState builds a⊗b from two unit single-qubit vectors.
func ProductState(a, b Vec) (State, error) {
	if len(a) != 2 || len(b) != 2 {
		return State{}, fmt.Errorf("%w: product factors must have dimension 2", ErrConfiguration)
	}
	if !IsUnit(a, UnitNormTol) || !IsUnit(b, UnitNormTol) {
		return State{}, fmt.Errorf("%w: product factors must have unit norm", ErrValidation)
	}
	return NewState(KronVec(a, b))
}

// Singlet returns 1/√2 (|ud> − |du>).
func Singlet() State {
	ud, _ := BasisVector("ud")
	du, _ := BasisVector("du")
	s, _ := NewState(Scale(complex(1/math.Sqrt2, 0), Sub(ud, du)))
	return s
}

// Triplet returns the i-th triplet state, i in 1..3:
// 1/√2 (|ud>+|du>), 1/√2 (|uu>+|dd>), 1/√2 (|uu>−|dd>).
func Triplet(i int) (State, error) {
	uu, _ := BasisVector("uu")
	ud, _ := BasisVector("ud")
	du, _ := BasisVector("du")
	dd, _ := BasisVector("dd")
	half := complex(1/math.Sqrt2, 0)
	switch i {
	case 1:
		return NewState(Scale(half, Add(ud, du)))
	case 2:
		return NewState(Scale(half, Add(uu, dd)))
	case 3:
		return NewState(Scale(half, Sub(uu, dd)))
	default:
		return State{}, fmt.Errorf("%w: triplet index %d, want 1..3", ErrConfiguration, i)
	}
}

// Superposition builds an arbitrary two-qubit state from amplitudes on
// {uu, ud, du, dd}. The amplitudes must already be normalized.
func Superposition(amps [4]complex128) (State, error) {
	return NewState(Vec(amps[:]))
}

// PartiallyEntangled returns √0.6 |ud> − √0.4 |du>, the partially
// entangled demonstration state.
func PartiallyEntangled() State {
	s, _ := Superposition([4]complex128{
		0,
		complex(math.Sqrt(0.6), 0),
		complex(-math.Sqrt(0.4), 0),
		0,
	})
	return s
}

// PrepareParams carries the inputs of the parameterized kinds. A and B feed
// KindProduct; Amps feeds KindPartial.
type PrepareParams struct {
	A    Vec
	B    Vec
	Amps [4]complex128
}

// Prepare builds the canonical state for a kind. Unknown kinds fail with
// ErrConfiguration; every returned state satisfies the unit-norm invariant.
func Prepare(kind Kind, p PrepareParams) (State, error) {
	switch kind {
	case KindProduct:
		return ProductState(p.A, p.B)
	case KindSinglet:
		return Singlet(), nil
	case KindTripletI:
		return Triplet(1)
	case KindTripletII:
		return Triplet(2)
	case KindTripletIII:
		return Triplet(3)
	case KindPartial:
		if p.Amps == ([4]complex128{}) {
			return PartiallyEntangled(), nil
		}
		return Superposition(p.Amps)
	case KindUp:
		return NewState(Up())
	case KindDown:
		return NewState(Down())
	case KindLeft:
		return NewState(Left())
	case KindRight:
		return NewState(Right())
	case KindIn:
		return NewState(In())
	case KindOut:
		return NewState(Out())
	default:
		return State{}, fmt.Errorf("%w: unknown state kind %d", ErrConfiguration, int(kind))
	}
}
