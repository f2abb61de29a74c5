package quantum

import "errors"

// Error categories for the simulation core. Callers classify failures with
// errors.Is; every error returned by this package and the measurement engine
// wraps exactly one of these.
var (
	// ErrConfiguration marks a fatal setup problem: unknown state kind,
	// unknown switch index, mismatched vector dimension.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrValidation marks input rejected before any state was mutated,
	// such as a non-unit vector supplied to a product-state constructor.
	ErrValidation = errors.New("validation failed")

	// ErrDegenerate marks a collapse vector with near-zero norm. The trial
	// should be re-drawn, never replaced with a default state.
	ErrDegenerate = errors.New("numerically degenerate collapse")

	// ErrInsufficientData marks a statistic requested below its minimum
	// sample count. Reported explicitly instead of returning NaN.
	ErrInsufficientData = errors.New("insufficient samples")
)
