// Package statistics accumulates (switch, outcome) records across trials and
// derives the marginals, agreement rates, correlations and Bell-inequality
// estimates consumed by the display layer.
package statistics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
)

// MinCorrelationSamples is the minimum paired-sample count below which a
// Pearson correlation is reported as undefined rather than NaN.
const MinCorrelationSamples = 4

// Record is one trial: the switch settings of both apparatuses and the ±1
// outcomes. Records are append-only; prior entries are never rewritten.
type Record struct {
	SwitchA  int `json:"switch_a"`
	SwitchB  int `json:"switch_b"`
	OutcomeA int `json:"outcome_a"`
	OutcomeB int `json:"outcome_b"`
}

// Aggregator holds the trial log. It is not synchronized; the owning
// session serializes access.
type Aggregator struct {
	records []Record
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends one trial. O(1), commits only after both outcomes were
// sampled.
func (a *Aggregator) Record(r Record) {
	a.records = append(a.records, r)
}

// Len returns the number of recorded trials.
func (a *Aggregator) Len() int { return len(a.records) }

// Records returns a copy of the trial log. Merging logs from independently
// seeded workers is plain concatenation.
func (a *Aggregator) Records() []Record {
	out := make([]Record, len(a.records))
	copy(out, a.records)
	return out
}

// Merge appends another aggregator's records. Accumulation is commutative,
// so parallel workers can be combined in any order.
func (a *Aggregator) Merge(other *Aggregator) {
	a.records = append(a.records, other.records...)
}

// Reset discards the trial log.
func (a *Aggregator) Reset() {
	a.records = nil
}

// Marginals are the per-subsystem outcome fractions.
type Marginals struct {
	PlusA  float64 `json:"plus_a"`
	MinusA float64 `json:"minus_a"`
	PlusB  float64 `json:"plus_b"`
	MinusB float64 `json:"minus_b"`
}

// Partition summarizes the trials whose switch settings were equal
// (or different).
type Partition struct {
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
	// Agreement is the fraction of the partition where both outcomes were
	// equal. Nil when the partition is empty.
	Agreement *float64 `json:"agreement,omitempty"`
}

// Snapshot is a derived view recomputed from the record log.
type Snapshot struct {
	Trials          int       `json:"trials"`
	Marginals       Marginals `json:"marginals"`
	SameSwitch      Partition `json:"same_switch"`
	DifferentSwitch Partition `json:"different_switch"`
}

// Snapshot derives the current statistics from the log. An empty log yields
// the zero snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	n := len(a.records)
	snap := Snapshot{Trials: n}
	if n == 0 {
		return snap
	}

	var plusA, plusB, sameCount, sameAgree, diffAgree int
	for _, r := range a.records {
		if r.OutcomeA == +1 {
			plusA++
		}
		if r.OutcomeB == +1 {
			plusB++
		}
		if r.SwitchA == r.SwitchB {
			sameCount++
			if r.OutcomeA == r.OutcomeB {
				sameAgree++
			}
		} else if r.OutcomeA == r.OutcomeB {
			diffAgree++
		}
	}

	total := float64(n)
	snap.Marginals = Marginals{
		PlusA:  float64(plusA) / total,
		MinusA: float64(n-plusA) / total,
		PlusB:  float64(plusB) / total,
		MinusB: float64(n-plusB) / total,
	}

	diffCount := n - sameCount
	snap.SameSwitch = Partition{Count: sameCount, Fraction: float64(sameCount) / total}
	snap.DifferentSwitch = Partition{Count: diffCount, Fraction: float64(diffCount) / total}
	if sameCount > 0 {
		v := float64(sameAgree) / float64(sameCount)
		snap.SameSwitch.Agreement = &v
	}
	if diffCount > 0 {
		v := float64(diffAgree) / float64(diffCount)
		snap.DifferentSwitch.Agreement = &v
	}
	return snap
}

// SingleCounts summarizes single-apparatus trials, where only the first
// outcome of each record is meaningful.
type SingleCounts struct {
	Trials int     `json:"trials"`
	Plus   float64 `json:"plus"`
	Minus  float64 `json:"minus"`
}

// SingleCounts derives the ±1 outcome fractions of the first-apparatus log.
func (a *Aggregator) SingleCounts() SingleCounts {
	n := len(a.records)
	out := SingleCounts{Trials: n}
	if n == 0 {
		return out
	}
	plus := 0
	for _, r := range a.records {
		if r.OutcomeA == +1 {
			plus++
		}
	}
	out.Plus = float64(plus) / float64(n)
	out.Minus = float64(n-plus) / float64(n)
	return out
}

// Correlation returns the Pearson correlation coefficient of two paired
// expectation-value sample series. Fewer than MinCorrelationSamples pairs
// is an explicit insufficient-data error, never a silent NaN.
func Correlation(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: paired series have lengths %d and %d",
			quantum.ErrConfiguration, len(xs), len(ys))
	}
	if len(xs) < MinCorrelationSamples {
		return 0, fmt.Errorf("%w: correlation needs at least %d pairs, got %d",
			quantum.ErrInsufficientData, MinCorrelationSamples, len(xs))
	}
	r := stat.Correlation(xs, ys, nil)
	return r, nil
}
