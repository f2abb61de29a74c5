package session

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
	"github.com/azimonti/quantum-entanglement-simulation/internal/statistics"
)

// AxisStat summarizes one measurement axis: the mean ±1 sample of each
// subsystem and, when enough pairs exist, their Pearson correlation.
type AxisStat struct {
	MeanA       float64  `json:"mean_a"`
	MeanB       float64  `json:"mean_b"`
	Correlation *float64 `json:"correlation,omitempty"`
	Samples     int      `json:"samples"`
}

// AxisStats groups the tracked axes with the Σ⟨σ_i⟩² purity indicator per
// subsystem (1 for a pure single-spin state, 0 for maximally mixed).
type AxisStats struct {
	Z          AxisStat `json:"z"`
	X          AxisStat `json:"x"`
	Y          AxisStat `json:"y"`
	SumSquares struct {
		A float64 `json:"a"`
		B float64 `json:"b"`
	} `json:"sum_squares"`
}

// SingleStats extends the snapshot for single-qubit sessions with the
// predicted agreement between the apparatus and the current spin state.
type SingleStats struct {
	PredictedAgreement float64 `json:"predicted_agreement"`
	ThetaDeg           float64 `json:"theta_deg"`
	PhiDeg             float64 `json:"phi_deg"`
}

// Snapshot is the full derived view handed to the display layer. It is
// recomputed from the record log on every call. Joint sessions carry the
// pair statistics, single sessions only their outcome counters; the unused
// side stays nil so the wire form never shows fictional fields.
type Snapshot struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Ticks     int64  `json:"ticks"`

	*statistics.Snapshot

	Counts *statistics.SingleCounts `json:"counts,omitempty"`
	Axes   *AxisStats               `json:"axes,omitempty"`
	Single *SingleStats             `json:"single,omitempty"`
}

// Snapshot derives the current statistics view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		Kind:      s.cfg.Kind.String(),
		Ticks:     s.ticks,
	}

	if s.Single() {
		counts := s.agg.SingleCounts()
		snap.Counts = &counts
		if !s.current.IsZero() {
			snap.Single = s.singleStats()
		}
		return snap
	}

	stats := s.agg.Snapshot()
	snap.Snapshot = &stats
	if s.cfg.TrackAxes {
		snap.Axes = s.axisStats()
	}
	return snap
}

func (s *Session) axisStats() *AxisStats {
	out := &AxisStats{}
	fill := func(dst *AxisStat, axis quantum.Axis) (float64, float64) {
		as := s.axes.A[axis]
		bs := s.axes.B[axis]
		dst.Samples = len(as)
		if len(as) == 0 {
			return 0, 0
		}
		dst.MeanA = stat.Mean(as, nil)
		dst.MeanB = stat.Mean(bs, nil)
		if r, err := statistics.Correlation(as, bs); err == nil && !math.IsNaN(r) {
			dst.Correlation = &r
		} else if err != nil && !errors.Is(err, quantum.ErrInsufficientData) {
			s.log.Error().Err(err).Str("axis", string(axis)).Msg("Axis correlation failed")
		}
		return dst.MeanA, dst.MeanB
	}
	az, bz := fill(&out.Z, quantum.AxisZ)
	ax, bx := fill(&out.X, quantum.AxisX)
	ay, by := fill(&out.Y, quantum.AxisY)
	out.SumSquares.A = az*az + ax*ax + ay*ay
	out.SumSquares.B = bz*bz + bx*bx + by*by
	return out
}

func (s *Session) singleStats() *SingleStats {
	dir := s.baseDirection(true)
	theta, phi, err := quantum.BlochAngles(s.current.Vector())
	if err != nil {
		return nil
	}
	return &SingleStats{
		PredictedAgreement: quantum.Agreement(dir.Theta, dir.Phi, theta, phi),
		ThetaDeg:           s.cfg.ThetaA,
		PhiDeg:             s.cfg.PhiA,
	}
}
