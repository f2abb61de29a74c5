package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/azimonti/quantum-entanglement-simulation/internal/measurement"
	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
	"github.com/azimonti/quantum-entanglement-simulation/internal/session"
	"github.com/azimonti/quantum-entanglement-simulation/internal/statistics"
)

// complexPair is the wire form of a complex amplitude: [real, imaginary].
type complexPair [2]float64

func (p complexPair) value() complex128 { return complex(p[0], p[1]) }

func toVec(pairs []complexPair) quantum.Vec {
	out := make(quantum.Vec, len(pairs))
	for i, p := range pairs {
		out[i] = p.value()
	}
	return out
}

type createSessionRequest struct {
	Kind            string        `json:"kind"`
	A               []complexPair `json:"a,omitempty"`    // product factor A
	B               []complexPair `json:"b,omitempty"`    // product factor B
	Amps            []complexPair `json:"amps,omitempty"` // partial-state amplitudes on {uu,ud,du,dd}
	ThetaA          float64       `json:"theta_a"`
	PhiA            float64       `json:"phi_a"`
	ThetaB          float64       `json:"theta_b"`
	PhiB            float64       `json:"phi_b"`
	ThetaScale      float64       `json:"theta_scale,omitempty"`
	PhiScale        float64       `json:"phi_scale,omitempty"`
	SwitchA         int           `json:"switch_a"`
	SwitchB         int           `json:"switch_b"`
	Invert          *bool         `json:"invert,omitempty"`
	PersistCollapse bool          `json:"persist_collapse,omitempty"`
	TrackAxes       bool          `json:"track_axes,omitempty"`
	Seed            uint64        `json:"seed,omitempty"`
}

type sessionResponse struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Mode   string `json:"mode"`
	Trials int    `json:"trials"`
}

func sessionInfo(s *session.Session) sessionResponse {
	mode := "joint"
	if s.Single() {
		mode = "single"
	}
	return sessionResponse{
		ID:     s.ID(),
		Kind:   s.Kind().String(),
		Mode:   mode,
		Trials: s.TrialCount(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	kind, err := quantum.ParseKind(req.Kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	cfg := session.Config{
		Kind:            kind,
		ThetaA:          req.ThetaA,
		PhiA:            req.PhiA,
		ThetaB:          req.ThetaB,
		PhiB:            req.PhiB,
		ThetaScale:      req.ThetaScale,
		PhiScale:        req.PhiScale,
		SwitchA:         req.SwitchA,
		SwitchB:         req.SwitchB,
		Invert:          s.cfg.InvertB,
		PersistCollapse: req.PersistCollapse,
		TrackAxes:       req.TrackAxes,
		Seed:            req.Seed,
	}
	if cfg.Seed == 0 {
		cfg.Seed = s.cfg.Seed
	}
	if req.Invert != nil {
		cfg.Invert = *req.Invert
	}
	if len(req.A) > 0 {
		cfg.Params.A = toVec(req.A)
	}
	if len(req.B) > 0 {
		cfg.Params.B = toVec(req.B)
	}
	if len(req.Amps) > 0 {
		// A wrong-length amplitude array must never fall back to the
		// default preparation.
		if len(req.Amps) != 4 {
			writeDomainError(w, fmt.Errorf("%w: partial-state amplitudes need 4 entries, got %d",
				quantum.ErrConfiguration, len(req.Amps)))
			return
		}
		copy(cfg.Params.Amps[:], toVec(req.Amps))
	}

	sess, err := s.sessions.Create(cfg)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionInfo(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionInfo(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type directionRequest struct {
	Subsystem  string  `json:"subsystem"`
	ThetaDeg   float64 `json:"theta_deg"`
	PhiDeg     float64 `json:"phi_deg"`
	ThetaScale float64 `json:"theta_scale,omitempty"`
	PhiScale   float64 `json:"phi_scale,omitempty"`
}

func (s *Server) handleSetDirection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req directionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sess.SetDirection(req.Subsystem, req.ThetaDeg, req.PhiDeg); err != nil {
		writeDomainError(w, err)
		return
	}
	if req.ThetaScale != 0 || req.PhiScale != 0 {
		sess.SetScales(req.ThetaScale, req.PhiScale)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetInvert(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Invert bool `json:"invert"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.SetInvert(req.Invert)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMeasureSingle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	outcome, err := sess.MeasureSingle()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"outcome": outcome})
}

type jointRequest struct {
	SwitchA int    `json:"switch_a"`
	SwitchB int    `json:"switch_b"`
	Order   string `json:"order,omitempty"`
}

func (s *Server) handleMeasureJoint(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req jointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := measurement.ParseOrder(req.Order)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rec, err := sess.MeasureJoint(req.SwitchA, req.SwitchB, order)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type trialsRequest struct {
	N      int    `json:"n"`
	Policy string `json:"policy,omitempty"`
	Order  string `json:"order,omitempty"`
}

func (s *Server) handleRunTrials(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req trialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.N == 0 {
		req.N = s.cfg.DefaultTrials
	}
	policy, err := session.ParsePolicy(req.Policy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	order, err := measurement.ParseOrder(req.Order)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// Default bulk runs to random order per trial, matching the physical
	// setup where neither apparatus is privileged.
	if req.Order == "" {
		order = measurement.OrderRandom
	}
	committed, err := sess.RunTrials(req.N, policy, order)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"committed": committed})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleBell(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	triple := statistics.BellTriple{
		L: queryInt(r, "l", 0),
		C: queryInt(r, "c", 1),
		R: queryInt(r, "r", 2),
	}
	res, err := sess.Bell(triple)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return sess, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps core error categories to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quantum.ErrConfiguration):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, quantum.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, quantum.ErrInsufficientData):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
