package statistics

import (
	"fmt"
	"math"

	"github.com/azimonti/quantum-entanglement-simulation/internal/quantum"
)

// MinBellSamples is the minimum pooled trial count per switch pair below
// which a Bell estimate is reported as undefined.
const MinBellSamples = 1

// JointProbability estimates P(outcomeA=outA, outcomeB=outB) conditioned on
// the switch pair being (settingA, settingB) in either order. The two
// orderings are pooled with trial-count weighting; in the swapped pool the
// outcome roles swap with the switches.
func (a *Aggregator) JointProbability(settingA, settingB, outA, outB int) (float64, int, error) {
	var trials, matches int
	for _, r := range a.records {
		switch {
		case r.SwitchA == settingA && r.SwitchB == settingB:
			trials++
			if r.OutcomeA == outA && r.OutcomeB == outB {
				matches++
			}
		case settingA != settingB && r.SwitchA == settingB && r.SwitchB == settingA:
			trials++
			if r.OutcomeA == outB && r.OutcomeB == outA {
				matches++
			}
		}
	}
	if trials < MinBellSamples {
		return 0, 0, fmt.Errorf("%w: no trials recorded for switch pair (%d,%d)",
			quantum.ErrInsufficientData, settingA, settingB)
	}
	return float64(matches) / float64(trials), trials, nil
}

// BellTriple names the three switch settings of the inequality: left,
// center, right.
type BellTriple struct {
	L int `json:"l"`
	C int `json:"c"`
	R int `json:"r"`
}

// BellResult carries both sides of the three-setting inequality
//
//	P(L+,C−) + P(C+,R−) ≥ P(L+,R−)
//
// together with the analytic quantum prediction ½sin²(Δ/2) for each pairwise
// angle gap Δ. Violated is true when the empirical left side falls below the
// right side, which no local-hidden-variable model allows.
type BellResult struct {
	Triple      BellTriple `json:"triple"`
	LHS         float64    `json:"lhs"`
	RHS         float64    `json:"rhs"`
	AnalyticLHS float64    `json:"analytic_lhs"`
	AnalyticRHS float64    `json:"analytic_rhs"`
	Violated    bool       `json:"violated"`
	SamplesLC   int        `json:"samples_lc"`
	SamplesCR   int        `json:"samples_cr"`
	SamplesLR   int        `json:"samples_lr"`
}

// bellTerm is the analytic singlet probability P(+,−) at an angle gap of
// deltaRad, under the inverted-B reading convention.
func bellTerm(deltaRad float64) float64 {
	s := math.Sin(deltaRad / 2)
	return 0.5 * s * s
}

// BellCheck evaluates the inequality over the recorded trials. thetasDeg
// maps each switch index of the triple to the apparatus angle in degrees;
// the analytic sides come from those angles, the empirical sides from the
// pooled joint probabilities.
func (a *Aggregator) BellCheck(triple BellTriple, thetasDeg map[int]float64) (BellResult, error) {
	res := BellResult{Triple: triple}

	pLC, nLC, err := a.JointProbability(triple.L, triple.C, +1, -1)
	if err != nil {
		return res, err
	}
	pCR, nCR, err := a.JointProbability(triple.C, triple.R, +1, -1)
	if err != nil {
		return res, err
	}
	pLR, nLR, err := a.JointProbability(triple.L, triple.R, +1, -1)
	if err != nil {
		return res, err
	}

	res.LHS = pLC + pCR
	res.RHS = pLR
	res.SamplesLC = nLC
	res.SamplesCR = nCR
	res.SamplesLR = nLR
	res.Violated = res.LHS < res.RHS

	thetaL, okL := thetasDeg[triple.L]
	thetaC, okC := thetasDeg[triple.C]
	thetaR, okR := thetasDeg[triple.R]
	if !okL || !okC || !okR {
		return res, fmt.Errorf("%w: missing apparatus angle for switch triple (%d,%d,%d)",
			quantum.ErrConfiguration, triple.L, triple.C, triple.R)
	}
	rad := math.Pi / 180
	res.AnalyticLHS = bellTerm((thetaL-thetaC)*rad) + bellTerm((thetaC-thetaR)*rad)
	res.AnalyticRHS = bellTerm((thetaL - thetaR) * rad)

	return res, nil
}
