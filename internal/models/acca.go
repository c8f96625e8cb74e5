package models

import (
	"github.com/shopspring/decimal"
)

// LegStatus is the live settlement state of an accumulator leg. It is mutated
// externally as results arrive; everything else on a leg is fixed at build time.
type LegStatus string

const (
	LegPending LegStatus = "pending"
	LegWon     LegStatus = "won"
	LegLost    LegStatus = "lost"
	LegVoid    LegStatus = "void"
)

// LegKind separates the four bankers from the single longshot.
type LegKind string

const (
	LegSafe   LegKind = "safe"
	LegFreeze LegKind = "freeze"
)

// AccaLeg is a match prediction narrowed to a WIN-type market and enrolled in
// an accumulator.
type AccaLeg struct {
	FixtureID   int64     `json:"fixture_id"`
	LeagueID    string    `json:"league_id"`
	Market      Market    `json:"market"`
	Label       string    `json:"label"`
	Odds        float64   `json:"odds" validate:"gt=1"`
	Probability float64   `json:"probability" validate:"gt=0,lte=1"`
	EdgeScore   float64   `json:"edge_score"`
	Kind        LegKind   `json:"kind"`
	Status      LegStatus `json:"status"`
}

// FreezeRecommendation advises the holder of a live accumulator.
type FreezeRecommendation string

const (
	AccaDead         FreezeRecommendation = "ACCA_DEAD"
	LetItRide        FreezeRecommendation = "LET_IT_RIDE"
	ConsiderFreezing FreezeRecommendation = "CONSIDER_FREEZING"
	FreezeNow        FreezeRecommendation = "FREEZE_NOW"
)

// AccaFreeze is a 4+1 accumulator: four safe legs and one freeze leg.
type AccaFreeze struct {
	SafeLegs     [4]AccaLeg           `json:"safe_legs"`
	FreezeLeg    AccaLeg              `json:"freeze_leg"`
	CombinedOdds float64              `json:"combined_odds"`
	CombinedProb float64              `json:"combined_prob"`
	SafeProb     float64              `json:"safe_prob"` // product over safe legs only
	Confidence   float64              `json:"confidence"`
	Stake        decimal.Decimal      `json:"stake"`
	FreezeValue  decimal.Decimal      `json:"freeze_value"`
	Advice       FreezeRecommendation `json:"advice"`
}

// Legs returns all five legs, safe legs first.
func (a *AccaFreeze) Legs() []AccaLeg {
	legs := make([]AccaLeg, 0, 5)
	legs = append(legs, a.SafeLegs[:]...)
	legs = append(legs, a.FreezeLeg)
	return legs
}

// HasLostLeg reports whether any leg has settled as lost.
func (a *AccaFreeze) HasLostLeg() bool {
	for _, leg := range a.Legs() {
		if leg.Status == LegLost {
			return true
		}
	}
	return false
}
