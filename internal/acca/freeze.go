// Package acca assembles constrained 4+1 accumulators and tracks the live
// value of their freeze leg as results settle.
package acca

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/edge-engine/internal/models"
)

// CalculateFreezeValue returns the current cash value of a live accumulator:
// stake multiplied by the odds of every settled winner and the probability of
// every leg still pending. Void legs pass through at 1. Any lost leg zeroes
// the value unconditionally.
func CalculateFreezeValue(legs []models.AccaLeg, stake decimal.Decimal) decimal.Decimal {
	value := stake
	for _, leg := range legs {
		switch leg.Status {
		case models.LegLost:
			return decimal.Zero
		case models.LegWon:
			value = value.Mul(decimal.NewFromFloat(leg.Odds))
		case models.LegPending:
			value = value.Mul(decimal.NewFromFloat(leg.Probability))
		case models.LegVoid:
			// A voided leg neither pays nor kills the acca.
		}
	}
	return value
}

// GetFreezeRecommendation maps the current freeze value against the stake.
// The boundary at exactly twice the stake resolves to FREEZE_NOW.
func GetFreezeRecommendation(freezeValue, stake decimal.Decimal) models.FreezeRecommendation {
	if freezeValue.IsZero() {
		return models.AccaDead
	}
	if freezeValue.GreaterThanOrEqual(stake.Mul(decimal.NewFromInt(2))) {
		return models.FreezeNow
	}
	if freezeValue.LessThan(stake) {
		return models.LetItRide
	}
	return models.ConsiderFreezing
}

// Revalue recomputes an accumulator's freeze value and recommendation from
// its current leg statuses.
func Revalue(a *models.AccaFreeze) {
	a.FreezeValue = CalculateFreezeValue(a.Legs(), a.Stake)
	a.Advice = GetFreezeRecommendation(a.FreezeValue, a.Stake)
}
