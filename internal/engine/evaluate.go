package engine

import (
	"github.com/yourusername/edge-engine/internal/models"
)

// varianceBases penalize high-variance market families before odds-based
// penalties are applied.
var varianceBases = map[models.MarketFamily]float64{
	models.FamilyResult:    1.00,
	models.FamilyGoalTotal: 0.92,
	models.FamilyBTTS:      0.88,
}

// varianceMultiplier combines the per-family base with a longshot penalty at
// the 4.0 / 6.0 / 8.0 odds breakpoints.
func varianceMultiplier(market models.Market, odds float64) float64 {
	multiplier := varianceBases[market.Family()]
	switch {
	case odds >= 8.0:
		multiplier *= 0.70
	case odds >= 6.0:
		multiplier *= 0.80
	case odds >= 4.0:
		multiplier *= 0.90
	}
	return multiplier
}

// EvaluateMarket prices one candidate against the market. It rejects only
// structurally invalid input (non-positive odds or probability, odds over the
// configured ceiling); a negative edge is a scored outcome, not a rejection,
// candidate ranking happens later.
func (c *Config) EvaluateMarket(fixtureID int64, leagueID string, market models.Market, probability, odds, confidence float64, bookmakerCount int) (models.EvaluatedMarket, bool) {
	if odds <= 0 || probability <= 0 || odds > c.MaxOdds {
		return models.EvaluatedMarket{}, false
	}

	implied := 1.0 / odds
	edge := probability - implied
	ev := probability*odds - 1.0
	evAdjusted := ev * (confidence / 100.0) * varianceMultiplier(market, odds)

	return models.EvaluatedMarket{
		FixtureID:          fixtureID,
		LeagueID:           leagueID,
		Market:             market,
		Probability:        probability,
		ImpliedProbability: implied,
		Odds:               odds,
		Edge:               edge,
		EV:                 ev,
		EVAdjusted:         evAdjusted,
		Confidence:         confidence,
		BookmakerCount:     bookmakerCount,
	}, true
}
