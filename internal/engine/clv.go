package engine

import (
	"math"

	"github.com/yourusername/edge-engine/internal/models"
)

// fullLiquidityBooks is the bookmaker count at which a market is treated as
// fully liquid.
const fullLiquidityBooks = 7.0

// ProjectCLV forecasts where the market line will close. The model assumes
// the current price converges toward the no-margin fair price at a rate that
// grows with liquidity; the CLV percentage is the advantage captured by
// taking the current price before that move.
func ProjectCLV(probability, currentOdds, edge float64, bookmakerCount int) models.CLVProjection {
	if probability <= 0 || currentOdds <= 0 {
		return models.CLVProjection{Direction: models.LineStable}
	}

	fairOdds := 1.0 / probability
	liquidity := math.Min(1.0, float64(bookmakerCount)/fullLiquidityBooks)
	convergence := 0.4 + 0.3*liquidity

	predicted := currentOdds - (currentOdds-fairOdds)*convergence
	clvPercent := 0.0
	if predicted > 0 {
		clvPercent = (currentOdds - predicted) / predicted * 100.0
	}

	direction := models.LineStable
	switch {
	case edge > 0.06:
		direction = models.LineShortening
	case edge < 0.02:
		direction = models.LineDrifting
	}

	return models.CLVProjection{
		FairOdds:             fairOdds,
		PredictedClosingOdds: predicted,
		CLVPercent:           clvPercent,
		LiquidityFactor:      liquidity,
		Direction:            direction,
		Score:                clvScore(edge, liquidity, clvPercent),
	}
}

// clvScore composes a 0-100 durability score from capped contributions of
// edge magnitude, liquidity and projected CLV.
func clvScore(edge, liquidity, clvPercent float64) float64 {
	edgeContrib := math.Min(40, math.Max(0, edge*400))
	liquidityContrib := liquidity * 30
	clvContrib := math.Min(30, math.Max(0, clvPercent*3))
	return clamp(edgeContrib+liquidityContrib+clvContrib, 0, 100)
}
