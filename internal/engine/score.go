package engine

import (
	"math"

	"github.com/yourusername/edge-engine/internal/models"
)

// Edge score component weights. They sum to one.
const (
	weightEV         = 0.30
	weightEdge       = 0.25
	weightCLV        = 0.20
	weightVolatility = 0.15
	weightLiquidity  = 0.10
)

// ScoreInput carries the normalized components of the composite edge score.
type ScoreInput struct {
	EV             float64
	Edge           float64
	CLVScore       float64 // already 0-100
	Volatility     float64 // 0-100
	BookmakerCount int
	Confidence     float64 // 0-100
}

// ComposeEdgeScore produces the 0-100 ranking score. EV and edge are scaled
// onto 0-100 and capped, volatility is inverted, and the weighted sum is
// damped by a confidence factor in [0.70,1.00] before rounding.
func ComposeEdgeScore(in ScoreInput) float64 {
	evComponent := math.Min(100, math.Max(0, in.EV*500))
	edgeComponent := math.Min(100, math.Max(0, in.Edge*666))
	clvComponent := clamp(in.CLVScore, 0, 100)
	volComponent := clamp(100-in.Volatility, 0, 100)
	liqComponent := math.Min(1.0, float64(in.BookmakerCount)/fullLiquidityBooks) * 100

	weighted := weightEV*evComponent +
		weightEdge*edgeComponent +
		weightCLV*clvComponent +
		weightVolatility*volComponent +
		weightLiquidity*liqComponent

	damping := 0.7 + 0.3*clamp(in.Confidence, 0, 100)/100.0
	return clamp(math.Round(weighted*damping), 0, 100)
}

// TierForEdgeScore re-derives the risk tier from the final edge score using
// the same thresholds as the risk assessor.
func TierForEdgeScore(score float64) models.RiskTier {
	return TierForScore(score)
}
