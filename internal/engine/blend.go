package engine

import (
	"github.com/yourusername/edge-engine/internal/models"
)

// calibrationFactors correct known systematic Poisson bias per market. The
// independence assumption underprices correlated scoring, so over and BTTS
// probabilities are nudged up and under markets shrunk. Markets absent from
// the table pass through unchanged.
var calibrationFactors = map[models.Market]float64{
	models.MarketOver15:    1.02,
	models.MarketOver25:    1.04,
	models.MarketOver35:    1.05,
	models.MarketUnder15:   0.97,
	models.MarketUnder25:   0.96,
	models.MarketUnder35:   0.95,
	models.MarketBTTSYes:   1.03,
	models.MarketBTTSNo:    0.97,
	models.MarketFHOver05:  1.02,
	models.MarketFHOver15:  1.02,
	models.MarketFHUnder05: 0.98,
	models.MarketFHUnder15: 0.98,
}

// Probability clamp after calibration. Nothing is ever priced as certain.
const (
	minCalibratedProb = 0.01
	maxCalibratedProb = 0.95
)

// BlendProbabilities merges the analytical and empirical probability sets,
// applies per-market calibration and clamps the result.
func (c *Config) BlendProbabilities(analytical, empirical models.MarketProbabilities) models.MarketProbabilities {
	out := make(models.MarketProbabilities, len(models.AllMarkets))
	for _, market := range models.AllMarkets {
		blended := c.AnalyticalWeight*analytical[market] + c.EmpiricalWeight*empirical[market]
		if factor, ok := calibrationFactors[market]; ok {
			blended *= factor
		}
		out[market] = clamp(blended, minCalibratedProb, maxCalibratedProb)
	}
	return out
}
