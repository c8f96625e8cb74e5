package engine

import (
	"fmt"
	"math"

	"github.com/yourusername/edge-engine/internal/models"
)

// Risk tier thresholds, shared with the edge-score composer.
const (
	tierAPlusThreshold = 85.0
	tierAThreshold     = 70.0
	tierBThreshold     = 55.0
)

// TierForScore maps a 0-100 composite score to a risk tier. The step
// function is fixed: 85 / 70 / 55.
func TierForScore(score float64) models.RiskTier {
	switch {
	case score >= tierAPlusThreshold:
		return models.TierAPlus
	case score >= tierAThreshold:
		return models.TierA
	case score >= tierBThreshold:
		return models.TierB
	default:
		return models.TierReject
	}
}

// RiskInput carries everything the gates inspect.
type RiskInput struct {
	Odds           float64
	EVAdjusted     float64
	IntervalWidth  float64
	Volatility     float64 // 0-100
	BookmakerCount int
}

// AssessRisk applies the sequential hard gates and, when all pass, composes
// the risk score and tier. Rejections are values with reasons; callers
// branch on the tier, nothing is thrown.
func (c *Config) AssessRisk(in RiskInput) models.RiskAssessment {
	if in.IntervalWidth > c.MaxCIWidth {
		return models.RiskAssessment{
			Tier:   models.TierReject,
			Reason: fmt.Sprintf("confidence interval too wide: %.3f > %.3f", in.IntervalWidth, c.MaxCIWidth),
		}
	}

	if in.Odds >= 4.0 && in.Volatility >= 70 {
		return models.RiskAssessment{
			Tier:   models.TierReject,
			Reason: "tail risk: long odds with unstable simulation",
		}
	}

	if in.BookmakerCount < c.MinBookmakers {
		return models.RiskAssessment{
			Tier:   models.TierReject,
			Reason: fmt.Sprintf("illiquid: %d bookmakers, need %d", in.BookmakerCount, c.MinBookmakers),
		}
	}

	if in.EVAdjusted < 0.8*c.MinEV {
		return models.RiskAssessment{
			Tier:   models.TierReject,
			Reason: fmt.Sprintf("adjusted EV %.4f below floor %.4f", in.EVAdjusted, 0.8*c.MinEV),
		}
	}

	stability := 100.0 - in.Volatility
	liquidity := math.Min(1.0, float64(in.BookmakerCount)/fullLiquidityBooks) * 100.0
	evContrib := math.Min(100, math.Max(0, in.EVAdjusted*500))

	score := 0.6*stability + 0.2*liquidity + 0.2*evContrib
	tier := TierForScore(score)
	if tier == models.TierReject {
		return models.RiskAssessment{
			Tier:   models.TierReject,
			Reason: fmt.Sprintf("composite risk score %.1f below tier floor", score),
		}
	}

	return models.RiskAssessment{Tier: tier, Score: score}
}
