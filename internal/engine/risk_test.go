package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/edge-engine/internal/models"
)

func TestTierForScoreStepFunction(t *testing.T) {
	tests := []struct {
		score    float64
		expected models.RiskTier
	}{
		{100, models.TierAPlus},
		{85, models.TierAPlus},
		{84.9, models.TierA},
		{70, models.TierA},
		{69.9, models.TierB},
		{55, models.TierB},
		{54.9, models.TierReject},
		{0, models.TierReject},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TierForScore(tt.score), "score %.1f", tt.score)
	}
}

func passingRiskInput() RiskInput {
	return RiskInput{
		Odds:           2.0,
		EVAdjusted:     0.10,
		IntervalWidth:  0.02,
		Volatility:     20,
		BookmakerCount: 6,
	}
}

func TestAssessRiskPasses(t *testing.T) {
	cfg := DefaultConfig()
	assessment := cfg.AssessRisk(passingRiskInput())

	assert.False(t, assessment.Rejected())
	assert.Positive(t, assessment.Score)
	assert.Empty(t, assessment.Reason)
}

func TestAssessRiskGates(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(*RiskInput)
		reason string
	}{
		{
			"wide interval", func(in *RiskInput) { in.IntervalWidth = 0.15 },
			"confidence interval too wide",
		},
		{
			"tail risk", func(in *RiskInput) { in.Odds = 4.5; in.Volatility = 75 },
			"tail risk",
		},
		{
			"illiquid", func(in *RiskInput) { in.BookmakerCount = 2 },
			"illiquid",
		},
		{
			"ev floor", func(in *RiskInput) { in.EVAdjusted = 0.001 },
			"below floor",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := passingRiskInput()
			tt.mutate(&in)
			assessment := cfg.AssessRisk(in)
			assert.True(t, assessment.Rejected())
			assert.Contains(t, assessment.Reason, tt.reason)
			assert.Zero(t, assessment.Score)
		})
	}
}

func TestAssessRiskTailRiskNeedsBoth(t *testing.T) {
	cfg := DefaultConfig()

	// Long odds alone pass when the simulation is steady.
	in := passingRiskInput()
	in.Odds = 5.0
	in.Volatility = 30
	assert.False(t, cfg.AssessRisk(in).Rejected())

	// High volatility alone passes at short odds.
	in = passingRiskInput()
	in.Volatility = 80
	assessment := cfg.AssessRisk(in)
	if assessment.Rejected() {
		// High volatility may still fail the composite floor, but never the
		// tail-risk gate.
		assert.NotContains(t, assessment.Reason, "tail risk")
	}
}

func TestAssessRiskCompositeFloor(t *testing.T) {
	cfg := DefaultConfig()

	// Everything barely passes the hard gates but composes a weak score.
	in := RiskInput{
		Odds:           2.0,
		EVAdjusted:     0.017, // above 0.8*MinEV = 0.016
		IntervalWidth:  0.11,
		Volatility:     90,
		BookmakerCount: 3,
	}
	assessment := cfg.AssessRisk(in)
	assert.True(t, assessment.Rejected())
	assert.Contains(t, assessment.Reason, "composite risk score")
}
