package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeKellyStakeNoEdge(t *testing.T) {
	cfg := DefaultConfig()

	// Fair coin at even money carries zero edge.
	advice := cfg.ComputeKellyStake(0.5, 2.0)
	assert.Zero(t, advice.StakeFraction)
	assert.Equal(t, "no edge", advice.Reason)

	// Negative edge.
	advice = cfg.ComputeKellyStake(0.4, 2.0)
	assert.Zero(t, advice.StakeFraction)
	assert.Negative(t, advice.FullKelly)
}

func TestComputeKellyStakePositiveEdge(t *testing.T) {
	cfg := DefaultConfig()

	advice := cfg.ComputeKellyStake(0.6, 2.0)
	// (0.6*1 - 0.4) / 1 = 0.20 full Kelly.
	assert.InDelta(t, 0.20, advice.FullKelly, 1e-9)
	assert.InDelta(t, 0.05, advice.FractionalKelly, 1e-9)
	assert.InDelta(t, 0.05, advice.StakeFraction, 1e-9)
}

func TestComputeKellyStakeCapped(t *testing.T) {
	cfg := DefaultConfig()

	// A huge edge would exceed the 5% single-bet cap.
	advice := cfg.ComputeKellyStake(0.8, 2.0)
	assert.InDelta(t, 0.60, advice.FullKelly, 1e-9)
	assert.InDelta(t, 0.15, advice.FractionalKelly, 1e-9)
	assert.Equal(t, cfg.MaxStakeFraction, advice.StakeFraction)
	assert.Equal(t, "capped at max single stake", advice.Reason)
}

func TestComputeKellyStakeInvalidInputs(t *testing.T) {
	cfg := DefaultConfig()

	for _, tc := range []struct{ p, odds float64 }{
		{0, 2.0}, {1, 2.0}, {0.5, 1.0}, {0.5, 0}, {-0.1, 2.0},
	} {
		advice := cfg.ComputeKellyStake(tc.p, tc.odds)
		assert.Zero(t, advice.StakeFraction)
		assert.Equal(t, "invalid odds or probability", advice.Reason)
	}
}

func TestApproveStakeDrawdownHalt(t *testing.T) {
	cfg := DefaultConfig()
	advice := StakeAdvice{StakeFraction: 0.03}

	// 20% drawdown from peak trips the 15% halt.
	fraction, reason := cfg.ApproveStake(advice, BankrollState{
		Bankroll:     800,
		PeakBankroll: 1000,
	})
	assert.Zero(t, fraction)
	assert.Contains(t, reason, "drawdown")

	// 10% drawdown passes.
	fraction, reason = cfg.ApproveStake(advice, BankrollState{
		Bankroll:     900,
		PeakBankroll: 1000,
	})
	assert.Equal(t, 0.03, fraction)
	assert.Empty(t, reason)
}

func TestApproveStakeExposureCap(t *testing.T) {
	cfg := DefaultConfig()
	advice := StakeAdvice{StakeFraction: 0.05}

	// 8% already committed plus 5% proposed breaches the 10% daily cap.
	fraction, reason := cfg.ApproveStake(advice, BankrollState{
		Bankroll:     1000,
		PeakBankroll: 1000,
		OpenExposure: 80,
	})
	assert.Zero(t, fraction)
	assert.Contains(t, reason, "exposure cap")

	fraction, _ = cfg.ApproveStake(advice, BankrollState{
		Bankroll:     1000,
		PeakBankroll: 1000,
		OpenExposure: 40,
	})
	assert.Equal(t, 0.05, fraction)
}

func TestApproveStakeZeroProposal(t *testing.T) {
	cfg := DefaultConfig()
	fraction, reason := cfg.ApproveStake(StakeAdvice{Reason: "no edge"}, BankrollState{Bankroll: 1000})
	assert.Zero(t, fraction)
	assert.Equal(t, "no edge", reason)
}
