package engine

import (
	"fmt"
)

// StakeAdvice is the output of the Kelly sizing calculation. A zero stake
// with a reason is the normal answer for a no-edge proposition, never an
// error.
type StakeAdvice struct {
	FullKelly       float64 `json:"full_kelly"`
	FractionalKelly float64 `json:"fractional_kelly"`
	StakeFraction   float64 `json:"stake_fraction"` // final bankroll fraction after caps
	Reason          string  `json:"reason,omitempty"`
}

// BankrollState is the caller-tracked exposure picture the portfolio checks
// run against.
type BankrollState struct {
	Bankroll     float64 `json:"bankroll"`
	PeakBankroll float64 `json:"peak_bankroll"`
	OpenExposure float64 `json:"open_exposure"` // sum of currently staked fractions × bankroll
}

// ComputeKellyStake sizes a position with fractional Kelly.
// fullKelly = (p*b - q) / b with b = odds-1, q = 1-p.
func (c *Config) ComputeKellyStake(probability, odds float64) StakeAdvice {
	if odds <= 1.0 || probability <= 0 || probability >= 1 {
		return StakeAdvice{Reason: "invalid odds or probability"}
	}

	b := odds - 1.0
	q := 1.0 - probability
	fullKelly := (probability*b - q) / b

	if fullKelly <= 0 {
		return StakeAdvice{FullKelly: fullKelly, Reason: "no edge"}
	}

	fractional := fullKelly * c.KellyFraction
	stake := fractional
	reason := ""
	if stake > c.MaxStakeFraction {
		stake = c.MaxStakeFraction
		reason = "capped at max single stake"
	}

	return StakeAdvice{
		FullKelly:       fullKelly,
		FractionalKelly: fractional,
		StakeFraction:   stake,
		Reason:          reason,
	}
}

// ApproveStake validates a proposed stake fraction against the daily
// exposure cap and the drawdown halt. The returned fraction is zero when a
// check fails, with the failing check named in the reason.
func (c *Config) ApproveStake(advice StakeAdvice, state BankrollState) (float64, string) {
	if advice.StakeFraction <= 0 {
		return 0, advice.Reason
	}
	if state.Bankroll <= 0 {
		return 0, "no bankroll"
	}

	if state.PeakBankroll > 0 {
		drawdown := (state.PeakBankroll - state.Bankroll) / state.PeakBankroll
		if drawdown > c.MaxDrawdown {
			return 0, fmt.Sprintf("drawdown %.1f%% exceeds halt threshold", drawdown*100)
		}
	}

	exposureFraction := state.OpenExposure / state.Bankroll
	if exposureFraction+advice.StakeFraction > c.DailyExposureCap {
		return 0, fmt.Sprintf("daily exposure cap: %.1f%% committed, %.1f%% proposed",
			exposureFraction*100, advice.StakeFraction*100)
	}

	return advice.StakeFraction, ""
}
