package models

import (
	"time"
)

// RiskTier grades a candidate bet. TierReject is a value, not an error:
// callers branch on it.
type RiskTier string

const (
	TierAPlus  RiskTier = "A+"
	TierA      RiskTier = "A"
	TierB      RiskTier = "B"
	TierReject RiskTier = "REJECT"
)

// LineDirection describes the projected movement of a market price.
type LineDirection string

const (
	LineShortening LineDirection = "shortening"
	LineDrifting   LineDirection = "drifting"
	LineStable     LineDirection = "stable"
)

// CLVProjection forecasts where the market line will close relative to the
// current price.
type CLVProjection struct {
	FairOdds             float64       `json:"fair_odds"`
	PredictedClosingOdds float64       `json:"predicted_closing_odds"`
	CLVPercent           float64       `json:"clv_percent"`
	LiquidityFactor      float64       `json:"liquidity_factor"`
	Direction            LineDirection `json:"direction"`
	Score                float64       `json:"score"` // 0-100
}

// RiskAssessment is the outcome of the sequential hard risk gates.
type RiskAssessment struct {
	Tier   RiskTier `json:"tier"`
	Score  float64  `json:"score"` // composite 0-100, zero when rejected
	Reason string   `json:"reason,omitempty"`
}

// Rejected reports whether a hard gate fired.
func (r RiskAssessment) Rejected() bool {
	return r.Tier == TierReject
}

// ConfidenceInterval is a 95% interval around an empirical probability.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Width returns the interval width.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// EvaluatedMarket is one fully scored (match, market) candidate. Immutable
// once produced within a run.
type EvaluatedMarket struct {
	FixtureID          int64              `json:"fixture_id"`
	LeagueID           string             `json:"league_id"`
	Market             Market             `json:"market"`
	Probability        float64            `json:"probability"`
	ImpliedProbability float64            `json:"implied_probability"`
	Odds               float64            `json:"odds"`
	Edge               float64            `json:"edge"`
	EV                 float64            `json:"ev"`
	EVAdjusted         float64            `json:"ev_adjusted"`
	Confidence         float64            `json:"confidence"` // 0-100
	EdgeScore          float64            `json:"edge_score"` // 0-100
	StakeFraction      float64            `json:"stake_fraction"`
	BookmakerCount     int                `json:"bookmaker_count"`
	SimWinRate         float64            `json:"sim_win_rate"`
	SimInterval        ConfidenceInterval `json:"sim_interval"`
	Volatility         float64            `json:"volatility"` // 0-100, lower is steadier
	CLV                CLVProjection      `json:"clv"`
	Risk               RiskAssessment     `json:"risk"`
}

// MatchPrediction is the single pick selected for one fixture. A match with
// no qualifying candidate yields no prediction at all.
type MatchPrediction struct {
	FixtureID   int64           `json:"fixture_id"`
	LeagueID    string          `json:"league_id"`
	HomeTeam    string          `json:"home_team"`
	AwayTeam    string          `json:"away_team"`
	KickoffUTC  time.Time       `json:"kickoff_utc"`
	LambdaHome  float64         `json:"lambda_home"`
	LambdaAway  float64         `json:"lambda_away"`
	Confidence  float64         `json:"confidence"`
	Selection   EvaluatedMarket `json:"selection"`
	GeneratedAt time.Time       `json:"generated_at"`
}
