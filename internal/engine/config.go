// Package engine implements the quantitative match-outcome modeling and
// bet-selection pipeline. Every function in this package is pure: identical
// inputs produce identical outputs, with no I/O and no hidden state.
package engine

// Config holds the modeling pipeline tunables. Zero values are replaced by
// ApplyDefaults so a partially populated config still runs.
type Config struct {
	// Goal expectancy model.
	LeagueAvgHomeGoals float64            `mapstructure:"league_avg_home_goals"`
	LeagueAvgAwayGoals float64            `mapstructure:"league_avg_away_goals"`
	HomeAdvantage      map[string]float64 `mapstructure:"home_advantage"` // per league id
	DefaultHomeAdv     float64            `mapstructure:"default_home_advantage"`
	MaxGoals           int                `mapstructure:"max_goals"`
	FirstHalfScale     float64            `mapstructure:"first_half_scale"`

	// Lambda clamps.
	MinLambdaHome float64 `mapstructure:"min_lambda_home"`
	MaxLambdaHome float64 `mapstructure:"max_lambda_home"`
	MinLambdaAway float64 `mapstructure:"min_lambda_away"`
	MaxLambdaAway float64 `mapstructure:"max_lambda_away"`

	// Elo and Bayesian adjustment.
	EloBase           float64 `mapstructure:"elo_base"`
	EloPointsPerRank  float64 `mapstructure:"elo_points_per_rank"`
	EloBlendFactor    float64 `mapstructure:"elo_blend_factor"`
	BaseDrawRate      float64 `mapstructure:"base_draw_rate"`
	ReliabilityGames  float64 `mapstructure:"reliability_games"`
	MaxEvidenceWeight float64 `mapstructure:"max_evidence_weight"`

	// Simulation.
	Iterations int `mapstructure:"iterations"`

	// Market evaluation.
	AnalyticalWeight float64 `mapstructure:"analytical_weight"`
	EmpiricalWeight  float64 `mapstructure:"empirical_weight"`
	MaxOdds          float64 `mapstructure:"max_odds"`
	MinEV            float64 `mapstructure:"min_ev"`
	MaxCIWidth       float64 `mapstructure:"max_ci_width"`
	MinBookmakers    int     `mapstructure:"min_bookmakers"`
	DisplayOddsFloor float64 `mapstructure:"display_odds_floor"`

	// Staking.
	KellyFraction    float64 `mapstructure:"kelly_fraction"`
	MaxStakeFraction float64 `mapstructure:"max_stake_fraction"`
	DailyExposureCap float64 `mapstructure:"daily_exposure_cap"`
	MaxDrawdown      float64 `mapstructure:"max_drawdown"`

	// Portfolio.
	MaxSlateDrawdown float64 `mapstructure:"max_slate_drawdown"`
}

// DefaultConfig returns the production defaults for the modeling pipeline.
func DefaultConfig() Config {
	return Config{
		LeagueAvgHomeGoals: 1.5,
		LeagueAvgAwayGoals: 1.2,
		DefaultHomeAdv:     1.10,
		MaxGoals:           6,
		FirstHalfScale:     0.45,

		MinLambdaHome: 0.3,
		MaxLambdaHome: 4.0,
		MinLambdaAway: 0.2,
		MaxLambdaAway: 3.5,

		EloBase:           1500,
		EloPointsPerRank:  12,
		EloBlendFactor:    0.15,
		BaseDrawRate:      0.26,
		ReliabilityGames:  15,
		MaxEvidenceWeight: 0.40,

		Iterations: 10000,

		AnalyticalWeight: 0.4,
		EmpiricalWeight:  0.6,
		MaxOdds:          25.0,
		MinEV:            0.02,
		MaxCIWidth:       0.12,
		MinBookmakers:    3,
		DisplayOddsFloor: 1.30,

		KellyFraction:    0.25,
		MaxStakeFraction: 0.05,
		DailyExposureCap: 0.10,
		MaxDrawdown:      0.15,

		MaxSlateDrawdown: 0.15,
	}
}

// ApplyDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.LeagueAvgHomeGoals <= 0 {
		c.LeagueAvgHomeGoals = def.LeagueAvgHomeGoals
	}
	if c.LeagueAvgAwayGoals <= 0 {
		c.LeagueAvgAwayGoals = def.LeagueAvgAwayGoals
	}
	if c.DefaultHomeAdv <= 0 {
		c.DefaultHomeAdv = def.DefaultHomeAdv
	}
	if c.MaxGoals <= 0 {
		c.MaxGoals = def.MaxGoals
	}
	if c.FirstHalfScale <= 0 {
		c.FirstHalfScale = def.FirstHalfScale
	}
	if c.MinLambdaHome <= 0 {
		c.MinLambdaHome = def.MinLambdaHome
	}
	if c.MaxLambdaHome <= 0 {
		c.MaxLambdaHome = def.MaxLambdaHome
	}
	if c.MinLambdaAway <= 0 {
		c.MinLambdaAway = def.MinLambdaAway
	}
	if c.MaxLambdaAway <= 0 {
		c.MaxLambdaAway = def.MaxLambdaAway
	}
	if c.EloBase <= 0 {
		c.EloBase = def.EloBase
	}
	if c.EloPointsPerRank <= 0 {
		c.EloPointsPerRank = def.EloPointsPerRank
	}
	if c.EloBlendFactor <= 0 {
		c.EloBlendFactor = def.EloBlendFactor
	}
	if c.BaseDrawRate <= 0 {
		c.BaseDrawRate = def.BaseDrawRate
	}
	if c.ReliabilityGames <= 0 {
		c.ReliabilityGames = def.ReliabilityGames
	}
	if c.MaxEvidenceWeight <= 0 {
		c.MaxEvidenceWeight = def.MaxEvidenceWeight
	}
	if c.Iterations <= 0 {
		c.Iterations = def.Iterations
	}
	if c.AnalyticalWeight <= 0 {
		c.AnalyticalWeight = def.AnalyticalWeight
	}
	if c.EmpiricalWeight <= 0 {
		c.EmpiricalWeight = def.EmpiricalWeight
	}
	if c.MaxOdds <= 0 {
		c.MaxOdds = def.MaxOdds
	}
	if c.MinEV <= 0 {
		c.MinEV = def.MinEV
	}
	if c.MaxCIWidth <= 0 {
		c.MaxCIWidth = def.MaxCIWidth
	}
	if c.MinBookmakers <= 0 {
		c.MinBookmakers = def.MinBookmakers
	}
	if c.DisplayOddsFloor <= 0 {
		c.DisplayOddsFloor = def.DisplayOddsFloor
	}
	if c.KellyFraction <= 0 {
		c.KellyFraction = def.KellyFraction
	}
	if c.MaxStakeFraction <= 0 {
		c.MaxStakeFraction = def.MaxStakeFraction
	}
	if c.DailyExposureCap <= 0 {
		c.DailyExposureCap = def.DailyExposureCap
	}
	if c.MaxDrawdown <= 0 {
		c.MaxDrawdown = def.MaxDrawdown
	}
	if c.MaxSlateDrawdown <= 0 {
		c.MaxSlateDrawdown = def.MaxSlateDrawdown
	}
}

// homeAdvantageFor looks up the per-league home advantage, falling back to the
// global default.
func (c *Config) homeAdvantageFor(leagueID string) float64 {
	if adv, ok := c.HomeAdvantage[leagueID]; ok && adv > 0 {
		return adv
	}
	return c.DefaultHomeAdv
}
