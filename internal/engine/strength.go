package engine

import (
	"github.com/yourusername/edge-engine/internal/models"
)

// StrengthFactors are attack/defense ratios relative to league averages.
// Values above 1.0 mean stronger than the average side in that role.
type StrengthFactors struct {
	AttackHome  float64
	DefenseHome float64
	AttackAway  float64
	DefenseAway float64
}

// Lambdas is the expected-goals pair for one fixture.
type Lambdas struct {
	Home float64
	Away float64
}

// ComputeStrengthFactors derives attack and defense ratios from the blended
// season/form averages. Attack is measured against the league average for the
// side's venue; defense against the opposite venue's average (what visiting
// attacks typically score).
func (c *Config) ComputeStrengthFactors(match *models.MatchContext) StrengthFactors {
	home := match.Home.BlendedStats()
	away := match.Away.BlendedStats()

	return StrengthFactors{
		AttackHome:  home.AvgScored / c.LeagueAvgHomeGoals,
		DefenseHome: home.AvgConceded / c.LeagueAvgAwayGoals,
		AttackAway:  away.AvgScored / c.LeagueAvgAwayGoals,
		DefenseAway: away.AvgConceded / c.LeagueAvgHomeGoals,
	}
}

// ComputeLambdas produces the base expected-goals pair from strength factors
// and the per-league home advantage. Output is clamped to the valid lambda
// range to bound pathological inputs.
func (c *Config) ComputeLambdas(match *models.MatchContext, sf StrengthFactors) Lambdas {
	homeAdv := c.homeAdvantageFor(match.LeagueID)

	return c.ClampLambdas(Lambdas{
		Home: c.LeagueAvgHomeGoals * sf.AttackHome * sf.DefenseAway * homeAdv,
		Away: c.LeagueAvgAwayGoals * sf.AttackAway * sf.DefenseHome,
	})
}

// ClampLambdas bounds the pair to [MinLambdaHome,MaxLambdaHome] and
// [MinLambdaAway,MaxLambdaAway]. Every adjustment stage must re-clamp because
// blending can leave the valid range.
func (c *Config) ClampLambdas(l Lambdas) Lambdas {
	return Lambdas{
		Home: clamp(l.Home, c.MinLambdaHome, c.MaxLambdaHome),
		Away: clamp(l.Away, c.MinLambdaAway, c.MaxLambdaAway),
	}
}

// fatigueMultiplier maps rest days to a goal-expectancy penalty.
func fatigueMultiplier(restDays int) float64 {
	switch {
	case restDays >= 5:
		return 1.0
	case restDays >= 3:
		return 0.97
	case restDays == 2:
		return 0.94
	default:
		return 0.90
	}
}

// AdjustForFatigueAndInjuries applies each side's rest-day tier and injury
// factor to its lambda. Injury factors arrive pre-clamped to [0.80,1.0] by
// MatchContext.Normalize.
func (c *Config) AdjustForFatigueAndInjuries(match *models.MatchContext, l Lambdas) Lambdas {
	l.Home *= fatigueMultiplier(match.Home.RestDays) * match.Home.InjuryFactor
	l.Away *= fatigueMultiplier(match.Away.RestDays) * match.Away.InjuryFactor
	return c.ClampLambdas(l)
}
