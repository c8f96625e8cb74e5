package engine

import (
	"math"

	"github.com/yourusername/edge-engine/internal/models"
)

// EloRating holds the rank-derived strength ratings for one fixture and the
// win/draw expectations they imply.
type EloRating struct {
	Home         float64
	Away         float64
	ExpectedHome float64
	ExpectedAway float64
	ExpectedDraw float64
	Delta        float64 // absolute rating difference
}

// ComputeEloRating derives Elo-like ratings from league rank and form
// momentum. A team's rating starts at the base and gains points for every
// rank position above bottom; a form-momentum bonus is scaled by sample
// reliability (games played over the reliability window, capped at 1).
func (c *Config) ComputeEloRating(match *models.MatchContext) EloRating {
	home := c.teamRating(&match.Home, match.LeagueSize)
	away := c.teamRating(&match.Away, match.LeagueSize)

	// Standard logistic Elo expectation on the rating difference.
	expectedHome := 1.0 / (1.0 + math.Pow(10, (away-home)/400.0))
	expectedAway := 1.0 - expectedHome

	// Draws are most likely between evenly rated sides; the estimate decays
	// as the expectations diverge.
	divergence := math.Abs(expectedHome - expectedAway)
	expectedDraw := c.BaseDrawRate * (1.0 - divergence)

	// Rescale the win expectations to share the non-draw mass.
	scale := 1.0 - expectedDraw
	expectedHome *= scale
	expectedAway *= scale

	return EloRating{
		Home:         home,
		Away:         away,
		ExpectedHome: expectedHome,
		ExpectedAway: expectedAway,
		ExpectedDraw: expectedDraw,
		Delta:        math.Abs(home - away),
	}
}

func (c *Config) teamRating(team *models.TeamContext, leagueSize int) float64 {
	rank := team.LeagueRank
	if rank <= 0 || rank > leagueSize {
		rank = leagueSize / 2
	}
	rating := c.EloBase + float64(leagueSize-rank)*c.EloPointsPerRank

	// Form momentum: goal-difference swing of the form window over the
	// season baseline, weighted by how much evidence the window carries.
	if team.Form != nil {
		seasonDiff := team.Season.AvgScored - team.Season.AvgConceded
		formDiff := team.Form.AvgScored - team.Form.AvgConceded
		reliability := math.Min(1.0, float64(team.GamesPlayed)/c.ReliabilityGames)
		rating += (formDiff - seasonDiff) * 50.0 * reliability
	}

	return rating
}

// BlendWithElo nudges the lambda pair toward the goal share the Elo
// expectations imply, preserving the total expected goals. The blend factor
// is deliberately small; Elo corrects rank-order errors, it does not replace
// the scoring model.
func (c *Config) BlendWithElo(l Lambdas, elo EloRating) Lambdas {
	winMass := elo.ExpectedHome + elo.ExpectedAway
	if winMass <= 0 {
		return c.ClampLambdas(l)
	}

	total := l.Home + l.Away
	eloShareHome := elo.ExpectedHome / winMass

	blended := Lambdas{
		Home: (1-c.EloBlendFactor)*l.Home + c.EloBlendFactor*total*eloShareHome,
		Away: (1-c.EloBlendFactor)*l.Away + c.EloBlendFactor*total*(1-eloShareHome),
	}
	return c.ClampLambdas(blended)
}

// BayesianUpdate refines the lambda split with a convex combination of the
// Poisson-implied home goal share (the prior) and the form signal (the
// evidence). The evidence weight grows with sample size but is capped so the
// prior always retains at least 60% of the mass.
func (c *Config) BayesianUpdate(match *models.MatchContext, l Lambdas) Lambdas {
	total := l.Home + l.Away
	if total <= 0 {
		return c.ClampLambdas(l)
	}
	priorShare := l.Home / total

	formSignal, ok := formGoalShare(match)
	if !ok {
		return c.ClampLambdas(l)
	}

	games := math.Min(float64(match.Home.GamesPlayed), float64(match.Away.GamesPlayed))
	evidence := math.Min(1.0, games/c.ReliabilityGames) * c.MaxEvidenceWeight

	posteriorShare := (1-evidence)*priorShare + evidence*formSignal

	return c.ClampLambdas(Lambdas{
		Home: total * posteriorShare,
		Away: total * (1 - posteriorShare),
	})
}

// formGoalShare estimates the home side's share of expected goals from the
// two form windows alone. Absent form data there is no evidence to apply.
func formGoalShare(match *models.MatchContext) (float64, bool) {
	if match.Home.Form == nil || match.Away.Form == nil {
		return 0, false
	}
	homeSignal := match.Home.Form.AvgScored + match.Away.Form.AvgConceded
	awaySignal := match.Away.Form.AvgScored + match.Home.Form.AvgConceded
	mass := homeSignal + awaySignal
	if mass <= 0 {
		return 0, false
	}
	return homeSignal / mass, true
}
