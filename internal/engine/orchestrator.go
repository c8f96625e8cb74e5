package engine

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/models"
)

// Engine composes the full per-fixture pipeline. The modeling functions it
// calls are pure; the Engine itself only adds configuration and structured
// logging around them, so per-fixture processing can run on any number of
// goroutines without locking.
type Engine struct {
	cfg       Config
	whitelist map[models.Market]bool
	log       *logrus.Logger
}

// NewEngine creates an engine with the given config. A nil whitelist prices
// every supported market.
func NewEngine(cfg Config, whitelist []models.Market, log *logrus.Logger) *Engine {
	cfg.ApplyDefaults()
	if whitelist == nil {
		whitelist = models.AllMarkets
	}
	wl := make(map[models.Market]bool, len(whitelist))
	for _, m := range whitelist {
		wl[m] = true
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{cfg: cfg, whitelist: wl, log: log}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// MatchResult is everything one engine run produces for a fixture.
type MatchResult struct {
	FixtureID  int64                      `json:"fixture_id"`
	Lambdas    Lambdas                    `json:"lambdas"`
	Confidence float64                    `json:"confidence"`
	Analytical models.MarketProbabilities `json:"analytical"`
	Calibrated models.MarketProbabilities `json:"calibrated"`
	Simulation SimulationResult           `json:"simulation"`
	Candidates []models.EvaluatedMarket   `json:"candidates"`
	Prediction *models.MatchPrediction    `json:"prediction,omitempty"` // nil: no qualifying bet
}

// marketOdds is the best available price for one market across bookmakers.
type marketOdds struct {
	odds  float64
	books int
}

// ProcessMatch runs the whole pipeline for one fixture and selects its single
// best displayable bet. A nil Prediction is a valid, expected outcome.
func (e *Engine) ProcessMatch(match models.MatchContext, odds []models.OddsEntry) MatchResult {
	match.Normalize()

	// Strength model, then the successive lambda refinements. Each stage
	// re-clamps because blending can leave the valid range.
	sf := e.cfg.ComputeStrengthFactors(&match)
	lambdas := e.cfg.ComputeLambdas(&match, sf)
	elo := e.cfg.ComputeEloRating(&match)
	lambdas = e.cfg.BlendWithElo(lambdas, elo)
	lambdas = e.cfg.AdjustForFatigueAndInjuries(&match, lambdas)
	lambdas = e.cfg.BayesianUpdate(&match, lambdas)

	matrix := NewScoreMatrix(lambdas, e.cfg.MaxGoals)
	analytical := e.cfg.DeriveMarkets(lambdas, matrix)
	simulation := e.cfg.Simulate(match.FixtureID, lambdas)
	calibrated := e.cfg.BlendProbabilities(analytical, simulation.Probabilities)

	confidence := e.confidenceScore(&match, simulation.Volatility)

	priced := bestOddsByMarket(odds)
	candidates := make([]models.EvaluatedMarket, 0, len(priced))

	for _, market := range models.AllMarkets {
		if !e.whitelist[market] {
			continue
		}
		price, ok := priced[market]
		if !ok {
			continue
		}

		candidate, valid := e.cfg.EvaluateMarket(match.FixtureID, match.LeagueID, market,
			calibrated[market], price.odds, confidence, price.books)
		if !valid {
			continue
		}

		interval := simulation.Intervals[market]
		candidate.SimWinRate = simulation.Probabilities[market]
		candidate.SimInterval = interval
		candidate.Volatility = simulation.Volatility
		candidate.CLV = ProjectCLV(candidate.Probability, candidate.Odds, candidate.Edge, price.books)
		candidate.Risk = e.cfg.AssessRisk(RiskInput{
			Odds:           candidate.Odds,
			EVAdjusted:     candidate.EVAdjusted,
			IntervalWidth:  interval.Width(),
			Volatility:     simulation.Volatility,
			BookmakerCount: price.books,
		})
		candidate.EdgeScore = ComposeEdgeScore(ScoreInput{
			EV:             candidate.EV,
			Edge:           candidate.Edge,
			CLVScore:       candidate.CLV.Score,
			Volatility:     simulation.Volatility,
			BookmakerCount: price.books,
			Confidence:     confidence,
		})

		advice := e.cfg.ComputeKellyStake(candidate.Probability, candidate.Odds)
		candidate.StakeFraction = advice.StakeFraction

		candidates = append(candidates, candidate)
	}

	result := MatchResult{
		FixtureID:  match.FixtureID,
		Lambdas:    lambdas,
		Confidence: confidence,
		Analytical: analytical,
		Calibrated: calibrated,
		Simulation: simulation,
		Candidates: candidates,
	}

	if pick, ok := e.selectBest(candidates); ok {
		result.Prediction = &models.MatchPrediction{
			FixtureID:   match.FixtureID,
			LeagueID:    match.LeagueID,
			HomeTeam:    match.Home.Name,
			AwayTeam:    match.Away.Name,
			KickoffUTC:  match.KickoffUTC,
			LambdaHome:  lambdas.Home,
			LambdaAway:  lambdas.Away,
			Confidence:  confidence,
			Selection:   pick,
			GeneratedAt: time.Now().UTC(),
		}
	}

	e.log.WithFields(logrus.Fields{
		"fixture_id":  match.FixtureID,
		"lambda_home": lambdas.Home,
		"lambda_away": lambdas.Away,
		"candidates":  len(candidates),
		"selected":    result.Prediction != nil,
	}).Debug("Match processed")

	return result
}

// selectBest applies the single-winner-per-match rule: among candidates that
// clear the display-odds floor and were not risk-rejected, keep the highest
// edge score. Market order breaks exact ties deterministically.
func (e *Engine) selectBest(candidates []models.EvaluatedMarket) (models.EvaluatedMarket, bool) {
	var best models.EvaluatedMarket
	found := false
	for _, candidate := range candidates {
		if candidate.Odds < e.cfg.DisplayOddsFloor {
			continue
		}
		if candidate.Risk.Rejected() {
			continue
		}
		if !found || candidate.EdgeScore > best.EdgeScore {
			best = candidate
			found = true
		}
	}
	return best, found
}

// confidenceScore combines sample reliability with simulation stability,
// floored at the documented default confidence.
func (e *Engine) confidenceScore(match *models.MatchContext, volatility float64) float64 {
	games := math.Min(float64(match.Home.GamesPlayed), float64(match.Away.GamesPlayed))
	reliability := math.Min(1.0, games/e.cfg.ReliabilityGames)
	score := 40.0 + 30.0*reliability + 30.0*(1.0-volatility/100.0)
	return clamp(score, models.DefaultConfidence, 100)
}

// bestOddsByMarket keeps the highest price per whitelisted market and counts
// distinct bookmakers quoting it.
func bestOddsByMarket(entries []models.OddsEntry) map[models.Market]marketOdds {
	out := make(map[models.Market]marketOdds)
	seen := make(map[models.Market]map[string]bool)

	for _, entry := range entries {
		market, ok := models.MatchOddsEntry(entry)
		if !ok || entry.Odds <= 1.0 {
			continue
		}
		current := out[market]
		if entry.Odds > current.odds {
			current.odds = entry.Odds
		}
		if seen[market] == nil {
			seen[market] = make(map[string]bool)
		}
		seen[market][entry.BookmakerID] = true
		current.books = len(seen[market])
		out[market] = current
	}
	return out
}
