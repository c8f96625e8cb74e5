// Package service orchestrates the daily pipeline: fetch the slate, run every
// fixture through the engine, filter the portfolio, publish picks and build
// accumulators. The modeling core stays pure; all I/O happens here.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/acca"
	"github.com/yourusername/edge-engine/internal/config"
	"github.com/yourusername/edge-engine/internal/datasource"
	"github.com/yourusername/edge-engine/internal/engine"
	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
	"github.com/yourusername/edge-engine/internal/repository"
)

// SlateService runs the daily slate workflow
type SlateService struct {
	engine      *engine.Engine
	stats       datasource.StatsProvider
	odds        datasource.OddsProvider
	predictions repository.PredictionRepository
	accaBuilder *acca.Builder
	cfg         config.SlateConfig
	logger      *logrus.Logger
}

// SlateReport summarizes one slate run.
type SlateReport struct {
	Date       time.Time                `json:"date"`
	Fixtures   int                      `json:"fixtures"`
	Processed  int                      `json:"processed"`
	Errors     int                      `json:"errors"`
	Picks      []models.MatchPrediction `json:"picks"`
	Portfolio  engine.PortfolioReport   `json:"portfolio"`
	Accas      []models.AccaFreeze      `json:"accas"`
	Published  int                      `json:"published"`
	Duplicates int                      `json:"duplicates"`
}

// fixtureOutcome is one worker's result for a fixture.
type fixtureOutcome struct {
	result engine.MatchResult
	match  models.MatchContext
	err    error
}

// NewSlateService creates a new slate service
func NewSlateService(
	eng *engine.Engine,
	stats datasource.StatsProvider,
	odds datasource.OddsProvider,
	predictions repository.PredictionRepository,
	accaBuilder *acca.Builder,
	cfg config.SlateConfig,
	logger *logrus.Logger,
) *SlateService {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &SlateService{
		engine:      eng,
		stats:       stats,
		odds:        odds,
		predictions: predictions,
		accaBuilder: accaBuilder,
		cfg:         cfg,
		logger:      logger,
	}
}

// ProcessSlate runs the full pipeline for every fixture on the given UTC date.
// Individual fixture failures are logged and counted, never fatal; only a
// failure to list the slate itself aborts the run.
func (s *SlateService) ProcessSlate(ctx context.Context, date time.Time) (*SlateReport, error) {
	start := time.Now()

	fixtures, err := s.stats.FixturesForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}

	report := &SlateReport{
		Date:     date.UTC().Truncate(24 * time.Hour),
		Fixtures: len(fixtures),
	}

	s.logger.WithFields(logrus.Fields{
		"date":     report.Date.Format("2006-01-02"),
		"fixtures": len(fixtures),
		"workers":  s.cfg.Workers,
	}).Info("Starting slate run")

	outcomes := s.runFixtures(ctx, fixtures)

	var (
		picks         []models.MatchPrediction
		legCandidates []models.AccaLeg
	)
	for _, outcome := range outcomes {
		if outcome.err != nil {
			report.Errors++
			s.logger.WithFields(logrus.Fields{
				"fixture_id": outcome.match.FixtureID,
				"error":      outcome.err.Error(),
			}).Warn("Fixture failed, skipping")
			continue
		}
		report.Processed++
		metrics.MatchesProcessedTotal.Inc()

		for _, candidate := range outcome.result.Candidates {
			if candidate.Risk.Rejected() {
				metrics.RiskRejectionsTotal.WithLabelValues(gateLabel(candidate.Risk.Reason)).Inc()
				continue
			}
			legCandidates = append(legCandidates, legFromCandidate(candidate, &outcome.match))
		}
		if outcome.result.Prediction != nil {
			metrics.PicksSelectedTotal.Inc()
			picks = append(picks, *outcome.result.Prediction)
		}
	}

	engCfg := s.engine.Config()
	report.Portfolio = engCfg.FilterSlate(picks, s.cfg.Bankroll)
	report.Picks = report.Portfolio.Kept

	metrics.SlatePicks.Set(float64(len(report.Picks)))
	if s.cfg.Bankroll > 0 {
		metrics.SlateExposure.Set(report.Portfolio.WorstCaseDrawdown / s.cfg.Bankroll)
	}

	if report.Portfolio.Rejected {
		s.logger.WithField("reason", report.Portfolio.Reason).Warn("Slate rejected by portfolio filter")
	}

	if s.cfg.PublishPicks && !report.Portfolio.Rejected {
		published, duplicates := s.publishPicks(ctx, report.Picks)
		report.Published = published
		report.Duplicates = duplicates
	}

	if s.cfg.AccaCount > 0 {
		stake := decimal.NewFromFloat(s.cfg.AccaStake)
		report.Accas = s.accaBuilder.BuildAccas(legCandidates, legCandidates, s.cfg.AccaCount, stake)
		metrics.AccasBuiltTotal.Add(float64(len(report.Accas)))
	}

	s.logger.WithFields(logrus.Fields{
		"processed": report.Processed,
		"errors":    report.Errors,
		"picks":     len(report.Picks),
		"published": report.Published,
		"accas":     len(report.Accas),
		"duration":  time.Since(start).String(),
	}).Info("Slate run complete")

	return report, nil
}

// runFixtures fans fixtures out over the worker pool and collects every
// outcome. Order of outcomes is not significant; downstream aggregation sorts
// where determinism matters.
func (s *SlateService) runFixtures(ctx context.Context, fixtures []models.MatchContext) []fixtureOutcome {
	jobs := make(chan models.MatchContext)
	results := make(chan fixtureOutcome)

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for match := range jobs {
				results <- s.runFixture(ctx, match)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, match := range fixtures {
			select {
			case jobs <- match:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]fixtureOutcome, 0, len(fixtures))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (s *SlateService) runFixture(ctx context.Context, match models.MatchContext) fixtureOutcome {
	if err := ctx.Err(); err != nil {
		return fixtureOutcome{match: match, err: err}
	}

	odds, err := s.odds.OddsForFixture(ctx, match.FixtureID)
	if err != nil {
		// Missing prices degrade to a no-candidate run rather than a failure.
		s.logger.WithFields(logrus.Fields{
			"fixture_id": match.FixtureID,
			"error":      err.Error(),
		}).Warn("Odds unavailable, running without prices")
		odds = nil
	}

	start := time.Now()
	result := s.engine.ProcessMatch(match, odds)
	metrics.SimulationDuration.Observe(time.Since(start).Seconds())

	return fixtureOutcome{result: result, match: match}
}

// publishPicks stores each kept pick. Republishing an already stored fixture
// is counted as a duplicate, not an error.
func (s *SlateService) publishPicks(ctx context.Context, picks []models.MatchPrediction) (published, duplicates int) {
	for i := range picks {
		record := recordFromPick(&picks[i])
		err := s.predictions.Publish(ctx, record)
		switch {
		case err == nil:
			published++
			metrics.PredictionsPublishedTotal.Inc()
		case errors.Is(err, models.ErrAlreadyPublished):
			duplicates++
		default:
			s.logger.WithFields(logrus.Fields{
				"fixture_id": picks[i].FixtureID,
				"error":      err.Error(),
			}).Error("Failed to publish prediction")
		}
	}
	return published, duplicates
}

func recordFromPick(pick *models.MatchPrediction) *models.ImmutablePrediction {
	return &models.ImmutablePrediction{
		FixtureID:   pick.FixtureID,
		LeagueID:    pick.LeagueID,
		Market:      pick.Selection.Market,
		Probability: pick.Selection.Probability,
		Odds:        pick.Selection.Odds,
		EVAdjusted:  pick.Selection.EVAdjusted,
		Confidence:  pick.Confidence,
		LambdaHome:  pick.LambdaHome,
		LambdaAway:  pick.LambdaAway,
	}
}

func legFromCandidate(candidate models.EvaluatedMarket, match *models.MatchContext) models.AccaLeg {
	return models.AccaLeg{
		FixtureID:   candidate.FixtureID,
		LeagueID:    candidate.LeagueID,
		Market:      candidate.Market,
		Label:       fmt.Sprintf("%s vs %s", match.Home.Name, match.Away.Name),
		Odds:        candidate.Odds,
		Probability: candidate.Probability,
		EdgeScore:   candidate.EdgeScore,
		Status:      models.LegPending,
	}
}

// gateLabel collapses a free-form risk reason into a stable metric label.
func gateLabel(reason string) string {
	switch {
	case strings.HasPrefix(reason, "confidence interval"):
		return "ci_width"
	case strings.HasPrefix(reason, "tail risk"):
		return "tail_risk"
	case strings.HasPrefix(reason, "illiquid"):
		return "illiquidity"
	case strings.HasPrefix(reason, "adjusted EV"):
		return "ev_floor"
	case strings.HasPrefix(reason, "composite risk score"):
		return "composite"
	}
	return "other"
}
