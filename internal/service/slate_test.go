package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-engine/internal/acca"
	"github.com/yourusername/edge-engine/internal/config"
	"github.com/yourusername/edge-engine/internal/engine"
	"github.com/yourusername/edge-engine/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type stubStats struct {
	fixtures []models.MatchContext
	err      error
}

func (s *stubStats) FixturesForDate(_ context.Context, _ time.Time) ([]models.MatchContext, error) {
	return s.fixtures, s.err
}

func (s *stubStats) MatchContext(_ context.Context, fixtureID int64) (*models.MatchContext, error) {
	for i := range s.fixtures {
		if s.fixtures[i].FixtureID == fixtureID {
			return &s.fixtures[i], nil
		}
	}
	return nil, models.ErrNotFound
}

type stubOdds struct {
	byFixture map[int64][]models.OddsEntry
	err       error
}

func (s *stubOdds) OddsForFixture(_ context.Context, fixtureID int64) ([]models.OddsEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byFixture[fixtureID], nil
}

// memoryRepo is an in-memory PredictionRepository for service tests.
type memoryRepo struct {
	mu      sync.Mutex
	records map[int64]*models.ImmutablePrediction
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[int64]*models.ImmutablePrediction)}
}

func (r *memoryRepo) Publish(_ context.Context, p *models.ImmutablePrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[p.FixtureID]; exists {
		return models.ErrAlreadyPublished
	}
	stored := *p
	stored.PublishedAt = time.Now().UTC()
	r.records[p.FixtureID] = &stored
	return nil
}

func (r *memoryRepo) GetByFixtureID(_ context.Context, fixtureID int64) (*models.ImmutablePrediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[fixtureID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *memoryRepo) Freeze(_ context.Context, fixtureID int64, result models.SettlementResult, settledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[fixtureID]
	if !ok {
		return models.ErrNotFound
	}
	if record.Result != nil {
		return models.ErrAlreadyFrozen
	}
	record.Result = &result
	record.SettledAt = &settledAt
	return nil
}

func (r *memoryRepo) Exists(_ context.Context, fixtureID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[fixtureID]
	return ok, nil
}

func (r *memoryRepo) GetByDateRange(_ context.Context, start, end time.Time) ([]*models.ImmutablePrediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ImmutablePrediction, 0, len(r.records))
	for _, record := range r.records {
		if !record.PublishedAt.Before(start) && record.PublishedAt.Before(end) {
			copied := *record
			out = append(out, &copied)
		}
	}
	return out, nil
}

func slateMatch(fixtureID int64) models.MatchContext {
	m := models.MatchContext{
		FixtureID:  fixtureID,
		LeagueID:   "EPL",
		LeagueSize: 20,
		Home: models.TeamContext{
			ID:          fixtureID * 10,
			Name:        "Home FC",
			Season:      models.TeamStats{AvgScored: 1.8, AvgConceded: 1.0},
			LeagueRank:  4,
			GamesPlayed: 20,
		},
		Away: models.TeamContext{
			ID:          fixtureID*10 + 1,
			Name:        "Away FC",
			Season:      models.TeamStats{AvgScored: 1.2, AvgConceded: 1.4},
			LeagueRank:  12,
			GamesPlayed: 20,
		},
	}
	m.Normalize()
	return m
}

func slateOdds() []models.OddsEntry {
	entries := []models.OddsEntry{}
	for _, book := range []string{"b1", "b2", "b3", "b4"} {
		entries = append(entries,
			models.OddsEntry{BookmakerID: book, BookmakerName: book, Label: "Home", Odds: 2.40},
			models.OddsEntry{BookmakerID: book, BookmakerName: book, Label: "Draw", Odds: 3.40},
			models.OddsEntry{BookmakerID: book, BookmakerName: book, Label: "Away", Odds: 3.10},
			models.OddsEntry{BookmakerID: book, BookmakerName: book, Label: "Over", Threshold: "2.5", Odds: 2.05},
			models.OddsEntry{BookmakerID: book, BookmakerName: book, Label: "Under", Threshold: "2.5", Odds: 1.85},
		)
	}
	return entries
}

func newTestService(stats *stubStats, odds *stubOdds, repo *memoryRepo, cfg config.SlateConfig) *SlateService {
	log := quietLogger()
	eng := engine.NewEngine(engine.DefaultConfig(), nil, log)
	builder := acca.NewBuilder(acca.DefaultBuildConfig(), log)
	return NewSlateService(eng, stats, odds, repo, builder, cfg, log)
}

func TestProcessSlatePublishesPicks(t *testing.T) {
	fixtures := []models.MatchContext{slateMatch(1), slateMatch(2), slateMatch(3)}
	stats := &stubStats{fixtures: fixtures}
	odds := &stubOdds{byFixture: map[int64][]models.OddsEntry{
		1: slateOdds(), 2: slateOdds(), 3: slateOdds(),
	}}
	repo := newMemoryRepo()
	svc := newTestService(stats, odds, repo, config.SlateConfig{
		Bankroll:     10000,
		Workers:      2,
		PublishPicks: true,
	})

	report, err := svc.ProcessSlate(context.Background(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Fixtures)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 0, report.Errors)
	require.NotEmpty(t, report.Picks)
	assert.Equal(t, len(report.Picks), report.Published)
	assert.Equal(t, 0, report.Duplicates)

	for _, pick := range report.Picks {
		exists, err := repo.Exists(context.Background(), pick.FixtureID)
		require.NoError(t, err)
		assert.True(t, exists)
	}
}

func TestProcessSlateRepublishCountsDuplicates(t *testing.T) {
	fixtures := []models.MatchContext{slateMatch(1)}
	stats := &stubStats{fixtures: fixtures}
	odds := &stubOdds{byFixture: map[int64][]models.OddsEntry{1: slateOdds()}}
	repo := newMemoryRepo()
	svc := newTestService(stats, odds, repo, config.SlateConfig{
		Bankroll:     10000,
		Workers:      2,
		PublishPicks: true,
	})

	first, err := svc.ProcessSlate(context.Background(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotZero(t, first.Published)

	second, err := svc.ProcessSlate(context.Background(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 0, second.Published)
	assert.Equal(t, first.Published, second.Duplicates)
}

func TestProcessSlateOddsFailureDegrades(t *testing.T) {
	fixtures := []models.MatchContext{slateMatch(1)}
	stats := &stubStats{fixtures: fixtures}
	odds := &stubOdds{err: errors.New("provider down")}
	repo := newMemoryRepo()
	svc := newTestService(stats, odds, repo, config.SlateConfig{
		Bankroll: 10000,
		Workers:  2,
	})

	report, err := svc.ProcessSlate(context.Background(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// The fixture still runs; it just yields no priced candidates.
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Errors)
	assert.Empty(t, report.Picks)
}

func TestProcessSlateStatsFailureAborts(t *testing.T) {
	stats := &stubStats{err: errors.New("provider down")}
	svc := newTestService(stats, &stubOdds{}, newMemoryRepo(), config.SlateConfig{
		Bankroll: 10000,
		Workers:  2,
	})

	_, err := svc.ProcessSlate(context.Background(), time.Now().UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list fixtures")
}

func TestProcessSlateNoPublishWhenDisabled(t *testing.T) {
	fixtures := []models.MatchContext{slateMatch(1)}
	stats := &stubStats{fixtures: fixtures}
	odds := &stubOdds{byFixture: map[int64][]models.OddsEntry{1: slateOdds()}}
	repo := newMemoryRepo()
	svc := newTestService(stats, odds, repo, config.SlateConfig{
		Bankroll:     10000,
		Workers:      2,
		PublishPicks: false,
	})

	report, err := svc.ProcessSlate(context.Background(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 0, report.Published)
	exists, err := repo.Exists(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGateLabel(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{"confidence interval too wide: 0.15", "ci_width"},
		{"tail risk: odds 5.20 with volatility 82", "tail_risk"},
		{"illiquid: 2 bookmakers", "illiquidity"},
		{"adjusted EV 0.010 below floor", "ev_floor"},
		{"composite risk score 41 below threshold", "composite"},
		{"something unexpected", "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, gateLabel(tt.reason), tt.reason)
	}
}

func TestLegFromCandidate(t *testing.T) {
	match := slateMatch(7)
	candidate := models.EvaluatedMarket{
		FixtureID:   7,
		LeagueID:    "EPL",
		Market:      models.MarketHomeWin,
		Odds:        1.80,
		Probability: 0.62,
		EdgeScore:   64,
	}

	leg := legFromCandidate(candidate, &match)

	assert.Equal(t, int64(7), leg.FixtureID)
	assert.Equal(t, "Home FC vs Away FC", leg.Label)
	assert.Equal(t, models.LegPending, leg.Status)
	assert.Equal(t, 64.0, leg.EdgeScore)
}
