package acca

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-engine/internal/models"
)

func testBuilder() *Builder {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewBuilder(DefaultBuildConfig(), log)
}

func candidate(fixtureID int64, league string, market models.Market, odds, prob, edge float64) models.AccaLeg {
	return models.AccaLeg{
		FixtureID:   fixtureID,
		LeagueID:    league,
		Market:      market,
		Odds:        odds,
		Probability: prob,
		EdgeScore:   edge,
	}
}

func TestSafePoolFilters(t *testing.T) {
	b := testBuilder()

	candidates := []models.AccaLeg{
		candidate(1, "epl", models.MarketHomeWin, 1.50, 0.70, 60),
		// Not a WIN-type market.
		candidate(2, "epl", models.MarketBTTSYes, 1.60, 0.65, 70),
		// Outside the banker odds band.
		candidate(3, "epl", models.MarketAwayWin, 2.50, 0.45, 70),
		candidate(4, "epl", models.MarketHomeWin, 1.10, 0.90, 70),
		// Below the edge-score floor.
		candidate(5, "epl", models.MarketHomeWin, 1.50, 0.70, 40),
	}

	pool := b.SafePool(candidates)

	require.Len(t, pool, 1)
	assert.Equal(t, int64(1), pool[0].FixtureID)
	assert.Equal(t, models.LegSafe, pool[0].Kind)
	assert.Equal(t, models.LegPending, pool[0].Status)
}

func TestSafePoolOrdersByProbabilityAndCapsPerLeague(t *testing.T) {
	b := testBuilder()

	candidates := []models.AccaLeg{
		candidate(1, "epl", models.MarketHomeWin, 1.60, 0.65, 60),
		candidate(2, "epl", models.MarketHomeWin, 1.40, 0.75, 60),
		candidate(3, "epl", models.MarketHomeWin, 1.50, 0.70, 60),
		candidate(4, "laliga", models.MarketAwayWin, 1.55, 0.68, 60),
	}

	pool := b.SafePool(candidates)

	require.Len(t, pool, 3)
	// Highest probability first; the third EPL candidate loses to the
	// per-league cap of two.
	assert.Equal(t, int64(2), pool[0].FixtureID)
	assert.Equal(t, int64(3), pool[1].FixtureID)
	assert.Equal(t, int64(4), pool[2].FixtureID)
}

func TestSafePoolOneLegPerFixture(t *testing.T) {
	b := testBuilder()

	// Two WIN-type markets on the same match are perfectly correlated; only
	// the higher-probability one may enter the pool.
	candidates := []models.AccaLeg{
		candidate(1, "epl", models.MarketHomeWin, 1.50, 0.70, 60),
		candidate(1, "epl", models.MarketDNBHome, 1.40, 0.78, 60),
		candidate(2, "laliga", models.MarketHomeWin, 1.60, 0.66, 60),
	}

	pool := b.SafePool(candidates)

	require.Len(t, pool, 2)
	assert.Equal(t, int64(1), pool[0].FixtureID)
	assert.Equal(t, models.MarketDNBHome, pool[0].Market)
	assert.Equal(t, int64(2), pool[1].FixtureID)
}

func TestBuildAccasNeverDoubleLegsAFixture(t *testing.T) {
	b := testBuilder()
	stake := decimal.NewFromInt(10)

	safe := []models.AccaLeg{
		candidate(1, "epl", models.MarketHomeWin, 1.50, 0.70, 60),
		candidate(1, "epl", models.MarketDNBHome, 1.40, 0.78, 60),
		candidate(2, "laliga", models.MarketHomeWin, 1.60, 0.66, 60),
		candidate(3, "seriea", models.MarketHomeWin, 1.65, 0.64, 60),
		candidate(4, "bundesliga", models.MarketAwayWin, 1.70, 0.62, 60),
	}
	freeze := []models.AccaLeg{
		candidate(9, "championship", models.MarketAwayWin, 5.00, 0.22, 50),
	}

	accas := b.BuildAccas(safe, freeze, 3, stake)

	require.NotEmpty(t, accas)
	for _, a := range accas {
		seen := map[int64]bool{}
		for _, l := range a.Legs() {
			assert.False(t, seen[l.FixtureID], "fixture %d appears twice", l.FixtureID)
			seen[l.FixtureID] = true
		}
	}
}

func TestSafePoolRespectsCap(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.SafePoolCap = 2
	cfg.MaxPerLeague = 10
	b := NewBuilder(cfg, nil)

	candidates := make([]models.AccaLeg, 0, 5)
	for i := int64(1); i <= 5; i++ {
		candidates = append(candidates, candidate(i, "epl", models.MarketHomeWin, 1.50, 0.70, 60))
	}

	assert.Len(t, b.SafePool(candidates), 2)
}

func TestFreezePoolDedupesPerFixture(t *testing.T) {
	b := testBuilder()

	candidates := []models.AccaLeg{
		// Same fixture, two freeze prices. Rank keys:
		// 0.22*(1+5/20)=0.275 versus 0.15*(1+8/20)=0.21, so the 5.0
		// quote wins.
		candidate(10, "epl", models.MarketAwayWin, 5.00, 0.22, 50),
		candidate(10, "epl", models.MarketHomeWin, 8.00, 0.15, 50),
		candidate(11, "laliga", models.MarketAwayWin, 4.00, 0.20, 50),
	}

	pool := b.FreezePool(candidates)

	require.Len(t, pool, 2)
	assert.Equal(t, int64(10), pool[0].FixtureID)
	assert.Equal(t, 5.00, pool[0].Odds)
	assert.Equal(t, models.LegFreeze, pool[0].Kind)
	assert.Equal(t, int64(11), pool[1].FixtureID)
}

func TestFreezePoolFiltersOddsBand(t *testing.T) {
	b := testBuilder()

	candidates := []models.AccaLeg{
		// Too short and too long for the freeze band.
		candidate(10, "epl", models.MarketAwayWin, 2.50, 0.35, 50),
		candidate(11, "epl", models.MarketAwayWin, 30.00, 0.03, 50),
		candidate(12, "epl", models.MarketAwayWin, 6.00, 0.18, 50),
	}

	pool := b.FreezePool(candidates)

	require.Len(t, pool, 1)
	assert.Equal(t, int64(12), pool[0].FixtureID)
}

func safeLegs() []models.AccaLeg {
	return []models.AccaLeg{
		candidate(1, "epl", models.MarketHomeWin, 1.50, 0.75, 60),
		candidate(2, "laliga", models.MarketHomeWin, 1.55, 0.72, 60),
		candidate(3, "bundesliga", models.MarketAwayWin, 1.60, 0.70, 60),
		candidate(4, "seriea", models.MarketHomeWin, 1.65, 0.68, 60),
		candidate(5, "ligue1", models.MarketHomeWin, 1.70, 0.66, 60),
	}
}

func TestBuildAccasNeedsFourSafeAndOneFreeze(t *testing.T) {
	b := testBuilder()
	stake := decimal.NewFromInt(10)
	freeze := []models.AccaLeg{candidate(10, "epl", models.MarketAwayWin, 5.00, 0.22, 50)}

	assert.Nil(t, b.BuildAccas(safeLegs()[:3], freeze, 3, stake))
	assert.Nil(t, b.BuildAccas(safeLegs(), nil, 3, stake))
	assert.Nil(t, b.BuildAccas(safeLegs(), freeze, 0, stake))
}

func TestBuildAccasAssemblesFourPlusOne(t *testing.T) {
	b := testBuilder()
	stake := decimal.NewFromInt(10)
	freeze := []models.AccaLeg{
		candidate(10, "epl", models.MarketAwayWin, 5.00, 0.22, 50),
		candidate(11, "laliga", models.MarketAwayWin, 8.00, 0.15, 50),
	}

	accas := b.BuildAccas(safeLegs(), freeze, 2, stake)

	require.Len(t, accas, 2)

	// Both selections carry the highest-probability safe subset; the
	// freeze legs are distinct by construction.
	first := accas[0]
	assert.Equal(t, int64(10), first.FreezeLeg.FixtureID)
	assert.Equal(t, int64(11), accas[1].FreezeLeg.FixtureID)
	assert.InDelta(t, 0.75*0.72*0.70*0.68, first.SafeProb, 1e-9)
	assert.InDelta(t, 1.50*1.55*1.60*1.65*5.00, first.CombinedOdds, 1e-9)
	assert.InDelta(t, first.SafeProb*0.22, first.CombinedProb, 1e-9)
	assert.True(t, first.Stake.Equal(stake))
	assert.NotEqual(t, models.FreezeRecommendation(""), first.Advice)

	for _, a := range accas {
		for _, l := range a.SafeLegs {
			assert.Equal(t, models.LegSafe, l.Kind)
		}
		assert.Equal(t, models.LegFreeze, a.FreezeLeg.Kind)
	}
}

func TestBuildAccasFreezeCannotShareFixtureWithSafeLeg(t *testing.T) {
	b := testBuilder()
	stake := decimal.NewFromInt(10)
	freeze := []models.AccaLeg{
		// Collides with safe fixture 1 in every subset containing it.
		candidate(1, "epl", models.MarketAwayWin, 5.00, 0.22, 50),
		candidate(10, "championship", models.MarketAwayWin, 4.00, 0.20, 50),
	}

	accas := b.BuildAccas(safeLegs()[:4], freeze, 3, stake)

	require.Len(t, accas, 1)
	assert.Equal(t, int64(10), accas[0].FreezeLeg.FixtureID)
}

func TestBuildAccasHonorsLeagueCapAcrossFreeze(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.MaxPerLeague = 1
	b := NewBuilder(cfg, nil)
	stake := decimal.NewFromInt(10)

	// Four safe legs across four leagues; a freeze leg in one of those
	// leagues breaches the diversity cap of one.
	freeze := []models.AccaLeg{
		candidate(10, "epl", models.MarketAwayWin, 5.00, 0.22, 50),
		candidate(11, "eredivisie", models.MarketAwayWin, 4.00, 0.20, 50),
	}

	accas := b.BuildAccas(safeLegs()[:4], freeze, 3, stake)

	require.Len(t, accas, 1)
	assert.Equal(t, int64(11), accas[0].FreezeLeg.FixtureID)
}

func TestBuildAccasRanksBySafeProbability(t *testing.T) {
	b := testBuilder()
	stake := decimal.NewFromInt(10)
	freeze := []models.AccaLeg{
		candidate(10, "championship", models.MarketAwayWin, 5.00, 0.22, 50),
		candidate(11, "eredivisie", models.MarketAwayWin, 4.50, 0.21, 50),
		candidate(12, "mls", models.MarketAwayWin, 4.00, 0.20, 50),
	}

	accas := b.BuildAccas(safeLegs(), freeze, 3, stake)

	require.Len(t, accas, 3)
	for i := 1; i < len(accas); i++ {
		assert.GreaterOrEqual(t, accas[i-1].SafeProb, accas[i].SafeProb)
	}
	// Unique freeze legs are preferred before any backfill.
	seen := map[int64]bool{}
	for _, a := range accas {
		assert.False(t, seen[a.FreezeLeg.FixtureID])
		seen[a.FreezeLeg.FixtureID] = true
	}
}
