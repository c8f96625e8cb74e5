package acca

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/models"
)

// BuildConfig bounds the pools and the combination search.
type BuildConfig struct {
	SafeOddsMin      float64 `mapstructure:"safe_odds_min"`
	SafeOddsMax      float64 `mapstructure:"safe_odds_max"`
	SafeMinEdgeScore float64 `mapstructure:"safe_min_edge_score"`
	SafePoolCap      int     `mapstructure:"safe_pool_cap"`
	FreezeOddsMin    float64 `mapstructure:"freeze_odds_min"`
	FreezeOddsMax    float64 `mapstructure:"freeze_odds_max"`
	FreezePoolCap    int     `mapstructure:"freeze_pool_cap"`
	MaxPerLeague     int     `mapstructure:"max_per_league"`
	FreezePerSubset  int     `mapstructure:"freeze_per_subset"`
}

// DefaultBuildConfig returns the production pool bounds.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		SafeOddsMin:      1.20,
		SafeOddsMax:      2.00,
		SafeMinEdgeScore: 55,
		SafePoolCap:      18, // C(n,4) growth makes larger pools a hot-path hazard
		FreezeOddsMin:    3.00,
		FreezeOddsMax:    22.50,
		FreezePoolCap:    15,
		MaxPerLeague:     2,
		FreezePerSubset:  3,
	}
}

// Builder assembles accumulators from candidate leg pools.
type Builder struct {
	cfg BuildConfig
	log *logrus.Logger
}

// NewBuilder creates a builder. Zero-valued config fields get defaults.
func NewBuilder(cfg BuildConfig, log *logrus.Logger) *Builder {
	def := DefaultBuildConfig()
	if cfg.SafeOddsMin <= 0 {
		cfg.SafeOddsMin = def.SafeOddsMin
	}
	if cfg.SafeOddsMax <= 0 {
		cfg.SafeOddsMax = def.SafeOddsMax
	}
	if cfg.SafeMinEdgeScore <= 0 {
		cfg.SafeMinEdgeScore = def.SafeMinEdgeScore
	}
	if cfg.SafePoolCap <= 0 {
		cfg.SafePoolCap = def.SafePoolCap
	}
	if cfg.FreezeOddsMin <= 0 {
		cfg.FreezeOddsMin = def.FreezeOddsMin
	}
	if cfg.FreezeOddsMax <= 0 {
		cfg.FreezeOddsMax = def.FreezeOddsMax
	}
	if cfg.FreezePoolCap <= 0 {
		cfg.FreezePoolCap = def.FreezePoolCap
	}
	if cfg.MaxPerLeague <= 0 {
		cfg.MaxPerLeague = def.MaxPerLeague
	}
	if cfg.FreezePerSubset <= 0 {
		cfg.FreezePerSubset = def.FreezePerSubset
	}
	if log == nil {
		log = logrus.New()
	}
	return &Builder{cfg: cfg, log: log}
}

// freezeRankKey favors high-odds longshots: probability scaled up by a
// fraction of the odds.
func freezeRankKey(leg models.AccaLeg) float64 {
	return leg.Probability * (1 + leg.Odds/20.0)
}

// SafePool filters and ranks safe-leg candidates: WIN-type markets inside the
// banker odds band, above the edge-score floor, one leg per fixture (the
// higher win probability wins), at most MaxPerLeague per league, ordered by
// win probability descending and capped.
func (b *Builder) SafePool(candidates []models.AccaLeg) []models.AccaLeg {
	byFixture := make(map[int64]models.AccaLeg)
	order := make([]int64, 0, len(candidates))
	for _, leg := range candidates {
		if !leg.Market.IsWinType() {
			continue
		}
		if leg.Odds < b.cfg.SafeOddsMin || leg.Odds > b.cfg.SafeOddsMax {
			continue
		}
		if leg.EdgeScore < b.cfg.SafeMinEdgeScore {
			continue
		}
		leg.Kind = models.LegSafe
		leg.Status = models.LegPending
		existing, seen := byFixture[leg.FixtureID]
		switch {
		case !seen:
			order = append(order, leg.FixtureID)
			byFixture[leg.FixtureID] = leg
		case leg.Probability > existing.Probability:
			byFixture[leg.FixtureID] = leg
		}
	}

	eligible := make([]models.AccaLeg, 0, len(order))
	for _, fixtureID := range order {
		eligible = append(eligible, byFixture[fixtureID])
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Probability != eligible[j].Probability {
			return eligible[i].Probability > eligible[j].Probability
		}
		return eligible[i].FixtureID < eligible[j].FixtureID
	})

	perLeague := make(map[string]int)
	pool := make([]models.AccaLeg, 0, b.cfg.SafePoolCap)
	for _, leg := range eligible {
		if perLeague[leg.LeagueID] >= b.cfg.MaxPerLeague {
			continue
		}
		perLeague[leg.LeagueID]++
		pool = append(pool, leg)
		if len(pool) >= b.cfg.SafePoolCap {
			break
		}
	}
	return pool
}

// FreezePool filters and ranks freeze-leg candidates: WIN-type longshots
// inside the freeze odds band, one per fixture (the higher rank key wins),
// ordered by rank key descending and capped.
func (b *Builder) FreezePool(candidates []models.AccaLeg) []models.AccaLeg {
	byFixture := make(map[int64]models.AccaLeg)
	order := make([]int64, 0, len(candidates))
	for _, leg := range candidates {
		if !leg.Market.IsWinType() {
			continue
		}
		if leg.Odds < b.cfg.FreezeOddsMin || leg.Odds > b.cfg.FreezeOddsMax {
			continue
		}
		leg.Kind = models.LegFreeze
		leg.Status = models.LegPending
		existing, seen := byFixture[leg.FixtureID]
		if !seen {
			order = append(order, leg.FixtureID)
			byFixture[leg.FixtureID] = leg
		} else if freezeRankKey(leg) > freezeRankKey(existing) {
			byFixture[leg.FixtureID] = leg
		}
	}

	pool := make([]models.AccaLeg, 0, len(order))
	for _, fixtureID := range order {
		pool = append(pool, byFixture[fixtureID])
	}
	sort.SliceStable(pool, func(i, j int) bool {
		ki, kj := freezeRankKey(pool[i]), freezeRankKey(pool[j])
		if ki != kj {
			return ki > kj
		}
		return pool[i].FixtureID < pool[j].FixtureID
	})
	if len(pool) > b.cfg.FreezePoolCap {
		pool = pool[:b.cfg.FreezePoolCap]
	}
	return pool
}

// BuildAccas assembles up to count ranked accumulators from the candidate
// pools at the given stake. Fewer than four safe candidates or zero freeze
// candidates yields an empty result, never an error.
func (b *Builder) BuildAccas(safeCandidates, freezeCandidates []models.AccaLeg, count int, stake decimal.Decimal) []models.AccaFreeze {
	safe := b.SafePool(safeCandidates)
	freeze := b.FreezePool(freezeCandidates)
	if len(safe) < 4 || len(freeze) == 0 || count <= 0 {
		return nil
	}

	combos := b.enumerate(safe, freeze, stake)
	sort.SliceStable(combos, func(i, j int) bool {
		if combos[i].SafeProb != combos[j].SafeProb {
			return combos[i].SafeProb > combos[j].SafeProb
		}
		return combos[i].FreezeLeg.FixtureID < combos[j].FreezeLeg.FixtureID
	})

	selected := selectDistinctFreeze(combos, count)

	b.log.WithFields(logrus.Fields{
		"safe_pool":    len(safe),
		"freeze_pool":  len(freeze),
		"combinations": len(combos),
		"selected":     len(selected),
	}).Debug("Accumulators built")

	return selected
}

// enumerate walks every 4-subset of the safe pool that respects the
// per-league cap and pairs it with up to FreezePerSubset compatible freeze
// legs. This is the combinatorial hot path; pools are pre-capped before it
// runs.
func (b *Builder) enumerate(safe, freeze []models.AccaLeg, stake decimal.Decimal) []models.AccaFreeze {
	n := len(safe)
	combos := make([]models.AccaFreeze, 0, 64)

	for i := 0; i < n-3; i++ {
		for j := i + 1; j < n-2; j++ {
			for k := j + 1; k < n-1; k++ {
				for l := k + 1; l < n; l++ {
					legs := [4]models.AccaLeg{safe[i], safe[j], safe[k], safe[l]}
					if !b.leagueCapOK(legs[:]) {
						continue
					}
					paired := 0
					for _, fl := range freeze {
						if paired >= b.cfg.FreezePerSubset {
							break
						}
						if !b.compatible(legs[:], fl) {
							continue
						}
						combos = append(combos, b.assemble(legs, fl, stake))
						paired++
					}
				}
			}
		}
	}
	return combos
}

func (b *Builder) leagueCapOK(legs []models.AccaLeg) bool {
	perLeague := make(map[string]int, len(legs))
	for _, leg := range legs {
		perLeague[leg.LeagueID]++
		if perLeague[leg.LeagueID] > b.cfg.MaxPerLeague {
			return false
		}
	}
	return true
}

// compatible rejects freeze legs sharing a fixture with any safe leg or
// breaching the league diversity cap.
func (b *Builder) compatible(safeLegs []models.AccaLeg, freeze models.AccaLeg) bool {
	leagueCount := 0
	for _, leg := range safeLegs {
		if leg.FixtureID == freeze.FixtureID {
			return false
		}
		if leg.LeagueID == freeze.LeagueID {
			leagueCount++
		}
	}
	return leagueCount < b.cfg.MaxPerLeague
}

func (b *Builder) assemble(safeLegs [4]models.AccaLeg, freeze models.AccaLeg, stake decimal.Decimal) models.AccaFreeze {
	combinedOdds := freeze.Odds
	combinedProb := freeze.Probability
	safeProb := 1.0
	weightedConf := freeze.Probability * freeze.EdgeScore
	weightSum := freeze.Probability

	for _, leg := range safeLegs {
		combinedOdds *= leg.Odds
		combinedProb *= leg.Probability
		safeProb *= leg.Probability
		weightedConf += leg.Probability * leg.EdgeScore
		weightSum += leg.Probability
	}

	confidence := 0.0
	if weightSum > 0 {
		confidence = weightedConf / weightSum
	}

	a := models.AccaFreeze{
		SafeLegs:     safeLegs,
		FreezeLeg:    freeze,
		CombinedOdds: combinedOdds,
		CombinedProb: combinedProb,
		SafeProb:     safeProb,
		Confidence:   confidence,
		Stake:        stake,
	}
	Revalue(&a)
	return a
}

// selectDistinctFreeze takes the top-ranked combinations, first preferring a
// unique freeze leg per selection, then backfilling with the next-best
// combinations when uniqueness cannot fill the request.
func selectDistinctFreeze(ranked []models.AccaFreeze, count int) []models.AccaFreeze {
	selected := make([]models.AccaFreeze, 0, count)
	usedFreeze := make(map[int64]bool)
	usedIdx := make(map[int]bool)

	for idx, combo := range ranked {
		if len(selected) >= count {
			break
		}
		if usedFreeze[combo.FreezeLeg.FixtureID] {
			continue
		}
		usedFreeze[combo.FreezeLeg.FixtureID] = true
		usedIdx[idx] = true
		selected = append(selected, combo)
	}

	for idx, combo := range ranked {
		if len(selected) >= count {
			break
		}
		if usedIdx[idx] {
			continue
		}
		selected = append(selected, combo)
	}
	return selected
}
