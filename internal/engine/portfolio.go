package engine

import (
	"fmt"
	"sort"

	"github.com/yourusername/edge-engine/internal/models"
)

// PortfolioReport is the day-slate filtering result.
type PortfolioReport struct {
	Kept              []models.MatchPrediction `json:"kept"`
	Dropped           []models.MatchPrediction `json:"dropped"`
	WorstCaseDrawdown float64                  `json:"worst_case_drawdown"` // bankroll units
	Diversification   float64                  `json:"diversification"`     // 0-100
	Rejected          bool                     `json:"rejected"`            // whole slate rejected
	Reason            string                   `json:"reason,omitempty"`
}

// Correlated reports whether two picks would settle on overlapping outcomes.
// The rules are deliberately asymmetric: goal-total correlation requires a
// shared league, while result-family correlation applies across all leagues.
// That asymmetry is preserved from the documented behavior; see the portfolio
// tests where it is pinned as a recorded decision.
func Correlated(a, b models.MatchPrediction) bool {
	if a.FixtureID == b.FixtureID {
		return true
	}
	aFam := a.Selection.Market.Family()
	bFam := b.Selection.Market.Family()
	if a.LeagueID == b.LeagueID && aFam == models.FamilyGoalTotal && bFam == models.FamilyGoalTotal {
		return true
	}
	if aFam == models.FamilyResult && bFam == models.FamilyResult {
		return true
	}
	return false
}

// FilterSlate greedily keeps the highest-edge-score picks while rejecting any
// later pick correlated with an already-kept one, then applies the slate-wide
// drawdown gate.
func (c *Config) FilterSlate(picks []models.MatchPrediction, bankroll float64) PortfolioReport {
	ranked := make([]models.MatchPrediction, len(picks))
	copy(ranked, picks)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Selection.EdgeScore != ranked[j].Selection.EdgeScore {
			return ranked[i].Selection.EdgeScore > ranked[j].Selection.EdgeScore
		}
		return ranked[i].FixtureID < ranked[j].FixtureID
	})

	report := PortfolioReport{}
	for _, pick := range ranked {
		conflicted := false
		for _, kept := range report.Kept {
			if Correlated(pick, kept) {
				conflicted = true
				break
			}
		}
		if conflicted {
			report.Dropped = append(report.Dropped, pick)
			continue
		}
		report.Kept = append(report.Kept, pick)
	}

	// Worst case: every kept stake loses.
	stakeSum := 0.0
	leagues := make(map[string]bool)
	families := make(map[models.MarketFamily]bool)
	for _, pick := range report.Kept {
		stakeSum += pick.Selection.StakeFraction
		leagues[pick.LeagueID] = true
		families[pick.Selection.Market.Family()] = true
	}
	report.WorstCaseDrawdown = stakeSum * bankroll
	report.Diversification = diversificationScore(len(report.Kept), len(leagues), len(families))

	if bankroll > 0 && report.WorstCaseDrawdown > c.MaxSlateDrawdown*bankroll {
		report.Rejected = true
		report.Reason = fmt.Sprintf("worst-case drawdown %.2f exceeds %.0f%% of bankroll",
			report.WorstCaseDrawdown, c.MaxSlateDrawdown*100)
		report.Dropped = append(report.Dropped, report.Kept...)
		report.Kept = nil
	}

	return report
}

// diversificationScore rewards spreading the slate across leagues and market
// families, on a 0-100 scale.
func diversificationScore(picks, leagues, families int) float64 {
	if picks == 0 {
		return 0
	}
	leagueSpread := float64(leagues) / float64(picks)
	familySpread := float64(families) / 3.0
	if familySpread > 1 {
		familySpread = 1
	}
	return clamp((0.6*leagueSpread+0.4*familySpread)*100, 0, 100)
}
