package engine

import (
	"sort"

	"github.com/yourusername/edge-engine/internal/models"
)

// ScoreMatrix is the bounded outer product of the two sides' Poisson goal
// distributions. Cell [i][j] holds P(home scores i AND away scores j).
type ScoreMatrix struct {
	MaxGoals int
	HomeDist []float64
	AwayDist []float64
	Cells    [][]float64
}

// Scoreline is one correct-score outcome with its probability.
type Scoreline struct {
	Home        int     `json:"home"`
	Away        int     `json:"away"`
	Probability float64 `json:"probability"`
}

// NewScoreMatrix builds the score grid for a lambda pair.
func NewScoreMatrix(l Lambdas, maxGoals int) *ScoreMatrix {
	homeDist := BoundedPoisson(l.Home, maxGoals)
	awayDist := BoundedPoisson(l.Away, maxGoals)

	cells := make([][]float64, maxGoals+1)
	for i := 0; i <= maxGoals; i++ {
		cells[i] = make([]float64, maxGoals+1)
		for j := 0; j <= maxGoals; j++ {
			cells[i][j] = homeDist[i] * awayDist[j]
		}
	}

	return &ScoreMatrix{
		MaxGoals: maxGoals,
		HomeDist: homeDist,
		AwayDist: awayDist,
		Cells:    cells,
	}
}

// Total returns the grid mass. Truncation at MaxGoals leaves it slightly
// under 1.0 for high lambdas.
func (m *ScoreMatrix) Total() float64 {
	total := 0.0
	for i := range m.Cells {
		for j := range m.Cells[i] {
			total += m.Cells[i][j]
		}
	}
	return total
}

// Outcomes returns the 1X2 probability triple by triangle summation.
func (m *ScoreMatrix) Outcomes() (homeWin, draw, awayWin float64) {
	for i := 0; i <= m.MaxGoals; i++ {
		for j := 0; j <= m.MaxGoals; j++ {
			switch {
			case i > j:
				homeWin += m.Cells[i][j]
			case i == j:
				draw += m.Cells[i][j]
			default:
				awayWin += m.Cells[i][j]
			}
		}
	}
	return homeWin, draw, awayWin
}

// TotalGoalsOver sums the cells whose combined goal count exceeds the line.
func (m *ScoreMatrix) TotalGoalsOver(line float64) float64 {
	over := 0.0
	for i := 0; i <= m.MaxGoals; i++ {
		for j := 0; j <= m.MaxGoals; j++ {
			if float64(i+j) > line {
				over += m.Cells[i][j]
			}
		}
	}
	return over
}

// BothTeamsScore uses the marginal distributions directly:
// P(home>=1) * P(away>=1).
func (m *ScoreMatrix) BothTeamsScore() float64 {
	return (1 - m.HomeDist[0]) * (1 - m.AwayDist[0])
}

// TopScorelines returns the k most probable cells, ties broken by lower
// scoreline first so the ordering is deterministic.
func (m *ScoreMatrix) TopScorelines(k int) []Scoreline {
	all := make([]Scoreline, 0, (m.MaxGoals+1)*(m.MaxGoals+1))
	for i := 0; i <= m.MaxGoals; i++ {
		for j := 0; j <= m.MaxGoals; j++ {
			all = append(all, Scoreline{Home: i, Away: j, Probability: m.Cells[i][j]})
		}
	}
	sort.SliceStable(all, func(a, b int) bool {
		if all[a].Probability != all[b].Probability {
			return all[a].Probability > all[b].Probability
		}
		if all[a].Home != all[b].Home {
			return all[a].Home < all[b].Home
		}
		return all[a].Away < all[b].Away
	})
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}

// DeriveMarkets prices every supported market from the score grid. All
// full-time probabilities come from cell summation; BTTS is the one marginal
// shortcut, and first-half lines use a separately scaled lambda expansion.
func (c *Config) DeriveMarkets(l Lambdas, matrix *ScoreMatrix) models.MarketProbabilities {
	homeWin, draw, awayWin := matrix.Outcomes()
	total := homeWin + draw + awayWin
	if total > 0 {
		// Renormalize the truncated grid so complementary families sum to one.
		homeWin /= total
		draw /= total
		awayWin /= total
	}

	probs := models.MarketProbabilities{
		models.MarketHomeWin:    homeWin,
		models.MarketDraw:       draw,
		models.MarketAwayWin:    awayWin,
		models.MarketDCHomeDraw: homeWin + draw,
		models.MarketDCDrawAway: draw + awayWin,
		models.MarketDCHomeAway: homeWin + awayWin,
	}

	// Draw no bet conditions the win probabilities on the match not drawing.
	if nonDraw := homeWin + awayWin; nonDraw > 0 {
		probs[models.MarketDNBHome] = homeWin / nonDraw
		probs[models.MarketDNBAway] = awayWin / nonDraw
	} else {
		probs[models.MarketDNBHome] = 0.5
		probs[models.MarketDNBAway] = 0.5
	}

	grid := matrix.Total()
	for line, overMarket := range map[float64]models.Market{
		1.5: models.MarketOver15,
		2.5: models.MarketOver25,
		3.5: models.MarketOver35,
	} {
		over := matrix.TotalGoalsOver(line)
		if grid > 0 {
			over /= grid
		}
		probs[overMarket] = over
	}
	probs[models.MarketUnder15] = 1 - probs[models.MarketOver15]
	probs[models.MarketUnder25] = 1 - probs[models.MarketOver25]
	probs[models.MarketUnder35] = 1 - probs[models.MarketOver35]

	btts := matrix.BothTeamsScore()
	probs[models.MarketBTTSYes] = btts
	probs[models.MarketBTTSNo] = 1 - btts

	c.deriveFirstHalf(l, probs)
	return probs
}

// deriveFirstHalf prices first-half totals from a small Poisson expansion of
// the scaled lambdas.
func (c *Config) deriveFirstHalf(l Lambdas, probs models.MarketProbabilities) {
	fhHome := l.Home * c.FirstHalfScale
	fhAway := l.Away * c.FirstHalfScale

	fhMatrix := NewScoreMatrix(Lambdas{Home: fhHome, Away: fhAway}, 4)
	grid := fhMatrix.Total()

	over05 := fhMatrix.TotalGoalsOver(0.5)
	over15 := fhMatrix.TotalGoalsOver(1.5)
	if grid > 0 {
		over05 /= grid
		over15 /= grid
	}

	probs[models.MarketFHOver05] = over05
	probs[models.MarketFHUnder05] = 1 - over05
	probs[models.MarketFHOver15] = over15
	probs[models.MarketFHUnder15] = 1 - over15
}
