package engine

import (
	"math"
	"sort"

	"github.com/yourusername/edge-engine/internal/models"
)

// seedBase is XORed with the fixture id to derive the simulation seed. The
// constant is fixed forever: changing it silently breaks reproducibility of
// every published simulation.
const seedBase uint32 = 0x9E3779B9

const histogramBuckets = 13 // 0..11 goals, last bucket is 12+

// xorshift32 is an explicit seedable PRNG with a fixed transition function.
// The platform RNG is deliberately not used anywhere in the simulator:
// bit-identical output across runs, processes and platforms is a correctness
// requirement, not a nicety.
type xorshift32 struct {
	state uint32
}

func newXorshift32(seed uint32) *xorshift32 {
	if seed == 0 {
		seed = seedBase
	}
	return &xorshift32{state: seed}
}

func (x *xorshift32) next() uint32 {
	v := x.state
	v ^= v << 13
	v ^= v >> 17
	v ^= v << 5
	x.state = v
	return v
}

// float64 returns a uniform draw in [0,1).
func (x *xorshift32) float64() float64 {
	return float64(x.next()) / (1 << 32)
}

// poisson draws a Poisson variate by inverse-CDF walking.
func (x *xorshift32) poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	u := x.float64()
	p := math.Exp(-lambda)
	cum := p
	k := 0
	for u > cum && k < 20 {
		k++
		p *= lambda / float64(k)
		cum += p
	}
	return k
}

// ScorelineCount is one simulated scoreline with its observed frequency.
type ScorelineCount struct {
	Home      int     `json:"home"`
	Away      int     `json:"away"`
	Count     int     `json:"count"`
	Frequency float64 `json:"frequency"`
}

// SimulationResult is the empirical counterpart of the analytical market
// probabilities. It is tied 1:1 to a (fixture id, lambda pair, iteration
// count) tuple and must be bit-reproducible.
type SimulationResult struct {
	Seed           uint32                                      `json:"seed"`
	Iterations     int                                         `json:"iterations"`
	Probabilities  models.MarketProbabilities                  `json:"probabilities"`
	Intervals      map[models.Market]models.ConfidenceInterval `json:"intervals"`
	GoalsHistogram []int                                       `json:"goals_histogram"`
	TopScorelines  []ScorelineCount                            `json:"top_scorelines"`
	Volatility     float64                                     `json:"volatility"` // 0-100, lower is steadier
}

// SimulationSeed derives the deterministic seed for a fixture.
func SimulationSeed(fixtureID int64) uint32 {
	return uint32(fixtureID) ^ seedBase
}

// Simulate runs the seeded Monte Carlo for one fixture. Identical inputs
// always produce identical output.
func (c *Config) Simulate(fixtureID int64, l Lambdas) SimulationResult {
	n := c.Iterations
	seed := SimulationSeed(fixtureID)
	rng := newXorshift32(seed)

	fhHome := l.Home * c.FirstHalfScale
	fhAway := l.Away * c.FirstHalfScale

	counts := make(map[models.Market]int, len(models.AllMarkets))
	histogram := make([]int, histogramBuckets)
	var scorelines [10][10]int
	draws := 0

	for i := 0; i < n; i++ {
		hg := rng.poisson(l.Home)
		ag := rng.poisson(l.Away)
		fhg := rng.poisson(fhHome)
		fag := rng.poisson(fhAway)

		switch {
		case hg > ag:
			counts[models.MarketHomeWin]++
			counts[models.MarketDCHomeDraw]++
			counts[models.MarketDCHomeAway]++
		case hg == ag:
			draws++
			counts[models.MarketDraw]++
			counts[models.MarketDCHomeDraw]++
			counts[models.MarketDCDrawAway]++
		default:
			counts[models.MarketAwayWin]++
			counts[models.MarketDCDrawAway]++
			counts[models.MarketDCHomeAway]++
		}

		total := hg + ag
		if total > 1 {
			counts[models.MarketOver15]++
		} else {
			counts[models.MarketUnder15]++
		}
		if total > 2 {
			counts[models.MarketOver25]++
		} else {
			counts[models.MarketUnder25]++
		}
		if total > 3 {
			counts[models.MarketOver35]++
		} else {
			counts[models.MarketUnder35]++
		}

		if hg > 0 && ag > 0 {
			counts[models.MarketBTTSYes]++
		} else {
			counts[models.MarketBTTSNo]++
		}

		fhTotal := fhg + fag
		if fhTotal > 0 {
			counts[models.MarketFHOver05]++
		} else {
			counts[models.MarketFHUnder05]++
		}
		if fhTotal > 1 {
			counts[models.MarketFHOver15]++
		} else {
			counts[models.MarketFHUnder15]++
		}

		bucket := total
		if bucket >= histogramBuckets {
			bucket = histogramBuckets - 1
		}
		histogram[bucket]++

		sh, sa := hg, ag
		if sh > 9 {
			sh = 9
		}
		if sa > 9 {
			sa = 9
		}
		scorelines[sh][sa]++
	}

	probs := make(models.MarketProbabilities, len(models.AllMarkets))
	intervals := make(map[models.Market]models.ConfidenceInterval, len(models.AllMarkets))
	for _, market := range models.AllMarkets {
		if market == models.MarketDNBHome || market == models.MarketDNBAway {
			continue
		}
		p := float64(counts[market]) / float64(n)
		probs[market] = p
		intervals[market] = normalInterval(p, n)
	}

	// Draw no bet is conditional on the match not drawing.
	nonDraw := n - draws
	if nonDraw > 0 {
		pHome := float64(counts[models.MarketHomeWin]) / float64(nonDraw)
		probs[models.MarketDNBHome] = pHome
		probs[models.MarketDNBAway] = 1 - pHome
		intervals[models.MarketDNBHome] = normalInterval(pHome, nonDraw)
		intervals[models.MarketDNBAway] = normalInterval(1-pHome, nonDraw)
	} else {
		probs[models.MarketDNBHome] = 0.5
		probs[models.MarketDNBAway] = 0.5
		intervals[models.MarketDNBHome] = models.ConfidenceInterval{Lower: 0, Upper: 1}
		intervals[models.MarketDNBAway] = models.ConfidenceInterval{Lower: 0, Upper: 1}
	}

	return SimulationResult{
		Seed:           seed,
		Iterations:     n,
		Probabilities:  probs,
		Intervals:      intervals,
		GoalsHistogram: histogram,
		TopScorelines:  topScorelines(&scorelines, n, 5),
		Volatility:     volatilityScore(intervals, n),
	}
}

// normalInterval is the 95% normal approximation around an empirical
// proportion.
func normalInterval(p float64, n int) models.ConfidenceInterval {
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(n))
	return models.ConfidenceInterval{
		Lower: math.Max(0, p-margin),
		Upper: math.Min(1, p+margin),
	}
}

// volatilityScore maps the mean CI width of three reference markets onto
// 0-100, where 100 is the widest interval the iteration count permits
// (p=0.5). Lower scores mean steadier estimates.
func volatilityScore(intervals map[models.Market]models.ConfidenceInterval, n int) float64 {
	reference := []models.Market{models.MarketHomeWin, models.MarketOver25, models.MarketBTTSYes}
	widthSum := 0.0
	for _, market := range reference {
		widthSum += intervals[market].Width()
	}
	avgWidth := widthSum / float64(len(reference))

	maxWidth := 2 * 1.96 * math.Sqrt(0.25/float64(n))
	if maxWidth <= 0 {
		return 100
	}
	return clamp(avgWidth/maxWidth*100, 0, 100)
}

func topScorelines(grid *[10][10]int, n, k int) []ScorelineCount {
	all := make([]ScorelineCount, 0, 100)
	for h := 0; h < 10; h++ {
		for a := 0; a < 10; a++ {
			if grid[h][a] == 0 {
				continue
			}
			all = append(all, ScorelineCount{
				Home:      h,
				Away:      a,
				Count:     grid[h][a],
				Frequency: float64(grid[h][a]) / float64(n),
			})
		}
	}
	sort.SliceStable(all, func(a, b int) bool {
		if all[a].Count != all[b].Count {
			return all[a].Count > all[b].Count
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
