package models

import (
	"strings"
)

// Market identifies a single betting market on a fixture.
type Market string

const (
	MarketHomeWin    Market = "home_win"
	MarketDraw       Market = "draw"
	MarketAwayWin    Market = "away_win"
	MarketDCHomeDraw Market = "dc_home_draw"
	MarketDCDrawAway Market = "dc_draw_away"
	MarketDCHomeAway Market = "dc_home_away"
	MarketDNBHome    Market = "dnb_home"
	MarketDNBAway    Market = "dnb_away"
	MarketOver15     Market = "over_1.5"
	MarketUnder15    Market = "under_1.5"
	MarketOver25     Market = "over_2.5"
	MarketUnder25    Market = "under_2.5"
	MarketOver35     Market = "over_3.5"
	MarketUnder35    Market = "under_3.5"
	MarketBTTSYes    Market = "btts_yes"
	MarketBTTSNo     Market = "btts_no"
	MarketFHOver05   Market = "fh_over_0.5"
	MarketFHUnder05  Market = "fh_under_0.5"
	MarketFHOver15   Market = "fh_over_1.5"
	MarketFHUnder15  Market = "fh_under_1.5"
)

// AllMarkets lists every market the engine can price, in stable order.
var AllMarkets = []Market{
	MarketHomeWin, MarketDraw, MarketAwayWin,
	MarketDCHomeDraw, MarketDCDrawAway, MarketDCHomeAway,
	MarketDNBHome, MarketDNBAway,
	MarketOver15, MarketUnder15,
	MarketOver25, MarketUnder25,
	MarketOver35, MarketUnder35,
	MarketBTTSYes, MarketBTTSNo,
	MarketFHOver05, MarketFHUnder05,
	MarketFHOver15, MarketFHUnder15,
}

// MarketFamily groups markets for portfolio correlation checks.
type MarketFamily string

const (
	FamilyResult    MarketFamily = "result"
	FamilyGoalTotal MarketFamily = "goal_total"
	FamilyBTTS      MarketFamily = "btts"
)

// Family returns the correlation family a market belongs to.
func (m Market) Family() MarketFamily {
	switch m {
	case MarketHomeWin, MarketDraw, MarketAwayWin,
		MarketDCHomeDraw, MarketDCDrawAway, MarketDCHomeAway,
		MarketDNBHome, MarketDNBAway:
		return FamilyResult
	case MarketBTTSYes, MarketBTTSNo:
		return FamilyBTTS
	default:
		return FamilyGoalTotal
	}
}

// IsWinType reports whether the market settles on a single side winning the
// match. Only WIN-type markets are eligible as accumulator legs.
func (m Market) IsWinType() bool {
	return m == MarketHomeWin || m == MarketAwayWin || m == MarketDNBHome || m == MarketDNBAway
}

// MarketProbabilities maps every priced market to a probability in [0,1].
type MarketProbabilities map[Market]float64

// Clone returns an independent copy.
func (p MarketProbabilities) Clone() MarketProbabilities {
	out := make(MarketProbabilities, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// OddsEntry is a single bookmaker price as supplied by the odds collaborator.
type OddsEntry struct {
	BookmakerID   string  `json:"bookmaker_id"`
	BookmakerName string  `json:"bookmaker_name"`
	MarketID      string  `json:"market_id"`
	Label         string  `json:"label"`
	Threshold     string  `json:"threshold,omitempty"` // e.g. "2.5" on totals lines
	Odds          float64 `json:"odds" validate:"gt=1"`
}

// oddsLabels maps provider label/threshold pairs onto engine markets. Matching
// is case-insensitive on the label and exact on the threshold.
var oddsLabels = map[string]Market{
	"home|":            MarketHomeWin,
	"1|":               MarketHomeWin,
	"draw|":            MarketDraw,
	"x|":               MarketDraw,
	"away|":            MarketAwayWin,
	"2|":               MarketAwayWin,
	"1x|":              MarketDCHomeDraw,
	"x2|":              MarketDCDrawAway,
	"12|":              MarketDCHomeAway,
	"dnb home|":        MarketDNBHome,
	"dnb away|":        MarketDNBAway,
	"over|1.5":         MarketOver15,
	"under|1.5":        MarketUnder15,
	"over|2.5":         MarketOver25,
	"under|2.5":        MarketUnder25,
	"over|3.5":         MarketOver35,
	"under|3.5":        MarketUnder35,
	"btts yes|":        MarketBTTSYes,
	"btts no|":         MarketBTTSNo,
	"1h over|0.5":      MarketFHOver05,
	"1h under|0.5":     MarketFHUnder05,
	"1h over|1.5":      MarketFHOver15,
	"1h under|1.5":     MarketFHUnder15,
}

// MatchOddsEntry resolves an odds entry to an engine market, when its
// label/threshold pair corresponds to a whitelisted market definition.
func MatchOddsEntry(entry OddsEntry) (Market, bool) {
	key := strings.ToLower(strings.TrimSpace(entry.Label)) + "|" + strings.TrimSpace(entry.Threshold)
	market, ok := oddsLabels[key]
	return market, ok
}
