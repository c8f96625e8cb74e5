package models

import (
	"time"
)

// Default values applied when the external data provider omits a field.
// Documented contract: missing stats degrade to these, never abort the run.
const (
	DefaultAvgScored    = 1.3
	DefaultAvgConceded  = 1.1
	DefaultConfidence   = 40.0
	DefaultInjuryFactor = 1.0
	DefaultRestDays     = 7
)

// TeamStats holds one side's scoring profile for a season or form window.
type TeamStats struct {
	AvgScored   float64 `json:"avg_scored" validate:"gte=0"`
	AvgConceded float64 `json:"avg_conceded" validate:"gte=0"`
}

// TeamContext describes one team's inputs to the modeling pipeline.
type TeamContext struct {
	ID           int64      `json:"id" validate:"required"`
	Name         string     `json:"name"`
	Season       TeamStats  `json:"season"`
	Form         *TeamStats `json:"form,omitempty"` // nil when no recent-form window exists
	LeagueRank   int        `json:"league_rank" validate:"gte=0"`
	GamesPlayed  int        `json:"games_played" validate:"gte=0"`
	RestDays     int        `json:"rest_days" validate:"gte=0"`
	InjuryFactor float64    `json:"injury_factor" validate:"gte=0,lte=1"`
}

// MatchContext is the immutable per-fixture input to one engine run.
type MatchContext struct {
	FixtureID  int64       `json:"fixture_id" validate:"required"`
	LeagueID   string      `json:"league_id" validate:"required"`
	LeagueSize int         `json:"league_size"`
	KickoffUTC time.Time   `json:"kickoff_utc"`
	Home       TeamContext `json:"home"`
	Away       TeamContext `json:"away"`
}

// Normalize fills absent optional fields with their documented defaults so a
// partially populated context still flows through the whole pipeline.
func (m *MatchContext) Normalize() {
	normalizeTeam(&m.Home)
	normalizeTeam(&m.Away)
	if m.LeagueSize <= 0 {
		m.LeagueSize = 20
	}
}

func normalizeTeam(t *TeamContext) {
	if t.Season.AvgScored <= 0 {
		t.Season.AvgScored = DefaultAvgScored
	}
	if t.Season.AvgConceded <= 0 {
		t.Season.AvgConceded = DefaultAvgConceded
	}
	if t.InjuryFactor <= 0 {
		t.InjuryFactor = DefaultInjuryFactor
	}
	if t.InjuryFactor < 0.80 {
		t.InjuryFactor = 0.80
	}
	if t.InjuryFactor > 1.0 {
		t.InjuryFactor = 1.0
	}
	if t.RestDays <= 0 {
		t.RestDays = DefaultRestDays
	}
}

// BlendedStats returns the 40/60 season/form blend, or season stats alone when
// no form window is available.
func (t *TeamContext) BlendedStats() TeamStats {
	if t.Form == nil {
		return t.Season
	}
	return TeamStats{
		AvgScored:   0.4*t.Season.AvgScored + 0.6*t.Form.AvgScored,
		AvgConceded: 0.4*t.Season.AvgConceded + 0.6*t.Form.AvgConceded,
	}
}
