package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/cache"
	"github.com/yourusername/edge-engine/internal/config"
	"github.com/yourusername/edge-engine/internal/models"
)

const providerName = "stats_api"

// ProviderClient implements StatsProvider and OddsProvider against the
// configured HTTP stats API. Responses are cached for the configured TTL so
// repeated engine runs over the same slate do not hammer the upstream.
type ProviderClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	cache      cache.Store
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

// apiFixture is the provider's fixture payload. Optional stats arrive as
// pointers; absent values fall back to the documented modeling defaults in
// MatchContext.Normalize.
type apiFixture struct {
	FixtureID  int64   `json:"fixture_id"`
	LeagueID   string  `json:"league_id"`
	LeagueSize int     `json:"league_size"`
	KickoffUTC string  `json:"kickoff_utc"`
	Home       apiTeam `json:"home"`
	Away       apiTeam `json:"away"`
}

type apiTeam struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Season       *apiStats `json:"season"`
	Form         *apiStats `json:"form"`
	LeagueRank   int       `json:"league_rank"`
	GamesPlayed  int       `json:"games_played"`
	RestDays     *int      `json:"rest_days"`
	InjuryFactor *float64  `json:"injury_factor"`
}

type apiStats struct {
	AvgScored   float64 `json:"avg_scored"`
	AvgConceded float64 `json:"avg_conceded"`
}

type apiOdds struct {
	BookmakerID   string  `json:"bookmaker_id"`
	BookmakerName string  `json:"bookmaker_name"`
	MarketID      string  `json:"market_id"`
	Label         string  `json:"label"`
	Threshold     string  `json:"threshold"`
	Odds          float64 `json:"odds"`
}

// NewProviderClient creates a provider client from configuration.
func NewProviderClient(cfg config.ProviderConfig, store cache.Store, logger *logrus.Logger) *ProviderClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RateLimit

	return &ProviderClient{
		httpClient: NewRateLimitedHTTPClient(httpCfg, logger),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		cache:      store,
		cacheTTL:   time.Duration(cfg.CacheTTLSeconds) * time.Second,
		logger:     logger,
	}
}

// FixturesForDate lists the fixtures kicking off on the given UTC date.
func (c *ProviderClient) FixturesForDate(ctx context.Context, date time.Time) ([]models.MatchContext, error) {
	day := date.UTC().Format("2006-01-02")
	cacheKey := "fixtures:" + day
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.MatchContext), nil
	}

	url := fmt.Sprintf("%s/fixtures?date=%s", c.baseURL, day)
	var payload []apiFixture
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	fixtures := make([]models.MatchContext, 0, len(payload))
	for i := range payload {
		fixtures = append(fixtures, convertFixture(&payload[i]))
	}

	c.cache.Set(cacheKey, fixtures, c.cacheTTL)
	return fixtures, nil
}

// MatchContext returns the modeling inputs for one fixture.
func (c *ProviderClient) MatchContext(ctx context.Context, fixtureID int64) (*models.MatchContext, error) {
	cacheKey := fmt.Sprintf("fixture:%d", fixtureID)
	if cached, ok := c.cache.Get(cacheKey); ok {
		mc := cached.(models.MatchContext)
		return &mc, nil
	}

	url := fmt.Sprintf("%s/fixtures/%d", c.baseURL, fixtureID)
	var payload apiFixture
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	mc := convertFixture(&payload)
	c.cache.Set(cacheKey, mc, c.cacheTTL)
	return &mc, nil
}

// OddsForFixture returns every known odds entry for a fixture. Odds are cached
// for a quarter of the stats TTL since prices move faster than stats.
func (c *ProviderClient) OddsForFixture(ctx context.Context, fixtureID int64) ([]models.OddsEntry, error) {
	cacheKey := fmt.Sprintf("odds:%d", fixtureID)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.OddsEntry), nil
	}

	url := fmt.Sprintf("%s/fixtures/%d/odds", c.baseURL, fixtureID)
	var payload []apiOdds
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	entries := make([]models.OddsEntry, 0, len(payload))
	for _, o := range payload {
		if o.Odds <= 1.0 {
			c.logger.WithFields(logrus.Fields{
				"fixture_id": fixtureID,
				"bookmaker":  o.BookmakerID,
				"odds":       o.Odds,
			}).Debug("Skipping unusable odds entry")
			continue
		}
		entries = append(entries, models.OddsEntry{
			BookmakerID:   o.BookmakerID,
			BookmakerName: o.BookmakerName,
			MarketID:      o.MarketID,
			Label:         o.Label,
			Threshold:     o.Threshold,
			Odds:          o.Odds,
		})
	}

	c.cache.Set(cacheKey, entries, c.cacheTTL/4)
	return entries, nil
}

// Name returns the data source name
func (c *ProviderClient) Name() string {
	return providerName
}

// Close releases the underlying HTTP client.
func (c *ProviderClient) Close() error {
	return c.httpClient.Close()
}

func (c *ProviderClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewDataSourceError(providerName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(providerName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewDataSourceError(providerName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(providerName, ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(providerName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return NewDataSourceError(providerName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(providerName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

func convertFixture(f *apiFixture) models.MatchContext {
	kickoff, err := time.Parse(time.RFC3339, f.KickoffUTC)
	if err != nil {
		kickoff = time.Time{}
	}

	mc := models.MatchContext{
		FixtureID:  f.FixtureID,
		LeagueID:   f.LeagueID,
		LeagueSize: f.LeagueSize,
		KickoffUTC: kickoff,
		Home:       convertTeam(&f.Home),
		Away:       convertTeam(&f.Away),
	}
	mc.Normalize()
	return mc
}

func convertTeam(t *apiTeam) models.TeamContext {
	tc := models.TeamContext{
		ID:          t.ID,
		Name:        t.Name,
		LeagueRank:  t.LeagueRank,
		GamesPlayed: t.GamesPlayed,
	}
	if t.Season != nil {
		tc.Season = models.TeamStats{AvgScored: t.Season.AvgScored, AvgConceded: t.Season.AvgConceded}
	}
	if t.Form != nil {
		tc.Form = &models.TeamStats{AvgScored: t.Form.AvgScored, AvgConceded: t.Form.AvgConceded}
	}
	if t.RestDays != nil {
		tc.RestDays = *t.RestDays
	}
	if t.InjuryFactor != nil {
		tc.InjuryFactor = *t.InjuryFactor
	}
	return tc
}
