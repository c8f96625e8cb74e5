package datasource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/edge-engine/internal/cache"
	"github.com/yourusername/edge-engine/internal/config"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(t *testing.T, handler http.Handler) *ProviderClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewProviderClient(config.ProviderConfig{
		BaseURL:         server.URL,
		APIKey:          "test-key",
		TimeoutSeconds:  5,
		MaxRetries:      1,
		RateLimit:       1000,
		CacheTTLSeconds: 60,
	}, cache.NewTTLCache(time.Minute), quietLogger())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

const fixturesPayload = `[{
	"fixture_id": 1001,
	"league_id": "epl",
	"league_size": 20,
	"kickoff_utc": "2026-03-14T15:00:00Z",
	"home": {
		"id": 1, "name": "Home FC", "league_rank": 4, "games_played": 20,
		"season": {"avg_scored": 1.8, "avg_conceded": 1.0}
	},
	"away": {
		"id": 2, "name": "Away FC", "league_rank": 12, "games_played": 20,
		"season": {"avg_scored": 1.2, "avg_conceded": 1.4},
		"form": {"avg_scored": 1.0, "avg_conceded": 1.6},
		"rest_days": 3,
		"injury_factor": 0.9
	}
}]`

func TestFixturesForDateParsesAndNormalizes(t *testing.T) {
	var requests atomic.Int64
	var authHeader atomic.Value
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		authHeader.Store(r.Header.Get("Authorization"))
		assert.Equal(t, "/fixtures", r.URL.Path)
		assert.Equal(t, "2026-03-14", r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixturesPayload))
	}))

	date := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	fixtures, err := client.FixturesForDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)

	assert.Equal(t, "Bearer test-key", authHeader.Load())

	f := fixtures[0]
	assert.Equal(t, int64(1001), f.FixtureID)
	assert.Equal(t, "epl", f.LeagueID)
	assert.Equal(t, 1.8, f.Home.Season.AvgScored)
	require.NotNil(t, f.Away.Form)
	assert.Equal(t, 1.6, f.Away.Form.AvgConceded)
	assert.Equal(t, 3, f.Away.RestDays)
	assert.Equal(t, 0.9, f.Away.InjuryFactor)
	// Absent optional fields take the modeling defaults.
	assert.Equal(t, 1.0, f.Home.InjuryFactor)
	assert.Equal(t, 7, f.Home.RestDays)
}

func TestFixturesForDateServedFromCache(t *testing.T) {
	var requests atomic.Int64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(fixturesPayload))
	}))

	date := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	_, err := client.FixturesForDate(context.Background(), date)
	require.NoError(t, err)
	_, err = client.FixturesForDate(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, int64(1), requests.Load())
}

func TestOddsForFixtureSkipsUnusablePrices(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fixtures/1001/odds", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"bookmaker_id": "b1", "label": "Home", "odds": 2.10},
			{"bookmaker_id": "b2", "label": "Home", "odds": 1.0},
			{"bookmaker_id": "b3", "label": "Home", "odds": 0}
		]`))
	}))

	entries, err := client.OddsForFixture(context.Background(), 1001)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "b1", entries[0].BookmakerID)
	assert.Equal(t, 2.10, entries[0].Odds)
}

func TestMatchContextNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.MatchContext(context.Background(), 9999)
	require.Error(t, err)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeNotFound, dsErr.Code)
	assert.Equal(t, "stats_api", dsErr.Source)
}

func TestGetJSONAuthenticationFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.OddsForFixture(context.Background(), 1001)
	require.Error(t, err)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeAuthenticationFailed, dsErr.Code)
}

func TestGetJSONMalformedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))

	_, err := client.OddsForFixture(context.Background(), 1001)
	require.Error(t, err)

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeInvalidData, dsErr.Code)
}
