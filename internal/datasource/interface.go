// Package datasource holds the boundary clients for the external stats and
// odds collaborators. The modeling core never calls anything here; the slate
// service fetches through these interfaces and hands plain values to the
// engine.
package datasource

import (
	"context"
	"time"

	"github.com/yourusername/edge-engine/internal/models"
)

// StatsProvider supplies per-fixture team statistics.
type StatsProvider interface {
	// FixturesForDate lists the fixtures kicking off on the given UTC date.
	FixturesForDate(ctx context.Context, date time.Time) ([]models.MatchContext, error)

	// MatchContext returns the modeling inputs for one fixture. Providers
	// must fill missing optional fields with the documented defaults rather
	// than failing.
	MatchContext(ctx context.Context, fixtureID int64) (*models.MatchContext, error)
}

// OddsProvider supplies bookmaker prices.
type OddsProvider interface {
	// OddsForFixture returns every known odds entry for a fixture. An empty
	// slice is a valid answer; the pipeline degrades to no candidates.
	OddsForFixture(ctx context.Context, fixtureID int64) ([]models.OddsEntry, error)
}

// SettlementUpdate is one leg result pushed by the results stream.
type SettlementUpdate struct {
	FixtureID int64            `json:"fixture_id"`
	Market    models.Market    `json:"market"`
	Status    models.LegStatus `json:"status"`
	At        time.Time        `json:"at"`
}

// SettlementHandler consumes stream updates.
type SettlementHandler func(update SettlementUpdate)

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g. "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error { return e.Err }

// NewDataSourceError creates a DataSourceError
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{Source: source, Code: code, Message: message, Err: err}
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)
