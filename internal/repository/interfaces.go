// Package repository defines the persistence contracts for published
// predictions. The modeling core never performs I/O; everything here is
// injected into the services that orchestrate it.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/edge-engine/internal/models"
)

// PredictionRepository is the append-only prediction store contract.
// Publish is once-per-fixture and Freeze is once-per-record; both are safe to
// call redundantly, the repeated call reports the sentinel error and changes
// nothing. Callers must never assume these succeed.
type PredictionRepository interface {
	// Publish stores a new record. Returns models.ErrAlreadyPublished when
	// the fixture already has one.
	Publish(ctx context.Context, prediction *models.ImmutablePrediction) error

	// GetByFixtureID returns the record, or models.ErrNotFound. Records
	// failing checksum verification are reported as models.ErrChecksumMismatch
	// and must be treated as absent by callers.
	GetByFixtureID(ctx context.Context, fixtureID int64) (*models.ImmutablePrediction, error)

	// Freeze attaches a settlement result. Returns models.ErrAlreadyFrozen
	// when a result is already attached.
	Freeze(ctx context.Context, fixtureID int64, result models.SettlementResult, settledAt time.Time) error

	// Exists reports whether a record has been published for the fixture.
	Exists(ctx context.Context, fixtureID int64) (bool, error)

	// GetByDateRange returns records published within [start, end), ordered
	// by publication time. Records failing verification are skipped.
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.ImmutablePrediction, error)
}
