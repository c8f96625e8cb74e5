package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/database"
	"github.com/yourusername/edge-engine/internal/integrity"
	"github.com/yourusername/edge-engine/internal/metrics"
	"github.com/yourusername/edge-engine/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for
// PostgreSQL.
type PostgresPredictionRepository struct {
	db  *database.DB
	log *logrus.Logger
}

// NewPostgresPredictionRepository creates a new prediction repository.
func NewPostgresPredictionRepository(db *database.DB, log *logrus.Logger) PredictionRepository {
	if log == nil {
		log = logrus.New()
	}
	return &PostgresPredictionRepository{db: db, log: log}
}

const predictionColumns = `
	id, fixture_id, league_id, market, probability, odds, ev_adjusted,
	confidence, lambda_home, lambda_away, checksum, published_at, result, settled_at`

// Publish inserts a new record, generating its checksum. The partial unique
// index on fixture_id makes the publish-once contract a database guarantee,
// not just an application check.
func (r *PostgresPredictionRepository) Publish(ctx context.Context, prediction *models.ImmutablePrediction) error {
	exists, err := r.Exists(ctx, prediction.FixtureID)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrAlreadyPublished
	}

	if prediction.ID == uuid.Nil {
		prediction.ID = uuid.New()
	}
	if prediction.PublishedAt.IsZero() {
		prediction.PublishedAt = time.Now().UTC()
	}
	prediction.Checksum = integrity.GenerateChecksum(prediction)

	query := `
		INSERT INTO predictions (id, fixture_id, league_id, market, probability, odds,
		                         ev_adjusted, confidence, lambda_home, lambda_away,
		                         checksum, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (fixture_id) DO NOTHING
	`
	tag, err := r.db.GetPool().Exec(ctx, query,
		prediction.ID, prediction.FixtureID, prediction.LeagueID, prediction.Market,
		prediction.Probability, prediction.Odds, prediction.EVAdjusted, prediction.Confidence,
		prediction.LambdaHome, prediction.LambdaAway, prediction.Checksum, prediction.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to publish prediction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrAlreadyPublished
	}
	return nil
}

// GetByFixtureID returns the fixture's record after checksum verification.
func (r *PostgresPredictionRepository) GetByFixtureID(ctx context.Context, fixtureID int64) (*models.ImmutablePrediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE fixture_id = $1`

	prediction, err := r.scanOne(r.db.GetPool().QueryRow(ctx, query, fixtureID))
	if err != nil {
		return nil, err
	}

	if !integrity.VerifyChecksum(prediction) {
		metrics.ChecksumFailuresTotal.Inc()
		r.log.WithFields(logrus.Fields{
			"fixture_id": fixtureID,
			"record_id":  prediction.ID,
		}).Error("Stored prediction failed checksum verification")
		return nil, models.ErrChecksumMismatch
	}
	return prediction, nil
}

// Freeze attaches a settlement result once. Already-frozen records are left
// untouched.
func (r *PostgresPredictionRepository) Freeze(ctx context.Context, fixtureID int64, result models.SettlementResult, settledAt time.Time) error {
	query := `
		UPDATE predictions
		SET result = $2, settled_at = $3
		WHERE fixture_id = $1 AND result IS NULL
	`
	tag, err := r.db.GetPool().Exec(ctx, query, fixtureID, result, settledAt)
	if err != nil {
		return fmt.Errorf("failed to freeze prediction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, existsErr := r.Exists(ctx, fixtureID)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return models.ErrNotFound
		}
		return models.ErrAlreadyFrozen
	}
	return nil
}

// Exists reports whether the fixture has a published record.
func (r *PostgresPredictionRepository) Exists(ctx context.Context, fixtureID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM predictions WHERE fixture_id = $1)`
	if err := r.db.GetPool().QueryRow(ctx, query, fixtureID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check prediction existence: %w", err)
	}
	return exists, nil
}

// GetByDateRange returns verified records published within [start, end).
// Records failing verification are logged and skipped, never repaired.
func (r *PostgresPredictionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.ImmutablePrediction, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions
		WHERE published_at >= $1 AND published_at < $2
		ORDER BY published_at`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by date: %w", err)
	}
	defer rows.Close()

	var predictions []*models.ImmutablePrediction
	for rows.Next() {
		prediction, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		if !integrity.VerifyChecksum(prediction) {
			metrics.ChecksumFailuresTotal.Inc()
			r.log.WithFields(logrus.Fields{
				"fixture_id": prediction.FixtureID,
				"record_id":  prediction.ID,
			}).Error("Skipping prediction with checksum mismatch")
			continue
		}
		predictions = append(predictions, prediction)
	}
	return predictions, rows.Err()
}

func (r *PostgresPredictionRepository) scanOne(row pgx.Row) (*models.ImmutablePrediction, error) {
	prediction := &models.ImmutablePrediction{}
	err := row.Scan(
		&prediction.ID, &prediction.FixtureID, &prediction.LeagueID, &prediction.Market,
		&prediction.Probability, &prediction.Odds, &prediction.EVAdjusted, &prediction.Confidence,
		&prediction.LambdaHome, &prediction.LambdaAway, &prediction.Checksum,
		&prediction.PublishedAt, &prediction.Result, &prediction.SettledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}
	return prediction, nil
}
