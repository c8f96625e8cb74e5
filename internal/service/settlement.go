package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-engine/internal/datasource"
	"github.com/yourusername/edge-engine/internal/models"
	"github.com/yourusername/edge-engine/internal/repository"
)

// SettlementService consumes provider settlement updates and freezes the
// matching published predictions. Freezing is once-per-record; repeated
// updates for the same fixture are ignored.
type SettlementService struct {
	predictions repository.PredictionRepository
	logger      *logrus.Logger
}

// NewSettlementService creates a settlement service
func NewSettlementService(predictions repository.PredictionRepository, logger *logrus.Logger) *SettlementService {
	return &SettlementService{predictions: predictions, logger: logger}
}

// Handler returns the stream handler. The parent context bounds each freeze
// write; the stream itself outlives individual updates.
func (s *SettlementService) Handler(ctx context.Context) datasource.SettlementHandler {
	return func(update datasource.SettlementUpdate) {
		s.Apply(ctx, update)
	}
}

// Apply freezes the published prediction for one settlement update.
func (s *SettlementService) Apply(ctx context.Context, update datasource.SettlementUpdate) {
	record, err := s.predictions.GetByFixtureID(ctx, update.FixtureID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// We never published this fixture; nothing to freeze.
			return
		}
		s.logger.WithFields(logrus.Fields{
			"fixture_id": update.FixtureID,
			"error":      err.Error(),
		}).Error("Failed to load prediction for settlement")
		return
	}

	// Only the settled market of the published pick freezes the record.
	if record.Market != update.Market {
		return
	}

	result, ok := settlementFromLegStatus(update.Status)
	if !ok {
		return
	}

	err = s.predictions.Freeze(ctx, update.FixtureID, result, update.At)
	switch {
	case err == nil:
		s.logger.WithFields(logrus.Fields{
			"fixture_id": update.FixtureID,
			"market":     string(update.Market),
			"result":     string(result),
		}).Info("Prediction frozen")
	case errors.Is(err, models.ErrAlreadyFrozen):
		// Duplicate settlement message; the first freeze stands.
	default:
		s.logger.WithFields(logrus.Fields{
			"fixture_id": update.FixtureID,
			"error":      err.Error(),
		}).Error("Failed to freeze prediction")
	}
}

func settlementFromLegStatus(status models.LegStatus) (models.SettlementResult, bool) {
	switch status {
	case models.LegWon:
		return models.SettlementWon, true
	case models.LegLost:
		return models.SettlementLost, true
	case models.LegVoid:
		return models.SettlementVoid, true
	}
	return "", false
}
