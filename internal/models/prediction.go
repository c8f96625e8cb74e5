package models

import (
	"time"

	"github.com/google/uuid"
)

// SettlementResult is a final match outcome attached to a published record.
type SettlementResult string

const (
	SettlementWon  SettlementResult = "won"
	SettlementLost SettlementResult = "lost"
	SettlementVoid SettlementResult = "void"
)

// ImmutablePrediction is the append-only publication record for one fixture.
// The checksum covers a fixed field list; once a settlement result is attached
// the record is frozen and the covered fields must never change again. The
// write barrier itself lives in the persistence layer; the integrity checksum
// lets readers detect violations.
type ImmutablePrediction struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	FixtureID   int64             `db:"fixture_id" json:"fixture_id" validate:"required"`
	LeagueID    string            `db:"league_id" json:"league_id"`
	Market      Market            `db:"market" json:"market" validate:"required"`
	Probability float64           `db:"probability" json:"probability" validate:"gt=0,lte=1"`
	Odds        float64           `db:"odds" json:"odds" validate:"gt=1"`
	EVAdjusted  float64           `db:"ev_adjusted" json:"ev_adjusted"`
	Confidence  float64           `db:"confidence" json:"confidence"`
	LambdaHome  float64           `db:"lambda_home" json:"lambda_home"`
	LambdaAway  float64           `db:"lambda_away" json:"lambda_away"`
	Checksum    string            `db:"checksum" json:"checksum"`
	PublishedAt time.Time         `db:"published_at" json:"published_at"`
	Result      *SettlementResult `db:"result" json:"result,omitempty"`
	SettledAt   *time.Time        `db:"settled_at" json:"settled_at,omitempty"`
}

// IsFrozen reports whether a settlement result has been attached.
func (p *ImmutablePrediction) IsFrozen() bool {
	return p.Result != nil
}
