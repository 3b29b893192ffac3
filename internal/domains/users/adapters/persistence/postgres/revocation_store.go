package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
)

var _ ports.RevocationStore = (*RevocationStore)(nil)

// RevocationStore persists revoked token ids in PostgreSQL. Caller owns DB lifecycle.
type RevocationStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRevocationStore(db *gorm.DB) *RevocationStore {
	return &RevocationStore{db: db, now: time.Now}
}

type revocationRecord struct {
	TokenID   string    `gorm:"primaryKey;column:token_id;size:64"`
	Email     string    `gorm:"column:email;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (revocationRecord) TableName() string { return "token_revocations" }

func (s *RevocationStore) Revoke(ctx context.Context, revocation domain.Revocation) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if revocation.TokenID == "" {
		return errors.New("token id is required")
	}
	rec := revocationRecord{
		TokenID:   revocation.TokenID,
		Email:     revocation.Email,
		ExpiresAt: revocation.ExpiresAt.UTC(),
		CreatedAt: s.now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&revocationRecord{}).
		Where("token_id = ? AND expires_at > ?", tokenID, s.now().UTC()).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// PurgeExpired removes revocations whose tokens expired. Use for housekeeping or cron.
func (s *RevocationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&revocationRecord{})
	return result.RowsAffected, result.Error
}

func (s *RevocationStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres revocation store not configured")
	}
	return nil
}
