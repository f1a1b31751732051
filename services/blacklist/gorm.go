package blacklist

import (
	"context"
	"time"

	"devlaunch/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore keeps revoked tokens in the token_blacklists table. Expired rows
// are ignored on lookup and removed by Purge.
type DBStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db, now: time.Now}
}

func (s *DBStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.TokenBlacklist{TokenHash: hashToken(token), ExpiresAt: expiresAt}).Error
}

func (s *DBStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.TokenBlacklist{}).
		Where("token_hash = ? AND expires_at > ?", hashToken(token), s.now()).
		Count(&n).Error
	return n > 0, err
}

// Purge deletes entries whose token has expired.
func (s *DBStore) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
