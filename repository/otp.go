package repository

import (
	"strings"
	"time"

	"devlaunch/database/dbctx"
	"devlaunch/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Upsert replaces any pending signup for the same email.
func (r *OTPRepository) Upsert(dbc dbctx.Context, o *models.OTP) error {
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "password_hash", "code", "expires_at", "updated_at"}),
	}).Create(o).Error
}

func (r *OTPRepository) GetByEmail(dbc dbctx.Context, email string) (*models.OTP, error) {
	var o models.OTP
	if err := dbc.DB(r.db).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OTPRepository) DeleteByEmail(dbc dbctx.Context, email string) error {
	return dbc.DB(r.db).Unscoped().Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Delete(&models.OTP{}).Error
}

func (r *OTPRepository) PurgeExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	res := dbc.DB(r.db).Unscoped().Where("expires_at < ?", now).Delete(&models.OTP{})
	return res.RowsAffected, res.Error
}
