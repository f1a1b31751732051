package repository

import (
	"devlaunch/database/dbctx"
	"devlaunch/models/course"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Create(dbc dbctx.Context, rec *course.EnrollmentRecord) error {
	if rec.CompletedVideos == nil {
		rec.CompletedVideos = []string{}
	}
	return dbc.DB(r.db).Create(rec).Error
}

func (r *EnrollmentRepository) Get(dbc dbctx.Context, userID, courseID uint) (*course.EnrollmentRecord, error) {
	var rec course.EnrollmentRecord
	if err := dbc.DB(r.db).Where("user_id = ? AND course_id = ?", userID, courseID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Exists is a membership test by course id.
func (r *EnrollmentRepository) Exists(dbc dbctx.Context, userID, courseID uint) (bool, error) {
	var n int64
	err := dbc.DB(r.db).Model(&course.EnrollmentRecord{}).Where("user_id = ? AND course_id = ?", userID, courseID).Count(&n).Error
	return n > 0, err
}

// ListByUser returns the user's records in enrollment order with their courses.
func (r *EnrollmentRepository) ListByUser(dbc dbctx.Context, userID uint) ([]course.EnrollmentRecord, error) {
	var recs []course.EnrollmentRecord
	err := dbc.DB(r.db).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&recs).Error
	return recs, err
}

// SaveProgress persists progress and completed keys if the record is still at rec.Version.
func (r *EnrollmentRepository) SaveProgress(dbc dbctx.Context, rec *course.EnrollmentRecord) error {
	return r.saveVersioned(dbc, rec, map[string]interface{}{
		"progress":         rec.Progress,
		"completed_videos": rec.CompletedVideos,
	})
}

// SaveCertificate persists the certificate reference if the record is still at rec.Version.
func (r *EnrollmentRepository) SaveCertificate(dbc dbctx.Context, rec *course.EnrollmentRecord) error {
	return r.saveVersioned(dbc, rec, map[string]interface{}{
		"certificate_key": rec.CertificateKey,
		"certificate_no":  rec.CertificateNo,
		"certified_at":    rec.CertifiedAt,
	})
}

func (r *EnrollmentRepository) saveVersioned(dbc dbctx.Context, rec *course.EnrollmentRecord, fields map[string]interface{}) error {
	fields["version"] = gorm.Expr("version + 1")
	res := dbc.DB(r.db).Model(&course.EnrollmentRecord{}).
		Where("id = ? AND version = ?", rec.ID, rec.Version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleRecord
	}
	rec.Version++
	return nil
}

// MarkSettled moves ledger_progress from one value to another. It reports
// false when the row no longer holds from.
func (r *EnrollmentRepository) MarkSettled(dbc dbctx.Context, id uint, from, to int) (bool, error) {
	res := dbc.DB(r.db).Model(&course.EnrollmentRecord{}).
		Where("id = ? AND ledger_progress = ?", id, from).
		UpdateColumn("ledger_progress", to)
	return res.RowsAffected > 0, res.Error
}

// SettleCourse marks every record of a course as fully folded into its ledger.
func (r *EnrollmentRepository) SettleCourse(dbc dbctx.Context, courseID uint) error {
	return dbc.DB(r.db).Model(&course.EnrollmentRecord{}).
		Where("course_id = ? AND ledger_progress <> progress", courseID).
		UpdateColumn("ledger_progress", gorm.Expr("progress")).Error
}

// Recount sums the individual records of a course. Full scan; audit path only.
func (r *EnrollmentRepository) Recount(dbc dbctx.Context, courseID uint) (Counters, error) {
	var row struct {
		Enrollments int64
		ProgressSum int64
	}
	err := dbc.DB(r.db).Model(&course.EnrollmentRecord{}).
		Select("COUNT(*) AS enrollments, COALESCE(SUM(progress), 0) AS progress_sum").
		Where("course_id = ?", courseID).
		Scan(&row).Error
	if err != nil {
		return Counters{}, err
	}
	return Counters{TotalEnrollments: row.Enrollments, TotalProgressSum: row.ProgressSum}, nil
}

// DeleteByUser hard-deletes all of a user's records and returns what was removed.
func (r *EnrollmentRepository) DeleteByUser(dbc dbctx.Context, userID uint) ([]course.EnrollmentRecord, error) {
	db := dbc.DB(r.db)
	var recs []course.EnrollmentRecord
	if err := db.Where("user_id = ?", userID).Find(&recs).Error; err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	if err := db.Unscoped().Where("user_id = ?", userID).Delete(&course.EnrollmentRecord{}).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
