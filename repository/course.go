package repository

import (
	"devlaunch/database/dbctx"
	"devlaunch/models/course"

	"gorm.io/gorm"
)

// Counters are the two exact ledger fields of a course.
type Counters struct {
	TotalEnrollments int64
	TotalProgressSum int64
}

// CourseStat is the read-only ledger projection.
type CourseStat struct {
	CourseID      uint    `json:"courseId"`
	Title         string  `json:"title"`
	TotalEnrolled int64   `json:"totalEnrolled"`
	AvgProgress   float64 `json:"avgProgress"`
}

type CourseFilter struct {
	Search        string
	PublishedOnly bool
	Page
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(dbc dbctx.Context, c *course.Course) error {
	return dbc.DB(r.db).Create(c).Error
}

// GetByID loads a non-deleted course without its videos.
func (r *CourseRepository) GetByID(dbc dbctx.Context, id uint) (*course.Course, error) {
	var c course.Course
	if err := dbc.DB(r.db).Where("id = ? AND is_deleted = ?", id, false).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetWithVideos loads a non-deleted course with its videos in display order.
func (r *CourseRepository) GetWithVideos(dbc dbctx.Context, id uint) (*course.Course, error) {
	var c course.Course
	err := dbc.DB(r.db).
		Preload("Videos", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) TitleTaken(dbc dbctx.Context, creatorID uint, title string, excludeID uint) (bool, error) {
	var count int64
	q := dbc.DB(r.db).Model(&course.Course{}).Where("creator_id = ? AND title = ?", creatorID, title)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CourseRepository) List(dbc dbctx.Context, f CourseFilter) ([]course.Course, int64, error) {
	f.Page = f.Page.Normalized(20)
	q := dbc.DB(r.db).Model(&course.Course{}).Where("is_deleted = ?", false)
	if f.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if f.Search != "" {
		q = q.Where("LOWER(title) LIKE ?", likePattern(f.Search))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var courses []course.Course
	if err := q.Order("created_at desc").Offset(f.Offset()).Limit(f.Limit).Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// UpdateFields writes catalog fields only; rollup columns are rejected.
func (r *CourseRepository) UpdateFields(dbc dbctx.Context, id uint, fields map[string]interface{}) error {
	for _, k := range []string{"total_enrollments", "total_progress_sum", "avg_progress"} {
		delete(fields, k)
	}
	if len(fields) == 0 {
		return nil
	}
	res := dbc.DB(r.db).Model(&course.Course{}).Where("id = ? AND is_deleted = ?", id, false).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CourseRepository) SoftDelete(dbc dbctx.Context, id uint) error {
	res := dbc.DB(r.db).Model(&course.Course{}).Where("id = ? AND is_deleted = ?", id, false).Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CourseRepository) CountVideos(dbc dbctx.Context, courseID uint) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&course.Video{}).Where("course_id = ?", courseID).Count(&n).Error
	return n, err
}

func (r *CourseRepository) VideoExists(dbc dbctx.Context, courseID uint, key string) (bool, error) {
	var n int64
	err := dbc.DB(r.db).Model(&course.Video{}).Where("course_id = ? AND object_key = ?", courseID, key).Count(&n).Error
	return n > 0, err
}

func (r *CourseRepository) AddVideo(dbc dbctx.Context, v *course.Video) error {
	db := dbc.DB(r.db)
	if v.OrderIndex == 0 {
		var maxIdx *int
		if err := db.Model(&course.Video{}).Where("course_id = ?", v.CourseID).Select("MAX(order_index)").Scan(&maxIdx).Error; err != nil {
			return err
		}
		if maxIdx != nil {
			v.OrderIndex = *maxIdx + 1
		}
	}
	return db.Create(v).Error
}

// DeleteVideo removes the video row; completed keys already stored on records are left alone.
func (r *CourseRepository) DeleteVideo(dbc dbctx.Context, courseID uint, key string) error {
	res := dbc.DB(r.db).Unscoped().Where("course_id = ? AND object_key = ?", courseID, key).Delete(&course.Video{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyDelta atomically adds to the ledger counters inside the store:
// a single UPDATE ... SET col = col + ?, never a client-side read-modify-write.
func (r *CourseRepository) ApplyDelta(dbc dbctx.Context, courseID uint, enrollDelta, progressDelta int64) error {
	if enrollDelta == 0 && progressDelta == 0 {
		return nil
	}
	res := dbc.DB(r.db).Model(&course.Course{}).Where("id = ?", courseID).UpdateColumns(map[string]interface{}{
		"total_enrollments":  gorm.Expr("total_enrollments + ?", enrollDelta),
		"total_progress_sum": gorm.Expr("total_progress_sum + ?", progressDelta),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReadCounters does a fresh read of the two exact counters.
func (r *CourseRepository) ReadCounters(dbc dbctx.Context, courseID uint) (Counters, error) {
	var c course.Course
	err := dbc.DB(r.db).Model(&course.Course{}).
		Select("total_enrollments", "total_progress_sum").
		Where("id = ?", courseID).
		Take(&c).Error
	if err != nil {
		return Counters{}, err
	}
	return Counters{TotalEnrollments: c.TotalEnrollments, TotalProgressSum: c.TotalProgressSum}, nil
}

func (r *CourseRepository) SetAverage(dbc dbctx.Context, courseID uint, avg float64) error {
	return dbc.DB(r.db).Model(&course.Course{}).Where("id = ?", courseID).UpdateColumn("avg_progress", avg).Error
}

// OverwriteLedger replaces all rollups; used only by audit repair.
func (r *CourseRepository) OverwriteLedger(dbc dbctx.Context, courseID uint, c Counters, avg float64) error {
	return dbc.DB(r.db).Model(&course.Course{}).Where("id = ?", courseID).UpdateColumns(map[string]interface{}{
		"total_enrollments":  c.TotalEnrollments,
		"total_progress_sum": c.TotalProgressSum,
		"avg_progress":       avg,
	}).Error
}

// IDs lists every course id, deleted ones included, since their ledgers still exist.
func (r *CourseRepository) IDs(dbc dbctx.Context) ([]uint, error) {
	var ids []uint
	err := dbc.DB(r.db).Model(&course.Course{}).Order("id asc").Pluck("id", &ids).Error
	return ids, err
}

// Stats returns the stored rollups of every live course without recomputation.
func (r *CourseRepository) Stats(dbc dbctx.Context) ([]CourseStat, error) {
	var stats []CourseStat
	err := dbc.DB(r.db).Model(&course.Course{}).
		Select("id AS course_id, title, total_enrollments AS total_enrolled, avg_progress").
		Where("is_deleted = ?", false).
		Order("id asc").
		Scan(&stats).Error
	return stats, err
}
