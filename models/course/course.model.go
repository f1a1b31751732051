package course

import "gorm.io/gorm"

// Category values accepted for a course.
var Categories = []string{"Web Development", "Mobile Development", "Data Science", "Design", "Other"}

// Course represents a catalog entry together with its enrollment rollups.
//
// TotalEnrollments and TotalProgressSum are only ever changed through
// repository.CourseRepository.ApplyDelta (or an audit repair), never by
// saving a loaded Course.
type Course struct {
	gorm.Model
	Title        string  `json:"title" gorm:"not null;uniqueIndex:idx_course_title_creator"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	CreatorID    uint    `json:"creator_id" gorm:"not null;uniqueIndex:idx_course_title_creator"`
	IsFree       bool    `json:"is_free" gorm:"default:true"`
	Price        float64 `json:"price" gorm:"default:0"`
	ThumbnailURL string  `json:"thumbnail_url"`
	ThumbnailKey string  `json:"-"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`
	IsDeleted    bool    `json:"-" gorm:"default:false;index"`

	TotalEnrollments int64   `json:"total_enrollments" gorm:"not null;default:0"`
	TotalProgressSum int64   `json:"total_progress_sum" gorm:"not null;default:0"`
	AvgProgress      float64 `json:"avg_progress" gorm:"not null;default:0"`

	Videos []Video `json:"videos,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

// Video is a course video; only the object key is stored, never a URL.
type Video struct {
	gorm.Model
	CourseID    uint    `json:"course_id" gorm:"not null;uniqueIndex:idx_video_course_key"`
	Key         string  `json:"key" gorm:"column:object_key;not null;size:512;uniqueIndex:idx_video_course_key"`
	Title       string  `json:"title" gorm:"not null"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration" gorm:"default:0"` // seconds
	OrderIndex  int     `json:"order_index" gorm:"default:0"`
}
