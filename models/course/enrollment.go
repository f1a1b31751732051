package course

import (
	"slices"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnrollmentRecord is a user's progress in one course. It lives with the
// user (User.EnrolledCourses) and is removed only together with the user.
type EnrollmentRecord struct {
	gorm.Model
	UserID          uint                        `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID        uint                        `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course;index"`
	Progress        int                         `json:"progress" gorm:"not null;default:0"` // 0..100
	LedgerProgress  int                         `json:"-" gorm:"not null;default:0"`        // share of Progress folded into the course ledger
	CompletedVideos datatypes.JSONSlice[string] `json:"completed_videos"`
	CertificateKey  string                      `json:"-"`
	CertificateNo   string                      `json:"certificate_number,omitempty"`
	CertifiedAt     *time.Time                  `json:"certified_at,omitempty"`
	Version         int                         `json:"-" gorm:"not null;default:0"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// HasCompleted reports whether key is in the completed set.
func (r *EnrollmentRecord) HasCompleted(key string) bool {
	return slices.Contains(r.CompletedVideos, key)
}

// Toggle flips the membership of key and reports whether it is now completed.
func (r *EnrollmentRecord) Toggle(key string) bool {
	if i := slices.Index(r.CompletedVideos, key); i >= 0 {
		r.CompletedVideos = slices.Delete(slices.Clone(r.CompletedVideos), i, i+1)
		return false
	}
	r.CompletedVideos = append(slices.Clone(r.CompletedVideos), key)
	return true
}

// Completed returns a copy of the completed keys, never nil.
func (r *EnrollmentRecord) Completed() []string {
	out := make([]string, 0, len(r.CompletedVideos))
	return append(out, r.CompletedVideos...)
}
