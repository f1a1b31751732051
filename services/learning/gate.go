package learning

import (
	"context"
	"fmt"

	"devlaunch/database/dbctx"
	"devlaunch/models/course"
	"devlaunch/repository"

	"gorm.io/gorm"
)

type EnrollRequest struct {
	UserID   uint `json:"-" validate:"required"`
	CourseID uint `json:"courseId" validate:"required"`
}

// Enroll admits a user to a published course. The zero-progress record and
// the +1 on totalEnrollments commit together or not at all.
func (s *Service) Enroll(ctx context.Context, req EnrollRequest) (*course.EnrollmentRecord, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	var rec *course.EnrollmentRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)

		if _, err := s.users.GetByID(dbc, req.UserID); err != nil {
			return notFound(err, "user not found")
		}
		c, err := s.courses.GetByID(dbc, req.CourseID)
		if err != nil {
			return notFound(err, "course not found")
		}
		if !c.IsPublished {
			return fmt.Errorf("%w: course is not published yet", ErrForbidden)
		}

		enrolled, err := s.enrollments.Exists(dbc, req.UserID, req.CourseID)
		if err != nil {
			return err
		}
		if enrolled {
			return fmt.Errorf("%w: already enrolled in this course", ErrConflict)
		}

		rec = &course.EnrollmentRecord{
			UserID:          req.UserID,
			CourseID:        req.CourseID,
			Progress:        0,
			CompletedVideos: []string{},
		}
		if err := s.enrollments.Create(dbc, rec); err != nil {
			if repository.IsUniqueViolation(err) {
				return fmt.Errorf("%w: already enrolled in this course", ErrConflict)
			}
			return err
		}
		return s.courses.ApplyDelta(dbc, req.CourseID, 1, 0)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("User enrolled", "userId", req.UserID, "courseId", req.CourseID)
	s.refreshAverage(ctx, req.CourseID)
	return rec, nil
}
