package learning

import (
	"context"
	"errors"
	"fmt"

	"devlaunch/database/dbctx"
	"devlaunch/models/course"
	"devlaunch/repository"

	"gorm.io/gorm"
)

const maxSaveAttempts = 3

type ToggleRequest struct {
	UserID   uint   `json:"-" validate:"required"`
	CourseID uint   `json:"courseId" validate:"required"`
	VideoKey string `json:"videoKey" validate:"required,max=512"`
}

// ProgressView is a user's state in one course.
type ProgressView struct {
	CourseID        uint     `json:"courseId"`
	Progress        int      `json:"progress"`
	CompletedVideos []string `json:"completedVideos"`
}

func viewOf(rec *course.EnrollmentRecord) ProgressView {
	return ProgressView{CourseID: rec.CourseID, Progress: rec.Progress, CompletedVideos: rec.Completed()}
}

// ToggleVideo flips completion of one video for one user and folds the
// resulting progress delta into the course ledger.
//
// The user's record is saved first (optimistic, version-checked); the course
// counters are then moved by an in-store increment together with the record's
// ledger_progress. A failure between the two leaves the record correct and
// queues the course for audit repair.
func (s *Service) ToggleVideo(ctx context.Context, req ToggleRequest) (ProgressView, error) {
	if err := s.check(req); err != nil {
		return ProgressView{}, err
	}
	dbc := dbctx.New(ctx)

	if _, err := s.courses.GetByID(dbc, req.CourseID); err != nil {
		return ProgressView{}, notFound(err, "course not found")
	}
	totalVideos, err := s.courses.CountVideos(dbc, req.CourseID)
	if err != nil {
		return ProgressView{}, err
	}
	if totalVideos == 0 {
		return ProgressView{}, fmt.Errorf("%w: course has no videos", ErrInvalidState)
	}

	var (
		rec   *course.EnrollmentRecord
		delta int
	)
	for attempt := 1; ; attempt++ {
		rec, err = s.enrollments.Get(dbc, req.UserID, req.CourseID)
		if err != nil {
			return ProgressView{}, notFound(err, "course not found in your enrolled list")
		}
		previous := rec.Progress

		if !rec.HasCompleted(req.VideoKey) {
			exists, err := s.courses.VideoExists(dbc, req.CourseID, req.VideoKey)
			if err != nil {
				return ProgressView{}, err
			}
			if !exists {
				return ProgressView{}, fmt.Errorf("%w: video not found in course", ErrNotFound)
			}
		}

		rec.Toggle(req.VideoKey)
		rec.Progress = ComputeProgress(len(rec.CompletedVideos), int(totalVideos))
		delta = rec.Progress - previous

		err = s.enrollments.SaveProgress(dbc, rec)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrStaleRecord) {
			return ProgressView{}, err
		}
		if attempt == maxSaveAttempts {
			return ProgressView{}, fmt.Errorf("%w: enrollment changed concurrently, retry", ErrConflict)
		}
		s.log.Debug("Stale enrollment record, reloading", "userId", req.UserID, "courseId", req.CourseID, "attempt", attempt)
	}

	settled, err := s.settle(ctx, req.UserID, req.CourseID)
	if err != nil {
		s.log.Error("Ledger delta not applied; queued for audit",
			"courseId", req.CourseID, "userId", req.UserID, "delta", delta, "error", err)
		s.auditor.Enqueue(req.CourseID)
		return viewOf(rec), nil
	}
	if settled != 0 {
		s.refreshAverage(ctx, req.CourseID)
	}
	return viewOf(rec), nil
}

// settle folds whatever part of the record's progress is not yet in the
// course ledger into it. The record's ledger_progress and the course counter
// move in one transaction, so a repair that already counted the new progress
// leaves nothing to apply.
func (s *Service) settle(ctx context.Context, userID, courseID uint) (int, error) {
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		var (
			delta int
			moved bool
		)
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.New(ctx).WithTx(tx)
			rec, err := s.enrollments.Get(dbc, userID, courseID)
			if err != nil {
				return err
			}
			delta = rec.Progress - rec.LedgerProgress
			if delta == 0 {
				moved = true
				return nil
			}
			moved, err = s.enrollments.MarkSettled(dbc, rec.ID, rec.LedgerProgress, rec.Progress)
			if err != nil || !moved {
				return err
			}
			return s.courses.ApplyDelta(dbc, courseID, 0, int64(delta))
		})
		if err != nil {
			return 0, err
		}
		if moved {
			return delta, nil
		}
	}
	return 0, fmt.Errorf("%w: ledger settle kept racing", ErrConflict)
}

// Progress returns the stored state of a user in a course.
func (s *Service) Progress(ctx context.Context, userID, courseID uint) (ProgressView, error) {
	rec, err := s.enrollments.Get(dbctx.New(ctx), userID, courseID)
	if err != nil {
		return ProgressView{}, notFound(err, "course not found in your enrolled list")
	}
	return viewOf(rec), nil
}

// Enrollment returns the full record, for collaborators such as certificates.
func (s *Service) Enrollment(ctx context.Context, userID, courseID uint) (*course.EnrollmentRecord, error) {
	rec, err := s.enrollments.Get(dbctx.New(ctx), userID, courseID)
	if err != nil {
		return nil, notFound(err, "course not found in your enrolled list")
	}
	return rec, nil
}

// MyCourses lists the user's records in enrollment order.
func (s *Service) MyCourses(ctx context.Context, userID uint) ([]course.EnrollmentRecord, error) {
	recs, err := s.enrollments.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []course.EnrollmentRecord{}
	}
	return recs, nil
}
