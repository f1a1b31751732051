package learning

import (
	"context"
	"math"

	"devlaunch/database/dbctx"
	"devlaunch/repository"
)

// ComputeProgress returns round-half-up(100*completed/total), capped at 100.
// total must be positive.
func ComputeProgress(completed, total int) int {
	if completed <= 0 {
		return 0
	}
	p := (200*completed + total) / (2 * total)
	if p > 100 {
		return 100
	}
	return p
}

// ComputeAverage is the single derivation of avgProgress: sum/count to two
// decimals, 0 for an empty course.
func ComputeAverage(sum, count int64) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*100) / 100
}

// LedgerStats is the reporting projection over every course.
type LedgerStats struct {
	TotalCourses    int                     `json:"totalCourses"`
	EnrollmentStats []repository.CourseStat `json:"enrollmentStats"`
}

// Stats returns the rollups exactly as last written by Enroll/ToggleVideo.
func (s *Service) Stats(ctx context.Context) (LedgerStats, error) {
	stats, err := s.courses.Stats(dbctx.New(ctx))
	if err != nil {
		return LedgerStats{}, err
	}
	if stats == nil {
		stats = []repository.CourseStat{}
	}
	return LedgerStats{TotalCourses: len(stats), EnrollmentStats: stats}, nil
}

// refreshAverage re-reads both counters and stores the derived average.
// Concurrent refreshes may briefly leave a stale average; the next one converges it.
func (s *Service) refreshAverage(ctx context.Context, courseID uint) {
	dbc := dbctx.New(ctx)
	counters, err := s.courses.ReadCounters(dbc, courseID)
	if err == nil {
		err = s.courses.SetAverage(dbc, courseID, ComputeAverage(counters.TotalProgressSum, counters.TotalEnrollments))
	}
	if err != nil {
		s.log.Warn("Failed to refresh average progress", "courseId", courseID, "error", err)
		s.auditor.Enqueue(courseID)
	}
}
