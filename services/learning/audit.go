package learning

import (
	"context"
	"fmt"
	"sync"
	"time"

	"devlaunch/database/dbctx"
	"devlaunch/logger"
	"devlaunch/repository"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditReport compares a course's ledger with the sum of its enrollment records.
type AuditReport struct {
	CourseID uint                `json:"courseId"`
	Ledger   repository.Counters `json:"ledger"`
	Actual   repository.Counters `json:"actual"`
	Repaired bool                `json:"repaired"`
}

func (r AuditReport) Drift() bool {
	return r.Ledger != r.Actual
}

// AuditCourse recomputes the course from its records by full scan. Drift is
// returned as ErrInconsistencyDetected alongside the report.
func (s *Service) AuditCourse(ctx context.Context, courseID uint) (AuditReport, error) {
	dbc := dbctx.New(ctx)
	ledger, err := s.courses.ReadCounters(dbc, courseID)
	if err != nil {
		return AuditReport{}, notFound(err, "course not found")
	}
	actual, err := s.enrollments.Recount(dbc, courseID)
	if err != nil {
		return AuditReport{}, err
	}
	report := AuditReport{CourseID: courseID, Ledger: ledger, Actual: actual}
	if report.Drift() {
		return report, fmt.Errorf("%w: course %d ledger=%+v actual=%+v", ErrInconsistencyDetected, courseID, ledger, actual)
	}
	return report, nil
}

// RepairCourse overwrites the ledger with a recomputation and marks every
// record as settled in the same transaction, so a toggle whose delta is still
// in flight applies nothing afterwards. The course row is locked for the
// duration where the dialect supports it.
func (s *Service) RepairCourse(ctx context.Context, courseID uint) (AuditReport, error) {
	var report AuditReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() != "sqlite" {
			var id uint
			if err := tx.Table("courses").Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").Where("id = ?", courseID).Scan(&id).Error; err != nil {
				return err
			}
		}
		dbc := dbctx.New(ctx).WithTx(tx)
		ledger, err := s.courses.ReadCounters(dbc, courseID)
		if err != nil {
			return notFound(err, "course not found")
		}
		if err := s.enrollments.SettleCourse(dbc, courseID); err != nil {
			return err
		}
		actual, err := s.enrollments.Recount(dbc, courseID)
		if err != nil {
			return err
		}
		report = AuditReport{CourseID: courseID, Ledger: ledger, Actual: actual}
		if err := s.courses.OverwriteLedger(dbc, courseID, actual, ComputeAverage(actual.TotalProgressSum, actual.TotalEnrollments)); err != nil {
			return err
		}
		report.Repaired = true
		return nil
	})
	if err != nil {
		return AuditReport{}, err
	}
	if report.Drift() {
		s.log.Warn("Ledger repaired", "courseId", courseID, "ledger", report.Ledger, "actual", report.Actual)
	}
	return report, nil
}

// Auditor serialises on-demand repairs and runs the periodic sweep.
type Auditor struct {
	svc   *Service
	opts  Options
	queue chan uint
	log   *logger.Logger

	mu      sync.Mutex
	pending map[uint]struct{}
}

func newAuditor(svc *Service, opts Options) *Auditor {
	return &Auditor{
		svc:     svc,
		opts:    opts,
		queue:   make(chan uint, opts.AuditQueueSize),
		log:     svc.log.With("component", "Auditor"),
		pending: make(map[uint]struct{}),
	}
}

// Enqueue schedules a background audit of courseID. Requests for a course
// still waiting in the queue collapse; a full queue drops the request and
// leaves it to the next sweep.
func (a *Auditor) Enqueue(courseID uint) {
	a.mu.Lock()
	if _, ok := a.pending[courseID]; ok {
		a.mu.Unlock()
		return
	}
	a.pending[courseID] = struct{}{}
	a.mu.Unlock()

	select {
	case a.queue <- courseID:
	default:
		a.done(courseID)
		a.log.Warn("Audit queue full, dropping request", "courseId", courseID)
	}
}

func (a *Auditor) done(courseID uint) {
	a.mu.Lock()
	delete(a.pending, courseID)
	a.mu.Unlock()
}

// Pending reports how many courses are waiting for an audit.
func (a *Auditor) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Run drains the queue until ctx is cancelled.
func (a *Auditor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-a.queue:
			if _, err := a.Check(ctx, id); err != nil {
				a.log.Error("Audit failed", "courseId", id, "error", err)
			}
			a.done(id)
		}
	}
}

// Check audits one course and repairs it if the drift is still there after
// the settle delay (in-flight toggles commit their delta in that window).
func (a *Auditor) Check(ctx context.Context, courseID uint) (AuditReport, error) {
	report, err := a.svc.AuditCourse(ctx, courseID)
	if !report.Drift() {
		return report, err
	}
	a.log.Warn("Ledger drift detected", "courseId", courseID, "ledger", report.Ledger, "actual", report.Actual)

	if a.opts.AuditSettle > 0 {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-time.After(a.opts.AuditSettle):
		}
		report, err = a.svc.AuditCourse(ctx, courseID)
		if !report.Drift() {
			return report, err
		}
	}
	return a.svc.RepairCourse(ctx, courseID)
}

// AuditAll checks every course with bounded concurrency and returns the
// number of repaired ledgers.
func (a *Auditor) AuditAll(ctx context.Context) (int, error) {
	ids, err := a.svc.courses.IDs(dbctx.New(ctx))
	if err != nil {
		return 0, err
	}

	var (
		mu       sync.Mutex
		repaired int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.AuditConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			report, err := a.Check(gctx, id)
			if err != nil {
				return fmt.Errorf("course %d: %w", id, err)
			}
			if report.Repaired {
				mu.Lock()
				repaired++
				mu.Unlock()
			}
			return nil
		})
	}
	err = g.Wait()
	a.log.Info("Ledger audit finished", "courses", len(ids), "repaired", repaired)
	return repaired, err
}
