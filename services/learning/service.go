package learning

import (
	"fmt"
	"time"

	"devlaunch/database/dbctx"
	"devlaunch/logger"
	"devlaunch/models"
	"devlaunch/models/course"
	"devlaunch/repository"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type CourseStore interface {
	GetByID(dbc dbctx.Context, id uint) (*course.Course, error)
	CountVideos(dbc dbctx.Context, courseID uint) (int64, error)
	VideoExists(dbc dbctx.Context, courseID uint, key string) (bool, error)
	ApplyDelta(dbc dbctx.Context, courseID uint, enrollDelta, progressDelta int64) error
	ReadCounters(dbc dbctx.Context, courseID uint) (repository.Counters, error)
	SetAverage(dbc dbctx.Context, courseID uint, avg float64) error
	OverwriteLedger(dbc dbctx.Context, courseID uint, c repository.Counters, avg float64) error
	IDs(dbc dbctx.Context) ([]uint, error)
	Stats(dbc dbctx.Context) ([]repository.CourseStat, error)
}

type EnrollmentStore interface {
	Create(dbc dbctx.Context, rec *course.EnrollmentRecord) error
	Get(dbc dbctx.Context, userID, courseID uint) (*course.EnrollmentRecord, error)
	Exists(dbc dbctx.Context, userID, courseID uint) (bool, error)
	ListByUser(dbc dbctx.Context, userID uint) ([]course.EnrollmentRecord, error)
	SaveProgress(dbc dbctx.Context, rec *course.EnrollmentRecord) error
	MarkSettled(dbc dbctx.Context, id uint, from, to int) (bool, error)
	SettleCourse(dbc dbctx.Context, courseID uint) error
	Recount(dbc dbctx.Context, courseID uint) (repository.Counters, error)
	DeleteByUser(dbc dbctx.Context, userID uint) ([]course.EnrollmentRecord, error)
}

type UserStore interface {
	GetByID(dbc dbctx.Context, id uint) (*models.User, error)
	HardDelete(dbc dbctx.Context, id uint) error
}

type Options struct {
	// AuditSettle is how long the auditor waits before confirming drift.
	AuditSettle time.Duration
	// AuditConcurrency bounds AuditAll fan-out.
	AuditConcurrency int
	// AuditQueueSize bounds pending on-demand repairs.
	AuditQueueSize int
}

func (o Options) withDefaults() Options {
	if o.AuditConcurrency < 1 {
		o.AuditConcurrency = 4
	}
	if o.AuditQueueSize < 1 {
		o.AuditQueueSize = 256
	}
	return o
}

// Service owns the enrollment gate, the reconciliation engine and the ledger.
type Service struct {
	db          *gorm.DB
	courses     CourseStore
	enrollments EnrollmentStore
	users       UserStore
	validate    *validator.Validate
	auditor     *Auditor
	log         *logger.Logger
}

func NewService(db *gorm.DB, courses CourseStore, enrollments EnrollmentStore, users UserStore, log *logger.Logger, opts Options) *Service {
	s := &Service{
		db:          db,
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		validate:    validator.New(),
		log:         log.With("service", "LearningService"),
	}
	s.auditor = newAuditor(s, opts.withDefaults())
	return s
}

// NewServiceFromDB wires the gorm repositories.
func NewServiceFromDB(db *gorm.DB, log *logger.Logger, opts Options) *Service {
	return NewService(
		db,
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewUserRepository(db),
		log,
		opts,
	)
}

func (s *Service) Auditor() *Auditor {
	return s.auditor
}

func (s *Service) check(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// notFound maps a missing row to ErrNotFound with msg and passes other errors through.
func notFound(err error, msg string) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return err
}
