package certificate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devlaunch/database/dbctx"
	"devlaunch/logger"
	"devlaunch/models"
	"devlaunch/models/course"
	"devlaunch/repository"
	"devlaunch/services/learning"
	"devlaunch/services/storage"

	"github.com/google/uuid"
)

const maxSaveAttempts = 3

type EnrollmentStore interface {
	Get(dbc dbctx.Context, userID, courseID uint) (*course.EnrollmentRecord, error)
	SaveCertificate(dbc dbctx.Context, rec *course.EnrollmentRecord) error
}

type CourseReader interface {
	GetByID(dbc dbctx.Context, id uint) (*course.Course, error)
}

type UserReader interface {
	GetByID(dbc dbctx.Context, id uint) (*models.User, error)
}

// Issuer hands out certificates for completed courses. A certificate is
// rendered once; later requests re-sign the stored object.
type Issuer struct {
	enrollments EnrollmentStore
	courses     CourseReader
	users       UserReader
	store       storage.ObjectStore
	renderer    *Renderer
	log         *logger.Logger
	now         func() time.Time
}

func NewIssuer(enrollments EnrollmentStore, courses CourseReader, users UserReader, store storage.ObjectStore, renderer *Renderer, log *logger.Logger) *Issuer {
	return &Issuer{
		enrollments: enrollments,
		courses:     courses,
		users:       users,
		store:       store,
		renderer:    renderer,
		log:         log.With("service", "CertificateIssuer"),
		now:         time.Now,
	}
}

func (i *Issuer) Issue(ctx context.Context, userID, courseID uint) (*course.Certificate, error) {
	dbc := dbctx.New(ctx)
	var uploaded string

	for attempt := 1; ; attempt++ {
		rec, err := i.enrollments.Get(dbc, userID, courseID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, fmt.Errorf("%w: course not found in your enrolled list", learning.ErrNotFound)
			}
			return nil, err
		}
		if rec.Progress < 100 {
			return nil, fmt.Errorf("%w: complete the course to get a certificate", learning.ErrForbidden)
		}
		if rec.CertificateKey != "" {
			if uploaded != "" && uploaded != rec.CertificateKey {
				i.discard(ctx, uploaded)
			}
			return i.view(ctx, rec)
		}

		if uploaded == "" {
			no, key, issuedAt, err := i.renderAndUpload(ctx, userID, courseID)
			if err != nil {
				return nil, err
			}
			uploaded = key
			rec.CertificateNo = no
			rec.CertifiedAt = &issuedAt
		} else {
			issuedAt := i.now().UTC()
			rec.CertificateNo = certificateNumber(courseID, userID, uploaded)
			rec.CertifiedAt = &issuedAt
		}
		rec.CertificateKey = uploaded

		err = i.enrollments.SaveCertificate(dbc, rec)
		if err == nil {
			i.log.Info("Certificate issued", "userId", userID, "courseId", courseID, "key", uploaded)
			return i.view(ctx, rec)
		}
		if !errors.Is(err, repository.ErrStaleRecord) {
			i.discard(ctx, uploaded)
			return nil, err
		}
		if attempt == maxSaveAttempts {
			i.discard(ctx, uploaded)
			return nil, fmt.Errorf("%w: enrollment changed concurrently, retry", learning.ErrConflict)
		}
	}
}

func (i *Issuer) renderAndUpload(ctx context.Context, userID, courseID uint) (string, string, time.Time, error) {
	dbc := dbctx.New(ctx)
	c, err := i.courses.GetByID(dbc, courseID)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", "", time.Time{}, fmt.Errorf("%w: course not found", learning.ErrNotFound)
		}
		return "", "", time.Time{}, err
	}
	u, err := i.users.GetByID(dbc, userID)
	if err != nil {
		return "", "", time.Time{}, err
	}

	key := storage.CertificateKey(userID, courseID)
	no := certificateNumber(courseID, userID, key)
	issuedAt := i.now().UTC()
	png, err := i.renderer.Render(Data{
		StudentName:   u.Name,
		CourseTitle:   c.Title,
		CertificateNo: no,
		IssuedAt:      issuedAt,
	})
	if err != nil {
		return "", "", time.Time{}, err
	}
	if err := i.store.Upload(ctx, storage.CategoryCertificate, key, bytes.NewReader(png), "image/png"); err != nil {
		return "", "", time.Time{}, fmt.Errorf("upload certificate: %w", err)
	}
	return no, key, issuedAt, nil
}

func (i *Issuer) view(ctx context.Context, rec *course.EnrollmentRecord) (*course.Certificate, error) {
	url, err := i.store.SignedURL(ctx, storage.CategoryCertificate, rec.CertificateKey, storage.CertificateURLExpiry)
	if err != nil {
		return nil, err
	}
	cert := &course.Certificate{
		CourseID:          rec.CourseID,
		CertificateNumber: rec.CertificateNo,
		URL:               url,
	}
	if rec.CertifiedAt != nil {
		cert.IssuedAt = *rec.CertifiedAt
	}
	return cert, nil
}

func (i *Issuer) discard(ctx context.Context, key string) {
	if err := i.store.Delete(ctx, storage.CategoryCertificate, key); err != nil {
		i.log.Warn("Failed to delete orphaned certificate", "key", key, "error", err)
	}
}

// certificateNumber is "DL-<course>-<user>-<first uuid block of the key>".
func certificateNumber(courseID, userID uint, key string) string {
	suffix := key
	if idx := strings.LastIndex(key, "_"); idx >= 0 {
		suffix = strings.TrimSuffix(key[idx+1:], ".png")
	}
	if id, err := uuid.Parse(suffix); err == nil {
		suffix = strings.ToUpper(strings.SplitN(id.String(), "-", 2)[0])
	}
	return fmt.Sprintf("DL-%d-%d-%s", courseID, userID, suffix)
}
