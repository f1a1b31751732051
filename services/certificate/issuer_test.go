package certificate

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"devlaunch/database/dbctx"
	"devlaunch/database/testutil"
	"devlaunch/logger"
	"devlaunch/models"
	"devlaunch/models/course"
	"devlaunch/repository"
	"devlaunch/services/learning"
	"devlaunch/services/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)

	u := &models.User{Name: "Ann", Email: "ann@test.test", PasswordHash: "x"}
	require.NoError(t, users.Create(dbc, u))
	c := &course.Course{Title: "Go", CreatorID: u.ID, IsPublished: true}
	require.NoError(t, courses.Create(dbc, c))
	rec := &course.EnrollmentRecord{UserID: u.ID, CourseID: c.ID, Progress: 80}
	require.NoError(t, enrollments.Create(dbc, rec))

	store, err := storage.NewLocalStore(t.TempDir(), "http://api.test", "secret", logger.Nop())
	require.NoError(t, err)
	issuer := NewIssuer(enrollments, courses, users, store, NewRenderer(""), logger.Nop())

	_, err = issuer.Issue(ctx, u.ID, c.ID)
	assert.ErrorIs(t, err, learning.ErrForbidden)
	_, err = issuer.Issue(ctx, u.ID, c.ID+1)
	assert.ErrorIs(t, err, learning.ErrNotFound)

	require.NoError(t, db.Model(&course.EnrollmentRecord{}).Where("id = ?", rec.ID).Update("progress", 100).Error)

	first, err := issuer.Issue(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.CertificateNumber, "DL-"))
	assert.False(t, first.IssuedAt.IsZero())

	stored, err := enrollments.Get(dbc, u.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.CertificateKey, "certificates/"))
	p, err := store.Path(storage.CategoryCertificate, stored.CertificateKey)
	require.NoError(t, err)
	_, err = os.Stat(p)
	require.NoError(t, err)

	second, err := issuer.Issue(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber, "rendered once")
	link, err := url.Parse(second.URL)
	require.NoError(t, err)
	assert.Equal(t, "/files/certificate/"+stored.CertificateKey, link.Path)
}
