package repository

import (
	"context"
	"testing"

	"devlaunch/database/dbctx"
	"devlaunch/database/testutil"
	"devlaunch/models"
	"devlaunch/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*EnrollmentRepository, *CourseRepository, *course.EnrollmentRecord) {
	t.Helper()
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())

	u := &models.User{Name: "Ann", Email: "ANN@Example.com ", PasswordHash: "x"}
	require.NoError(t, NewUserRepository(db).Create(dbc, u))
	assert.Equal(t, "ann@example.com", u.Email)

	courses := NewCourseRepository(db)
	c := &course.Course{Title: "Go", CreatorID: u.ID, IsPublished: true}
	require.NoError(t, courses.Create(dbc, c))

	enrollments := NewEnrollmentRepository(db)
	rec := &course.EnrollmentRecord{UserID: u.ID, CourseID: c.ID}
	require.NoError(t, enrollments.Create(dbc, rec))
	return enrollments, courses, rec
}

func TestSaveProgressDetectsStaleVersion(t *testing.T) {
	enrollments, _, rec := seed(t)
	dbc := dbctx.New(context.Background())

	first, err := enrollments.Get(dbc, rec.UserID, rec.CourseID)
	require.NoError(t, err)
	second, err := enrollments.Get(dbc, rec.UserID, rec.CourseID)
	require.NoError(t, err)

	first.Toggle("a")
	first.Progress = 50
	require.NoError(t, enrollments.SaveProgress(dbc, first))
	assert.Equal(t, 1, first.Version)

	second.Toggle("b")
	second.Progress = 50
	assert.ErrorIs(t, enrollments.SaveProgress(dbc, second), ErrStaleRecord)

	stored, err := enrollments.Get(dbc, rec.UserID, rec.CourseID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, stored.Completed())
}

func TestApplyDeltaAndRecount(t *testing.T) {
	enrollments, courses, rec := seed(t)
	dbc := dbctx.New(context.Background())

	require.NoError(t, courses.ApplyDelta(dbc, rec.CourseID, 1, 0))
	require.NoError(t, courses.ApplyDelta(dbc, rec.CourseID, 0, 40))
	require.NoError(t, courses.ApplyDelta(dbc, rec.CourseID, 0, -15))
	assert.True(t, IsNotFound(courses.ApplyDelta(dbc, 999, 0, 1)))

	ledger, err := courses.ReadCounters(dbc, rec.CourseID)
	require.NoError(t, err)
	assert.Equal(t, Counters{TotalEnrollments: 1, TotalProgressSum: 25}, ledger)

	actual, err := enrollments.Recount(dbc, rec.CourseID)
	require.NoError(t, err)
	assert.Equal(t, Counters{TotalEnrollments: 1, TotalProgressSum: 0}, actual)
}

func TestUpdateFieldsIgnoresRollups(t *testing.T) {
	_, courses, rec := seed(t)
	dbc := dbctx.New(context.Background())

	require.NoError(t, courses.UpdateFields(dbc, rec.CourseID, map[string]interface{}{
		"title":              "Go Deep",
		"total_progress_sum": 9000,
	}))
	c, err := courses.GetByID(dbc, rec.CourseID)
	require.NoError(t, err)
	assert.Equal(t, "Go Deep", c.Title)
	assert.Equal(t, int64(0), c.TotalProgressSum)

	require.NoError(t, courses.SoftDelete(dbc, rec.CourseID))
	_, err = courses.GetByID(dbc, rec.CourseID)
	assert.True(t, IsNotFound(err))

	ids, err := courses.IDs(dbc)
	require.NoError(t, err)
	assert.Equal(t, []uint{rec.CourseID}, ids)
}

func TestPageNormalization(t *testing.T) {
	tests := []struct {
		in         Page
		wantLimit  int
		wantOffset int
	}{
		{in: Page{}, wantLimit: 10, wantOffset: 0},
		{in: Page{Page: 3, Limit: 5}, wantLimit: 5, wantOffset: 10},
		{in: Page{Page: 2, Limit: 1000}, wantLimit: 100, wantOffset: 100},
	}
	for _, tt := range tests {
		p := tt.in.Normalized(10)
		assert.Equal(t, tt.wantLimit, p.Limit)
		assert.Equal(t, tt.wantOffset, p.Offset())
	}
}
