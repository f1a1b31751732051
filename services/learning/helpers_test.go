package learning

import (
	"context"
	"fmt"
	"testing"

	"devlaunch/database/dbctx"
	"devlaunch/database/testutil"
	"devlaunch/logger"
	"devlaunch/models"
	"devlaunch/models/course"
	"devlaunch/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	courses *repository.CourseRepository
	users   *repository.UserRepository
	ctx     context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	return &fixture{
		db:      db,
		svc:     NewServiceFromDB(db, logger.Nop(), Options{}),
		courses: repository.NewCourseRepository(db),
		users:   repository.NewUserRepository(db),
		ctx:     context.Background(),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@test.test", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, f.users.Create(dbctx.New(f.ctx), u))
	return u
}

// course creates a course owned by a fresh admin with the given number of videos.
func (f *fixture) course(t *testing.T, title string, published bool, videos int) *course.Course {
	t.Helper()
	owner := &models.User{Name: "owner-" + title, Email: "owner-" + title + "@test.test", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, f.users.Create(dbctx.New(f.ctx), owner))

	c := &course.Course{Title: title, Description: "a test course", CreatorID: owner.ID, IsPublished: published}
	require.NoError(t, f.courses.Create(dbctx.New(f.ctx), c))
	for i := 1; i <= videos; i++ {
		require.NoError(t, f.courses.AddVideo(dbctx.New(f.ctx), &course.Video{
			CourseID: c.ID,
			Key:      videoKey(i),
			Title:    fmt.Sprintf("Video %d", i),
		}))
	}
	return c
}

func (f *fixture) ledger(t *testing.T, courseID uint) course.Course {
	t.Helper()
	var c course.Course
	require.NoError(t, f.db.First(&c, courseID).Error)
	return c
}

func videoKey(i int) string {
	return fmt.Sprintf("videos/v%d.mp4", i)
}
