package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"devlaunch/config"
	"devlaunch/database/dbctx"
	"devlaunch/database/testutil"
	"devlaunch/logger"
	"devlaunch/models"
	"devlaunch/repository"
	"devlaunch/services/blacklist"
	"devlaunch/services/certificate"
	"devlaunch/services/email"
	"devlaunch/services/learning"
	"devlaunch/services/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app     *fiber.App
	db      *gorm.DB
	console *email.ConsoleSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.DB(t)
	cfg := config.FromEnv()
	cfg.JWTKey = "test-secret"
	cfg.SaltRound = bcrypt.MinCost

	store, err := storage.NewLocalStore(t.TempDir(), "http://api.test", cfg.JWTKey, logger.Nop())
	require.NoError(t, err)
	console := email.NewConsoleSender(logger.Nop())

	app := fiber.New()
	Setup(app, Deps{
		Config:    cfg,
		DB:        db,
		Learning:  learning.NewServiceFromDB(db, logger.Nop(), learning.Options{}),
		Store:     store,
		Mailer:    email.NewMailer(console),
		Blacklist: blacklist.NewDBStore(db),
		Renderer:  certificate.NewRenderer(""),
		Log:       logger.Nop(),
	})
	return &testServer{app: app, db: db, console: console}
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.send(t, req, token)
}

func (s *testServer) upload(t *testing.T, path, token, title, filename string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", title))
	require.NoError(t, w.WriteField("duration", "60"))
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.send(t, req, token)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (s *testServer) seedAdmin(t *testing.T, email string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repository.NewUserRepository(s.db).Create(dbctx.New(context.Background()), &models.User{
		Name: "Admin", Email: email, PasswordHash: string(hash), Role: models.RoleAdmin,
	}))
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	return decode[struct {
		Token string `json:"token"`
	}](t, env).Token
}

func (s *testServer) signup(t *testing.T, name, email string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var code string
	for _, msg := range s.console.Sent() {
		if msg.To == email && msg.Subject == "Your DevLaunch verification code" {
			code = regexp.MustCompile(`\d{6}`).FindString(msg.Text)
		}
	}
	require.Len(t, code, 6)

	status, env = s.do(t, http.MethodPost, "/auth/signup/verify-otp", "", map[string]string{"email": email, "code": "000000x"})
	require.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, env = s.do(t, http.MethodPost, "/auth/signup/verify-otp", "", map[string]string{"email": email, "code": code})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	return decode[struct {
		Token string `json:"token"`
	}](t, env).Token
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "Ann Learner", "ann@example.com")

	status, _ := s.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{
		"name": "Ann Again", "email": "ANN@example.com", "password": "password123",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, env := s.do(t, http.MethodPost, "/auth/send-otp", "", map[string]string{"email": "bad"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	errs := decode[map[string]string](t, env)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")

	status, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ann@example.com", "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.NotEmpty(t, s.login(t, "ann@example.com", "password123"))

	status, env = s.do(t, http.MethodGet, "/user/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	me := decode[models.User](t, env)
	assert.Equal(t, "ann@example.com", me.Email)
	assert.Equal(t, models.RoleUser, me.Role)

	status, _ = s.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/user/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCourseLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin(t, "admin@example.com")
	admin := s.login(t, "admin@example.com", "admin-password")
	student := s.signup(t, "Student One", "student@example.com")
	outsider := s.signup(t, "Outsider", "outsider@example.com")

	status, _ := s.do(t, http.MethodPost, "/courses", student, map[string]interface{}{"title": "Nope", "description": "not an admin"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env := s.do(t, http.MethodPost, "/courses", admin, map[string]interface{}{
		"title": "Go Basics", "description": "Learn Go from scratch", "category": "Web Development",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	courseID := decode[struct {
		ID uint `json:"ID"`
	}](t, env).ID
	base := fmt.Sprintf("/courses/%d", courseID)

	status, _ = s.do(t, http.MethodPost, "/courses", admin, map[string]interface{}{"title": "Go Basics", "description": "duplicate title"})
	assert.Equal(t, fiber.StatusConflict, status)

	var keys []string
	for i := 1; i <= 2; i++ {
		status, env = s.upload(t, base+"/videos", admin, fmt.Sprintf("Lesson %d", i), fmt.Sprintf("lesson%d.mp4", i))
		require.Equal(t, fiber.StatusCreated, status, env.Message)
		keys = append(keys, decode[struct {
			Key string `json:"key"`
		}](t, env).Key)
	}

	enroll := fmt.Sprintf("/user/courses/enroll/%d", courseID)
	status, _ = s.do(t, http.MethodPost, enroll, student, nil)
	assert.Equal(t, fiber.StatusForbidden, status, "unpublished")
	status, _ = s.do(t, http.MethodGet, base, student, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPatch, base, admin, map[string]interface{}{"is_published": true})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, enroll, student, nil)
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = s.do(t, http.MethodPost, enroll, student, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	signed := base + "/videos/signed-url?key=" + keys[0]
	status, _ = s.do(t, http.MethodGet, signed, outsider, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, env = s.do(t, http.MethodGet, signed, student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, decode[map[string]interface{}](t, env)["url"], "/files/video/"+keys[0])

	toggle := fmt.Sprintf("/user/me/courses/%d?videoKey=", courseID)
	status, env = s.do(t, http.MethodPatch, toggle+keys[0], student, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Equal(t, 50, decode[learning.ProgressView](t, env).Progress)
	status, _ = s.do(t, http.MethodPatch, toggle+"videos/unknown.mp4", student, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, base+"/certificate", student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = s.do(t, http.MethodPatch, toggle+keys[1], student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 100, decode[learning.ProgressView](t, env).Progress)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/user/me/courses/%d/progress", courseID), student, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.ElementsMatch(t, keys, decode[learning.ProgressView](t, env).CompletedVideos)

	status, env = s.do(t, http.MethodGet, base+"/certificate", student, nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Contains(t, decode[map[string]interface{}](t, env)["certificate_url"], "/files/certificate/certificates/")

	status, env = s.do(t, http.MethodGet, "/admin/stats", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := decode[StatsView](t, env)
	require.Len(t, stats.EnrollmentStats, 1)
	assert.Equal(t, int64(1), stats.EnrollmentStats[0].TotalEnrolled)
	assert.Equal(t, 100.0, stats.EnrollmentStats[0].AvgProgress)
	assert.Equal(t, int64(3), stats.TotalUsers)

	status, env = s.do(t, http.MethodPost, base+"/audit", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Ledger is consistent!", env.Message)

	status, _ = s.do(t, http.MethodGet, "/admin/stats", student, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = s.do(t, http.MethodGet, "/user/me", student, nil)
	require.Equal(t, fiber.StatusOK, status)
	studentID := decode[struct {
		ID uint `json:"ID"`
	}](t, env).ID
	status, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/admin/users/%d", studentID), admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/admin/stats", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats = decode[StatsView](t, env)
	assert.Equal(t, int64(0), stats.EnrollmentStats[0].TotalEnrolled)
	assert.Equal(t, 0.0, stats.EnrollmentStats[0].AvgProgress)
}

func TestToggleOnCourseWithoutVideos(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin(t, "admin@example.com")
	admin := s.login(t, "admin@example.com", "admin-password")
	student := s.signup(t, "Student Two", "two@example.com")

	status, env := s.do(t, http.MethodPost, "/courses", admin, map[string]interface{}{
		"title": "Empty", "description": "no videos yet", "is_published": true,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	courseID := decode[struct {
		ID uint `json:"ID"`
	}](t, env).ID

	status, _ = s.do(t, http.MethodPost, fmt.Sprintf("/user/courses/enroll/%d", courseID), student, nil)
	require.Equal(t, fiber.StatusCreated, status)

	status, env = s.do(t, http.MethodPatch, fmt.Sprintf("/user/me/courses/%d?videoKey=videos/a.mp4", courseID), student, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Course has no videos", env.Message)
}

func (s *testServer) patchThumbnail(t *testing.T, path, token, filename string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("description", "now with a cover image"))
	part, err := w.CreateFormFile("thumbnail", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPatch, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.send(t, req, token)
}

func TestUpdateCourseReplacesThumbnail(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin(t, "admin@example.com")
	admin := s.login(t, "admin@example.com", "admin-password")

	status, env := s.do(t, http.MethodPost, "/courses", admin, map[string]interface{}{
		"title": "Covers", "description": "thumbnail handling", "is_published": true,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	courseID := decode[struct {
		ID uint `json:"ID"`
	}](t, env).ID
	base := fmt.Sprintf("/courses/%d", courseID)

	type courseView struct {
		Description  string `json:"description"`
		ThumbnailURL string `json:"thumbnail_url"`
	}

	status, env = s.patchThumbnail(t, base, admin, "first.png")
	require.Equal(t, fiber.StatusOK, status, env.Message)
	first := decode[courseView](t, env)
	assert.Equal(t, "now with a cover image", first.Description)
	assert.Contains(t, first.ThumbnailURL, "http://api.test/files/thumbnail/thumbnails/")
	assert.Contains(t, first.ThumbnailURL, "first.png")

	status, env = s.patchThumbnail(t, base, admin, "second.png")
	require.Equal(t, fiber.StatusOK, status, env.Message)
	second := decode[courseView](t, env)
	assert.Contains(t, second.ThumbnailURL, "second.png")
	assert.NotEqual(t, first.ThumbnailURL, second.ThumbnailURL)

	// the replaced object is gone, the new one is served
	oldPath := strings.TrimPrefix(first.ThumbnailURL, "http://api.test")
	newPath := strings.TrimPrefix(second.ThumbnailURL, "http://api.test")
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, oldPath, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, newPath, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCourseCatalogIsPublic(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin(t, "admin@example.com")
	admin := s.login(t, "admin@example.com", "admin-password")

	for _, c := range []struct {
		title     string
		published bool
	}{{"Open Course", true}, {"Hidden Draft", false}} {
		status, env := s.do(t, http.MethodPost, "/courses", admin, map[string]interface{}{
			"title": c.title, "description": "catalog entry", "is_published": c.published,
		})
		require.Equal(t, fiber.StatusCreated, status, env.Message)
	}

	status, env := s.do(t, http.MethodGet, "/courses?search=course", "", nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	list := decode[struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
		Total int64 `json:"total"`
	}](t, env)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Open Course", list.Items[0].Title)
	assert.Equal(t, int64(1), list.Total)

	status, _ = s.do(t, http.MethodGet, "/courses/1", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status, "course detail still needs a token")
}

// StatsView mirrors the admin stats payload.
type StatsView struct {
	TotalUsers      int64                   `json:"totalUsers"`
	TotalCourses    int                     `json:"totalCourses"`
	EnrollmentStats []repository.CourseStat `json:"enrollmentStats"`
}
