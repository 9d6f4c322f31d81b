package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/noticeboard-api/api"
	"github.com/sahilchouksey/noticeboard-api/database"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/utils/auth"
	"github.com/sahilchouksey/noticeboard-api/utils/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store, err := database.OpenSQLite(":memory:", logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	app := api.NewApp(false)
	SetupRoutes(app, store, Dependencies{
		JWTManager:      auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret", Issuer: "noticeboard-test"}),
		DefaultPassword: "changeme",
		Security: middleware.SecurityConfig{
			AllowedOrigins:    []string{"http://localhost:5173"},
			DisableRequestLog: true,
		},
	})
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return send(t, app, req)
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

type userPayload struct {
	ID     uint   `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Gender string `json:"gender"`
}

func register(t *testing.T, app *fiber.App, email, password, role string) userPayload {
	t.Helper()
	status, env := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": email, "password": password, "role": role,
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	var data struct {
		User userPayload `json:"user"`
	}
	decode(t, env, &data)
	return data.User
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, env := doJSON(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": email, "password": password,
	})
	require.Equal(t, fiber.StatusOK, status)

	var data struct {
		Token string `json:"token"`
	}
	decode(t, env, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

type coursePayload struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func createCourse(t *testing.T, app *fiber.App, token, name string) coursePayload {
	t.Helper()
	status, env := doJSON(t, app, fiber.MethodPost, "/api/courses", token, fiber.Map{"name": name})
	require.Equal(t, fiber.StatusCreated, status)

	var data struct {
		Course coursePayload `json:"course"`
	}
	decode(t, env, &data)
	return data.Course
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"OK"}`, string(body))
}

func TestUnknownRoute(t *testing.T) {
	status, env := doJSON(t, newTestApp(t), fiber.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRegisterLoginCreateCourse(t *testing.T) {
	app := newTestApp(t)

	admin := register(t, app, "a@x.com", "p", "ADMIN")
	assert.Equal(t, "ADMIN", admin.Role)
	assert.Equal(t, "MALE", admin.Gender)
	assert.Equal(t, "a", admin.Name)

	token := login(t, app, "a@x.com", "p")
	course := createCourse(t, app, token, "CS101")
	assert.Equal(t, "CS101", course.Name)
	assert.Regexp(t, `^COURSE-[A-Z0-9]{6}$`, course.Code)
}

func TestRegisterRejects(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "dup@x.com", "pw", "")

	status, env := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "dup@x.com", "password": "pw",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "EMAIL_EXISTS", env.Error.Code)

	status, env = doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "new@x.com", "password": "pw", "role": "STUDENT",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, env = doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"email": "not-an-email", "password": "pw",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestLoginWithWrongPassword(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "t@x.com", "right", "INSTRUCTOR")

	status, env := doJSON(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "t@x.com", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Empty(t, env.Data)

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "ghost@x.com", "password": "right",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAccessControl(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "t@x.com", "pw", "INSTRUCTOR")
	instructor := login(t, app, "t@x.com", "pw")

	status, env := doJSON(t, app, fiber.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, env = doJSON(t, app, fiber.MethodGet, "/api/auth/profile", "garbage", nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)

	status, env = doJSON(t, app, fiber.MethodGet, "/api/auth/admin-only", instructor, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, env = doJSON(t, app, fiber.MethodPost, "/api/courses", instructor, fiber.Map{"name": "x"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = doJSON(t, app, fiber.MethodGet, "/api/auth/profile", instructor, nil)
	assert.Equal(t, fiber.StatusOK, status)
	var data struct {
		User userPayload `json:"user"`
	}
	decode(t, env, &data)
	assert.Equal(t, "t@x.com", data.User.Email)
}

func TestNoticeFlow(t *testing.T) {
	app := newTestApp(t)

	register(t, app, "admin@x.com", "pw", "ADMIN")
	admin := login(t, app, "admin@x.com", "pw")
	register(t, app, "t@x.com", "pw", "INSTRUCTOR")
	instructor := login(t, app, "t@x.com", "pw")

	course := createCourse(t, app, admin, "Networks")

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/courses/join", instructor, fiber.Map{"code": course.Code})
	require.Equal(t, fiber.StatusOK, status)

	status, env := doJSON(t, app, fiber.MethodPost, "/api/courses/join", instructor, fiber.Map{"code": course.Code})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "ALREADY_ASSIGNED", env.Error.Code)

	status, env = doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/notices/admin/%d/new", course.ID), admin, fiber.Map{
		"title": "Exam", "content": "Friday 9am",
	})
	require.Equal(t, fiber.StatusCreated, status)
	var created struct {
		Notice struct {
			ID uint `json:"id"`
		} `json:"notice"`
	}
	decode(t, env, &created)
	noticeID := created.Notice.ID

	unread := func() int {
		status, env := doJSON(t, app, fiber.MethodGet, "/api/notices/unread-count", instructor, nil)
		require.Equal(t, fiber.StatusOK, status)
		var data struct {
			UnreadCount int `json:"unreadCount"`
		}
		decode(t, env, &data)
		return data.UnreadCount
	}
	assert.Equal(t, 1, unread())

	for i := 0; i < 2; i++ {
		status, _ = doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/notices/%d/view", noticeID), instructor, nil)
		require.Equal(t, fiber.StatusOK, status)
	}
	assert.Equal(t, 0, unread())

	status, _ = doJSON(t, app, fiber.MethodPost, fmt.Sprintf("/api/notices/%d/reply", noticeID), instructor, fiber.Map{"content": "Got it"})
	assert.Equal(t, fiber.StatusCreated, status)

	status, env = doJSON(t, app, fiber.MethodGet, "/api/notices/instructor/noticeboards", instructor, nil)
	require.Equal(t, fiber.StatusOK, status)
	var boards struct {
		NoticeBoards []struct {
			CourseCode string `json:"courseCode"`
			Notices    []struct {
				ViewCount int  `json:"viewCount"`
				IsViewed  bool `json:"isViewed"`
				Responses []struct {
					Content string `json:"content"`
				} `json:"responses"`
			} `json:"notices"`
		} `json:"noticeBoards"`
	}
	decode(t, env, &boards)
	require.Len(t, boards.NoticeBoards, 1)
	assert.Equal(t, course.Code, boards.NoticeBoards[0].CourseCode)
	require.Len(t, boards.NoticeBoards[0].Notices, 1)
	assert.Equal(t, 1, boards.NoticeBoards[0].Notices[0].ViewCount)
	assert.True(t, boards.NoticeBoards[0].Notices[0].IsViewed)
	assert.Equal(t, "Got it", boards.NoticeBoards[0].Notices[0].Responses[0].Content)

	status, _ = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/notices/%d/%d", course.ID, noticeID), instructor, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/notices/%d/%d", course.ID, noticeID+100), instructor, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = doJSON(t, app, fiber.MethodGet, "/api/dashboard/admin/stats", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	var stats struct {
		Statistics struct {
			TotalCourses     int `json:"totalCourses"`
			NoticeboardStats struct {
				ViewershipPercentage float64 `json:"viewershipPercentage"`
			} `json:"noticeboardStats"`
		} `json:"statistics"`
	}
	decode(t, env, &stats)
	assert.Equal(t, 1, stats.Statistics.TotalCourses)
	assert.Equal(t, 100.0, stats.Statistics.NoticeboardStats.ViewershipPercentage)
}

func TestInstructorAssignment(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "admin@x.com", "pw", "ADMIN")
	admin := login(t, app, "admin@x.com", "pw")
	a := register(t, app, "a@x.com", "pw", "INSTRUCTOR")
	b := register(t, app, "b@x.com", "pw", "INSTRUCTOR")

	course := createCourse(t, app, admin, "Compilers")

	reconcile := func(body fiber.Map) (int, services.ReconcileResult) {
		t.Helper()
		status, env := doJSON(t, app, fiber.MethodPost, "/api/courses/instructor", admin, body)
		var result services.ReconcileResult
		if status == fiber.StatusOK {
			decode(t, env, &result)
		}
		return status, result
	}

	status, result := reconcile(fiber.Map{"courseId": course.ID, "userIds": []uint{a.ID, b.ID}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []uint{a.ID, b.ID}, result.Added)

	// instructorIds is still accepted
	status, result = reconcile(fiber.Map{"courseId": course.ID, "instructorIds": []uint{a.ID}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []uint{b.ID}, result.Removed)
	assert.Empty(t, result.Added)

	status, _ = reconcile(fiber.Map{"courseId": course.ID, "userIds": []uint{b.ID, 9999}})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env := doJSON(t, app, fiber.MethodDelete, "/api/courses/instructor", admin, fiber.Map{"courseId": course.ID})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/courses/instructor", admin, fiber.Map{"courseId": course.ID, "userIds": []uint{a.ID}})
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/courses/instructor", admin, fiber.Map{"courseId": course.ID, "userIds": []uint{a.ID}})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCourseDeleteHidesCourse(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "admin@x.com", "pw", "ADMIN")
	admin := login(t, app, "admin@x.com", "pw")

	course := createCourse(t, app, admin, "Temporary")

	status, _ := doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/courses/%d", course.ID), admin, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/courses/%d", course.ID), "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env := doJSON(t, app, fiber.MethodGet, "/api/courses", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	var data struct {
		Courses []coursePayload `json:"courses"`
	}
	decode(t, env, &data)
	assert.Empty(t, data.Courses)
}

func TestUploadTeachers(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "admin@x.com", "pw", "ADMIN")
	admin := login(t, app, "admin@x.com", "pw")
	course := createCourse(t, app, admin, "Chemistry")

	upload := func(contentType, content string) (int, envelope) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="teachers.csv"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(fiber.MethodPost, "/api/courses/upload-teachers", body)
		req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
		return send(t, app, req)
	}

	csv := "Email,Name,CourseCode\nnew@x.com,New Teacher," + course.Code + "\n,Ghost," + course.Code + "\n"
	status, env := upload("text/csv", csv)
	require.Equal(t, fiber.StatusOK, status, env.Message)

	var data struct {
		Results struct {
			Success int      `json:"success"`
			Failed  int      `json:"failed"`
			Errors  []string `json:"errors"`
		} `json:"results"`
		ImportID uint `json:"importId"`
	}
	decode(t, env, &data)
	assert.Equal(t, 1, data.Results.Success)
	assert.Equal(t, 1, data.Results.Failed)
	assert.NotZero(t, data.ImportID)

	// the imported instructor can sign in with the default password
	login(t, app, "new@x.com", "changeme")

	status, _ = upload("application/pdf", csv)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
