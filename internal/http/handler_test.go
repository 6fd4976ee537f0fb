package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard.com/taskboard/internal/auth"
	dto "taskboard.com/taskboard/internal/data_models"
	applog "taskboard.com/taskboard/internal/logger"
	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/ratelimit"
	repository "taskboard.com/taskboard/internal/repositories"
	"taskboard.com/taskboard/internal/services"
	"taskboard.com/taskboard/internal/storage"
)

type testServer struct {
	e    *echo.Echo
	auth *services.AuthService
}

func setupTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := applog.Discard()
	store := repository.NewGormStore(db)
	avatarDir := t.TempDir()
	avatars, err := storage.NewLocalAvatarStore(avatarDir, AvatarURLPrefix)
	if err != nil {
		t.Fatalf("avatar store: %v", err)
	}

	authService := services.NewAuthService(store, auth.NewTokenIssuer("test-secret", time.Hour), log)
	h := NewHandler(
		services.NewTaskService(store),
		services.NewUserService(store, avatars, log),
		services.NewProfileService(store, avatars, 1024, log),
		authService,
	)

	e := echo.New()
	Register(e, h, RouteOptions{
		Limiter:        ratelimit.NewMemoryLimiter(rateLimit, time.Minute),
		CORSOrigins:    []string{"*"},
		AvatarDir:      avatarDir,
		AvatarMaxBytes: 1024,
		Log:            log,
	})

	return &testServer{e: e, auth: authService}
}

// signup registers a user and returns its token and id.
func (s *testServer) signup(t *testing.T, name string) (string, string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": name, "email": name + "@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", name, rec.Code, rec.Body.String())
	}
	var res dto.AuthResponse
	decode(t, rec, &res)
	return res.Token, res.User.ID
}

func (s *testServer) admin(t *testing.T) (string, string) {
	t.Helper()

	user, _, err := s.auth.EnsureAdmin(context.Background(), services.SignupInput{
		Name: "root", Email: "root@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	_, token, err := s.auth.Login(context.Background(), user.Email, "secret1")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	return token, user.ID
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createTask(t *testing.T, token string, body map[string]any) dto.TaskResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/tasks", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: %d %s", rec.Code, rec.Body.String())
	}
	var res dto.TaskEnvelope
	decode(t, rec, &res)
	return res.Task
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var res dto.ErrorResponse
	decode(t, rec, &res)
	return res.Message
}

func TestAuthRequired(t *testing.T) {
	s := setupTestServer(t, 100)

	rec := s.do(t, http.MethodGet, "/api/tasks", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/tasks", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", rec.Code)
	}

	token, _ := s.signup(t, "raw")
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set(echo.HeaderAuthorization, token)
	raw := httptest.NewRecorder()
	s.e.ServeHTTP(raw, req)
	if raw.Code != http.StatusOK {
		t.Errorf("expected bare token to be accepted, got %d", raw.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	s := setupTestServer(t, 1000)
	adminToken, _ := s.admin(t)
	aliceToken, aliceID := s.signup(t, "alice")
	bobToken, bobID := s.signup(t, "bob")
	eveToken, _ := s.signup(t, "eve")

	rec := s.do(t, http.MethodPost, "/api/tasks", aliceToken, map[string]any{"description": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty description, got %d", rec.Code)
	}

	task := s.createTask(t, aliceToken, map[string]any{"description": "Write report", "tags": "a, b, b"})
	if task.Status != "pending" || task.Priority != "medium" {
		t.Errorf("unexpected defaults %s/%s", task.Status, task.Priority)
	}
	if task.User == nil || task.User.ID != aliceID || task.Creator == nil || task.Creator.ID != aliceID {
		t.Errorf("expected alice as owner and creator, got %+v / %+v", task.User, task.Creator)
	}
	if strings.Join(task.Tags, ",") != "a,b,b" {
		t.Errorf("unexpected tags %v", task.Tags)
	}

	path := "/api/tasks/" + task.ID

	if rec := s.do(t, http.MethodGet, "/api/tasks/not-an-id", aliceToken, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, path, bobToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for hidden task, got %d", rec.Code)
	}

	if rec := s.do(t, http.MethodPost, path+"/assign", aliceToken, map[string]string{"userId": bobID}); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin assign, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodPost, path+"/assign", adminToken, map[string]string{"userId": bobID})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: %d %s", rec.Code, rec.Body.String())
	}

	if rec := s.do(t, http.MethodGet, path, bobToken, nil); rec.Code != http.StatusOK {
		t.Errorf("expected assignee to read, got %d", rec.Code)
	}

	if rec := s.do(t, http.MethodPut, path, bobToken, map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty update, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodPut, path, bobToken, map[string]any{"status": "archived"})
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != "invalid status value" {
		t.Errorf("expected invalid status, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, http.MethodPut, path, eveToken, map[string]any{"status": "completed"}); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for stranger update, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPut, path, bobToken, map[string]any{"status": "in-progress", "dueDate": "2030-01-02"})
	if rec.Code != http.StatusOK {
		t.Fatalf("assignee update: %d %s", rec.Code, rec.Body.String())
	}
	var updated dto.TaskEnvelope
	decode(t, rec, &updated)
	if updated.Task.Status != "in-progress" || updated.Task.DueDate == nil || updated.Task.Description != "Write report" {
		t.Errorf("unexpected task after update %+v", updated.Task)
	}

	rec = s.do(t, http.MethodPut, path, aliceToken, map[string]any{"dueDate": nil})
	decode(t, rec, &updated)
	if updated.Task.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", updated.Task.DueDate)
	}

	if rec := s.do(t, http.MethodDelete, path, bobToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for assignee delete, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, path, eveToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for stranger delete, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, path, aliceToken, nil); rec.Code != http.StatusOK {
		t.Errorf("expected owner delete to succeed, got %d", rec.Code)
	}
}

func TestListTasks(t *testing.T) {
	s := setupTestServer(t, 1000)
	adminToken, _ := s.admin(t)
	aliceToken, _ := s.signup(t, "alice")
	bobToken, _ := s.signup(t, "bob")

	s.createTask(t, aliceToken, map[string]any{"description": "alpha", "tags": []string{"a", "b"}})
	s.createTask(t, aliceToken, map[string]any{"description": "beta", "tags": "c"})
	s.createTask(t, bobToken, map[string]any{"description": "gamma"})

	var page dto.TaskListResponse
	decode(t, s.do(t, http.MethodGet, "/api/tasks", aliceToken, nil), &page)
	if page.Total != 2 || page.Page != 1 || page.Limit != 20 {
		t.Errorf("unexpected page %d/%d/%d", page.Total, page.Page, page.Limit)
	}

	decode(t, s.do(t, http.MethodGet, "/api/tasks?tags=b,c", aliceToken, nil), &page)
	if page.Total != 2 {
		t.Errorf("expected any-of tag match, got %d", page.Total)
	}
	decode(t, s.do(t, http.MethodGet, "/api/tasks?tags=c,d", aliceToken, nil), &page)
	if page.Total != 1 || page.Tasks[0].Description != "beta" {
		t.Errorf("expected only beta, got %d", page.Total)
	}

	decode(t, s.do(t, http.MethodGet, "/api/tasks?limit=500&page=0", adminToken, nil), &page)
	if page.Total != 3 || page.Limit != 100 || page.Page != 1 {
		t.Errorf("expected clamped paging over all tasks, got %d/%d/%d", page.Total, page.Page, page.Limit)
	}

	decode(t, s.do(t, http.MethodGet, "/api/tasks?search=zzz", adminToken, nil), &page)
	if page.Total != 0 || page.Tasks == nil || len(page.Tasks) != 0 {
		t.Errorf("expected empty list, got %+v", page)
	}
}

func TestUserAdministration(t *testing.T) {
	s := setupTestServer(t, 1000)
	adminToken, _ := s.admin(t)
	aliceToken, aliceID := s.signup(t, "alice")

	if rec := s.do(t, http.MethodGet, "/api/users", aliceToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}

	var users dto.UserListResponse
	decode(t, s.do(t, http.MethodGet, "/api/users", adminToken, nil), &users)
	if len(users.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users.Users))
	}
	if strings.Contains(s.do(t, http.MethodGet, "/api/users", adminToken, nil).Body.String(), "password") {
		t.Error("user listing leaked password data")
	}

	if rec := s.do(t, http.MethodPatch, "/api/users/"+aliceID+"/role", adminToken, map[string]string{"role": "root"}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid role, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPatch, "/api/users/"+uuid.NewString()+"/role", adminToken, map[string]string{"role": "admin"}); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing user, got %d", rec.Code)
	}
	rec := s.do(t, http.MethodPatch, "/api/users/"+aliceID+"/role", adminToken, map[string]string{"role": "admin"})
	if rec.Code != http.StatusOK {
		t.Fatalf("change role: %d %s", rec.Code, rec.Body.String())
	}
	// the new role applies to the token alice already holds
	if rec := s.do(t, http.MethodGet, "/api/users", aliceToken, nil); rec.Code != http.StatusOK {
		t.Errorf("expected promoted user to list users, got %d", rec.Code)
	}

	s.createTask(t, aliceToken, map[string]any{"description": "owned"})
	rec = s.do(t, http.MethodDelete, "/api/users/"+aliceID, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete user: %d %s", rec.Code, rec.Body.String())
	}
	var deleted dto.DeleteUserResponse
	decode(t, rec, &deleted)
	if deleted.TasksRemoved != 1 {
		t.Errorf("expected 1 task removed, got %d", deleted.TasksRemoved)
	}
	if rec := s.do(t, http.MethodGet, "/api/profile", aliceToken, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected deleted user's token to be rejected, got %d", rec.Code)
	}
}

func TestAvatarUpload(t *testing.T) {
	s := setupTestServer(t, 1000)
	token, _ := s.signup(t, "pic")

	upload := func(contentType string, content []byte) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
		hdr.Set("Content-Type", contentType)
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(content)
		_ = w.Close()

		req := httptest.NewRequest(http.MethodPut, "/api/profile/avatar", body)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		req.Header.Set(echo.HeaderAuthorization, token)
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	if rec := upload("text/plain", []byte("hi")); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-image, got %d", rec.Code)
	}
	if rec := upload("image/png", make([]byte, 4096)); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for large avatar, got %d", rec.Code)
	}

	rec := upload("image/png", []byte("png-bytes"))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var res dto.UserEnvelope
	decode(t, rec, &res)
	if res.User.Avatar == nil || !strings.HasPrefix(*res.User.Avatar, AvatarURLPrefix+"/") {
		t.Fatalf("unexpected avatar %v", res.User.Avatar)
	}

	served := s.do(t, http.MethodGet, *res.User.Avatar, "", nil)
	if served.Code != http.StatusOK || served.Body.String() != "png-bytes" {
		t.Errorf("expected stored avatar to be served, got %d", served.Code)
	}

	rec = s.do(t, http.MethodDelete, "/api/profile/avatar", token, nil)
	decode(t, rec, &res)
	if rec.Code != http.StatusOK || res.User.Avatar != nil {
		t.Errorf("expected avatar removed, got %d %v", rec.Code, res.User.Avatar)
	}
}

func TestRateLimit(t *testing.T) {
	s := setupTestServer(t, 2)

	for i := 0; i < 2; i++ {
		if rec := s.do(t, http.MethodGet, "/api/tasks", "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: expected 401, got %d", i+1, rec.Code)
		}
	}
	rec := s.do(t, http.MethodGet, "/api/tasks", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}

	if rec := s.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health check must not be rate limited, got %d", rec.Code)
	}
}

func TestInvalidJSON(t *testing.T) {
	s := setupTestServer(t, 100)
	token, _ := s.signup(t, "json")

	rec := s.do(t, http.MethodPost, "/api/tasks", token, "{not json")
	if rec.Code != http.StatusBadRequest || errorMessage(t, rec) != "invalid JSON payload" {
		t.Errorf("expected invalid JSON, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "long", "email": "long@example.com", "password": strings.Repeat("p", 80),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for overlong password, got %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/tasks", token, `{"description": "x", "tags": 5}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(errorMessage(t, rec), "tags") {
		t.Errorf("expected tags error, got %d %s", rec.Code, rec.Body.String())
	}
}
