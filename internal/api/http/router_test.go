package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/inquiry-service/internal/api/http/handlers"
	"github.com/spec-kit/inquiry-service/internal/auth"
	"github.com/spec-kit/inquiry-service/internal/config"
	"github.com/spec-kit/inquiry-service/internal/domain"
	"github.com/spec-kit/inquiry-service/internal/events"
	"github.com/spec-kit/inquiry-service/internal/observability"
	"github.com/spec-kit/inquiry-service/internal/persistence"
	"github.com/spec-kit/inquiry-service/internal/repository"
	"github.com/spec-kit/inquiry-service/internal/service"
)

type testEnv struct {
	app   *fiber.App
	users repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	users := repository.NewMemoryUserRepository()
	inquiries := repository.NewMemoryInquiryRepository()

	dispatcher := events.NewInMemoryDispatcher()
	events.NewNotificationLogger(logger).Register(dispatcher)

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            4,
	}, users)
	inquiryService := service.NewInquiryService(service.InquiryDependencies{
		InquiryRepo:    inquiries,
		CourseResolver: service.NewDisplayCourseResolver(),
		Dispatcher:     dispatcher,
	})

	app := fiber.New()
	metrics := observability.NewMetrics()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("inquiry-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Inquiries:      handlers.NewInquiriesHandler(inquiryService),
		AdminInquiries: handlers.NewAdminInquiriesHandler(inquiryService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})

	return &testEnv{app: app, users: users}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := nethttp.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), "body: %s", raw)
	}
	return resp.StatusCode, payload
}

func (e *testEnv) registerStudent(t *testing.T, email string) string {
	t.Helper()
	status, body := e.request(t, nethttp.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Student",
		"email":    email,
		"password": "pass-word-1",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

// Admin accounts are seeded out of band, so the test plants one directly.
func (e *testEnv) seedAdmin(t *testing.T, email string) string {
	t.Helper()
	hash, err := auth.HashPassword("admin-pass-1", 4)
	require.NoError(t, err)
	require.NoError(t, e.users.Create(context.Background(), &domain.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}))

	status, body := e.request(t, nethttp.MethodPost, "/auth/login", "", map[string]any{
		"email":    email,
		"password": "admin-pass-1",
	})
	require.Equal(t, nethttp.StatusOK, status)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.request(t, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.request(t, nethttp.MethodGet, "/inquiries", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "UNAUTHORIZED", errBody["code"])

	status, _ = env.request(t, nethttp.MethodGet, "/inquiries", "garbage-token", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
}

func TestStudentCannotReachAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	studentToken := env.registerStudent(t, "alice@example.com")

	status, body := env.request(t, nethttp.MethodGet, "/admin/inquiries", studentToken, nil)
	assert.Equal(t, nethttp.StatusForbidden, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "FORBIDDEN", errBody["code"])
}

func TestInquiryLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	studentToken := env.registerStudent(t, "alice@example.com")
	adminToken := env.seedAdmin(t, "admin@example.com")

	// student files an inquiry
	status, body := env.request(t, nethttp.MethodPost, "/inquiries", studentToken, map[string]any{
		"subject":  "Cannot watch lecture 3",
		"message":  "the video stalls at 2:14",
		"type":     "technical",
		"priority": "high",
	})
	require.Equal(t, nethttp.StatusCreated, status)
	created := body["data"].(map[string]any)
	inquiryID := created["id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, false, created["isRead"])
	assert.Equal(t, false, created["hasResponse"])

	// student sees it in their listing with summary stats
	status, body = env.request(t, nethttp.MethodGet, "/inquiries?search=lecture", studentToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	data := body["data"].(map[string]any)
	items := data["inquiries"].([]any)
	require.Len(t, items, 1)
	pagination := data["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["totalItems"])
	assert.EqualValues(t, 10, pagination["itemsPerPage"])
	stats := data["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["pendingCount"])
	assert.EqualValues(t, 1, stats["unreadCount"])

	// admin fetch flips the read flag
	status, body = env.request(t, nethttp.MethodGet, "/admin/inquiries/"+inquiryID, adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	fetched := body["data"].(map[string]any)
	assert.Equal(t, true, fetched["isRead"])

	// admin responds; status defaults to resolved
	status, body = env.request(t, nethttp.MethodPut, "/admin/inquiries/"+inquiryID+"/respond", adminToken, map[string]any{
		"response": "fixed the encoding, try again",
	})
	require.Equal(t, nethttp.StatusOK, status)
	responded := body["data"].(map[string]any)
	assert.Equal(t, "resolved", responded["status"])
	assert.NotEmpty(t, responded["respondedAt"])
	assert.Equal(t, true, responded["hasResponse"])

	// aggregate stats reflect the resolution
	status, body = env.request(t, nethttp.MethodGet, "/admin/inquiries/stats", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	statsData := body["data"].(map[string]any)
	overview := statsData["overview"].(map[string]any)
	assert.EqualValues(t, 1, overview["totalMessages"])
	assert.EqualValues(t, 1, overview["resolvedMessages"])
	assert.EqualValues(t, 1, overview["technicalIssues"])

	// delete and confirm it is gone
	status, _ = env.request(t, nethttp.MethodDelete, "/admin/inquiries/"+inquiryID, adminToken, nil)
	require.Equal(t, nethttp.StatusOK, status)
	status, body = env.request(t, nethttp.MethodGet, "/admin/inquiries/"+inquiryID, adminToken, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}

func TestBulkUpdateOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	studentToken := env.registerStudent(t, "alice@example.com")
	adminToken := env.seedAdmin(t, "admin@example.com")

	var ids []string
	for i := 0; i < 3; i++ {
		status, body := env.request(t, nethttp.MethodPost, "/inquiries", studentToken, map[string]any{
			"subject": fmt.Sprintf("issue %d", i),
			"message": "details",
		})
		require.Equal(t, nethttp.StatusCreated, status)
		ids = append(ids, body["data"].(map[string]any)["id"].(string))
	}

	status, body := env.request(t, nethttp.MethodPut, "/admin/inquiries/bulk", adminToken, map[string]any{
		"ids":    ids,
		"action": "status",
		"value":  "in_progress",
	})
	require.Equal(t, nethttp.StatusOK, status)
	result := body["data"].(map[string]any)
	assert.EqualValues(t, 3, result["matchedCount"])
	assert.EqualValues(t, 3, result["modifiedCount"])

	status, body = env.request(t, nethttp.MethodPut, "/admin/inquiries/bulk", adminToken, map[string]any{
		"ids":    ids,
		"action": "status",
		"value":  "archived",
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_VALUE", errBody["code"])

	status, body = env.request(t, nethttp.MethodPut, "/admin/inquiries/bulk", adminToken, map[string]any{
		"ids":    ids[:2],
		"action": "delete",
	})
	require.Equal(t, nethttp.StatusOK, status)
	result = body["data"].(map[string]any)
	assert.EqualValues(t, 2, result["deletedCount"])
}

func TestCreateCourseRequestOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	studentToken := env.registerStudent(t, "alice@example.com")

	status, body := env.request(t, nethttp.MethodPost, "/inquiries", studentToken, map[string]any{
		"subject": "Please add a Rust course",
		"message": "intermediate level would be great",
		"type":    "course_request",
		"requestedCourse": map[string]any{
			"title":    "Rust for Backend Developers",
			"category": "programming",
		},
	})
	require.Equal(t, nethttp.StatusCreated, status)
	created := body["data"].(map[string]any)
	assert.Equal(t, "course_request", created["type"])
	assert.Equal(t, "Rust for Backend Developers (programming)", created["courseDisplay"])
}
