package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/classroom-gateway/internal/api/http/handlers"
	"github.com/spec-kit/classroom-gateway/internal/auth"
	"github.com/spec-kit/classroom-gateway/internal/config"
	"github.com/spec-kit/classroom-gateway/internal/domain"
	"github.com/spec-kit/classroom-gateway/internal/observability"
	"github.com/spec-kit/classroom-gateway/internal/persistence"
	"github.com/spec-kit/classroom-gateway/internal/realtime"
	"github.com/spec-kit/classroom-gateway/internal/service"
	apperrors "github.com/spec-kit/classroom-gateway/pkg/util/errorutil"
)

type stubAuthService struct {
	loginResult *service.LoginResult
	loginErr    error
	registerErr error
	modifyErr   error
	modifyCalls int
}

func (s *stubAuthService) Login(context.Context, string, string, string) (*service.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginResult, nil
}

func (s *stubAuthService) Register(context.Context, string, string, string) error {
	return s.registerErr
}

func (s *stubAuthService) ModifyPermission(context.Context, string, int) error {
	s.modifyCalls++
	return s.modifyErr
}

func newTestServer(t *testing.T, stub *stubAuthService) (*fiber.App, *auth.TokenService) {
	t.Helper()

	registry, err := auth.NewSecretRegistry(config.AuthConfig{
		AdminSecret:   "admin-secret",
		TeacherSecret: "teacher-secret",
		StudentSecret: "student-secret",
	})
	require.NoError(t, err)
	tokens := auth.NewTokenService(registry, time.Hour)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	hub := realtime.NewHub(config.RealtimeConfig{}, logger, metrics)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}, metrics),
		Auth:   handlers.NewAuthHandler(stub),
		Access: auth.NewAccessMiddleware(tokens, registry),
		Hub:    hub,
	})
	return app, tokens
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*stdhttp.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestLoginEndpointContract(t *testing.T) {
	stub := &stubAuthService{loginResult: &service.LoginResult{
		Username:   "alice",
		Email:      "a@x.com",
		Token:      "signed-token",
		ExpiresAt:  time.Now().Add(time.Hour).UTC(),
		Permission: "admin",
	}}
	app, _ := newTestServer(t, stub)

	resp, body := doJSON(t, app, stdhttp.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "a@x.com",
		"password": "pw",
	})
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "signed-token", body["token"])
	assert.Equal(t, "admin", body["permission"])
	assert.NotEmpty(t, body["expiresAt"])

	userInfo, ok := body["userInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", userInfo["username"])
	assert.Equal(t, "a@x.com", userInfo["email"])
}

func TestLoginEndpointWrongPassword(t *testing.T) {
	stub := &stubAuthService{loginErr: apperrors.NewUnauthorized("incorrect password")}
	app, _ := newTestServer(t, stub)

	resp, body := doJSON(t, app, stdhttp.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "a@x.com",
		"password": "wrong",
	})
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	_, hasToken := body["token"]
	assert.False(t, hasToken, "failed login must not carry a token")
}

func TestRegisterEndpoint(t *testing.T) {
	app, _ := newTestServer(t, &stubAuthService{})

	resp, _ := doJSON(t, app, stdhttp.MethodPost, "/auth/register", "", fiber.Map{
		"username": "bob",
		"email":    "bob@x.com",
		"password": "pw",
	})
	assert.Equal(t, stdhttp.StatusCreated, resp.StatusCode)
}

func TestModifyPermissionRequiresAdminTier(t *testing.T) {
	stub := &stubAuthService{}
	app, tokens := newTestServer(t, stub)

	body := fiber.Map{"email": "a@x.com", "permission_type_id": 2}

	resp, _ := doJSON(t, app, stdhttp.MethodPost, "/modify-permission", "", body)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	studentToken, _, err := tokens.Issue("id-1", "s@x.com", domain.RoleStudent)
	require.NoError(t, err)
	resp, _ = doJSON(t, app, stdhttp.MethodPost, "/modify-permission", studentToken, body)
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
	assert.Zero(t, stub.modifyCalls, "non-admin token must never reach the service")

	adminToken, _, err := tokens.Issue("id-2", "a@x.com", domain.RoleAdmin)
	require.NoError(t, err)
	resp, _ = doJSON(t, app, stdhttp.MethodPost, "/modify-permission", adminToken, body)
	assert.Equal(t, stdhttp.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, stub.modifyCalls)
}

func TestProtectedRouteNamesItsTier(t *testing.T) {
	app, tokens := newTestServer(t, &stubAuthService{})

	resp, _ := doJSON(t, app, stdhttp.MethodGet, "/protected", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent} {
		token, _, err := tokens.Issue("id-1", string(role)+"@x.com", role)
		require.NoError(t, err)

		resp, body := doJSON(t, app, stdhttp.MethodGet, "/protected", token, nil)
		assert.Equal(t, stdhttp.StatusOK, resp.StatusCode, "role %s", role)
		assert.Contains(t, body["message"], string(role)+"@x.com")
	}
}

func TestLivenessReportsRealtimeGauge(t *testing.T) {
	app, _ := newTestServer(t, &stubAuthService{})

	resp, body := doJSON(t, app, stdhttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, float64(0), body["realtime_clients"])
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	app, _ := newTestServer(t, &stubAuthService{})

	resp, _ := doJSON(t, app, stdhttp.MethodGet, "/ws", "", nil)
	assert.Equal(t, stdhttp.StatusUpgradeRequired, resp.StatusCode)
}
