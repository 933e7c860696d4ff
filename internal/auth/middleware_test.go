package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/classroom-gateway/internal/domain"
	apperrors "github.com/spec-kit/classroom-gateway/pkg/util/errorutil"
)

func newTestApp(t *testing.T, tier Tier) (*fiber.App, *TokenService) {
	t.Helper()

	registry, err := NewSecretRegistry(validAuthConfig())
	require.NoError(t, err)
	tokens := NewTokenService(registry, time.Hour)
	middleware := NewAccessMiddleware(tokens, registry)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"message": de.Message})
		},
	})
	app.Get("/guarded", middleware.Require(tier), func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			return apperrors.NewInternalError(nil)
		}
		return c.JSON(fiber.Map{"email": claims.Email, "role": string(claims.Role)})
	})
	return app, tokens
}

func TestRequireMissingToken(t *testing.T) {
	app, _ := newTestApp(t, TierStudent)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Basic abc123")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireInvalidToken(t *testing.T) {
	app, _ := newTestApp(t, TierStudent)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireTierExclusion(t *testing.T) {
	app, tokens := newTestApp(t, TierAdmin)

	token, _, err := tokens.Issue("user-1", "student@example.com", domain.RoleStudent)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireAttachesClaims(t *testing.T) {
	app, tokens := newTestApp(t, TierStudent)

	token, _, err := tokens.Issue("user-1", "teacher@example.com", domain.RoleTeacher)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
