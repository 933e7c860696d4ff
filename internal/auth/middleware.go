package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/classroom-gateway/pkg/util/errorutil"
)

const claimsKey = "auth_claims"

// AccessMiddleware gates protected routes per access tier.
type AccessMiddleware struct {
	tokens   *TokenService
	registry *SecretRegistry
}

// NewAccessMiddleware constructs middleware.
func NewAccessMiddleware(tokens *TokenService, registry *SecretRegistry) *AccessMiddleware {
	return &AccessMiddleware{tokens: tokens, registry: registry}
}

// Require returns a handler enforcing the named tier. There is no default
// tier: every protected route picks one explicitly at registration time.
// A missing or malformed Authorization header is a 401; a token that no
// accepted secret validates is a 403.
func (m *AccessMiddleware) Require(tier Tier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.NewUnauthorized("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		claims, err := m.tokens.Verify(parts[1], m.registry.AcceptedSecrets(tier))
		if err != nil {
			return apperrors.NewForbidden(ErrInvalidToken.Error())
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFromContext retrieves the verified claims attached by Require.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
