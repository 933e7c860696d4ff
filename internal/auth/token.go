package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/classroom-gateway/internal/domain"
)

// ErrInvalidToken is returned when no accepted secret validates a token.
// Expired, malformed and wrong-role tokens are deliberately not
// distinguished, so callers cannot probe which roles exist.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenService issues and verifies role-bound JWTs.
type TokenService struct {
	registry *SecretRegistry
	ttl      time.Duration
}

// NewTokenService builds a new service.
func NewTokenService(registry *SecretRegistry, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{registry: registry, ttl: ttl}
}

// Claims describes the verified JWT payload. Role is not carried in the
// token itself; it is implied by the secret that signed it and filled in
// during verification.
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"-"`
	jwt.RegisteredClaims
}

// Issue signs a token for the identity with the role's secret.
func (ts *TokenService) Issue(userID, email string, role domain.Role) (string, time.Time, error) {
	secret, err := ts.registry.SecretFor(role)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(ts.ttl)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify tries each accepted secret in order and returns the claims
// validated by the first secret whose signature matches and whose token
// has not expired. Later secrets are not consulted once one succeeds, so
// a single call authorizes any role in the tier without knowing which
// role issued the token.
func (ts *TokenService) Verify(raw string, accepted []RoleSecret) (*Claims, error) {
	for _, rs := range accepted {
		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			return rs.Secret, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			// A token without exp would otherwise validate forever.
			jwt.WithExpirationRequired(),
		)
		if err != nil || !parsed.Valid {
			continue
		}
		claims.Role = rs.Role
		return claims, nil
	}
	return nil, ErrInvalidToken
}
