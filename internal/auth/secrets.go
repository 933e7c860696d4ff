package auth

import (
	"fmt"

	"github.com/spec-kit/classroom-gateway/internal/config"
	"github.com/spec-kit/classroom-gateway/internal/domain"
)

// Tier names a class of protected routes. Each tier accepts tokens signed
// by a fixed, ordered set of role secrets.
type Tier string

const (
	// TierAdmin accepts admin tokens only.
	TierAdmin Tier = "admin"
	// TierTeacher accepts admin and teacher tokens.
	TierTeacher Tier = "teacher"
	// TierStudent accepts tokens from any role.
	TierStudent Tier = "student"
)

// RoleSecret pairs a role with its signing secret.
type RoleSecret struct {
	Role   domain.Role
	Secret []byte
}

// SecretRegistry holds one signing secret per role and the ordered secret
// sets each tier accepts. It is immutable after construction.
type SecretRegistry struct {
	secrets map[domain.Role][]byte
	tiers   map[Tier][]RoleSecret
}

// NewSecretRegistry validates and indexes the configured role secrets.
// A missing secret or a secret shared by two roles is a configuration
// error and must abort startup: first-match verification would otherwise
// attribute tokens to the wrong role.
func NewSecretRegistry(cfg config.AuthConfig) (*SecretRegistry, error) {
	secrets := map[domain.Role][]byte{
		domain.RoleAdmin:   []byte(cfg.AdminSecret),
		domain.RoleTeacher: []byte(cfg.TeacherSecret),
		domain.RoleStudent: []byte(cfg.StudentSecret),
	}

	seen := make(map[string]domain.Role, len(secrets))
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent} {
		secret := secrets[role]
		if len(secret) == 0 {
			return nil, fmt.Errorf("no signing secret configured for role %q", role)
		}
		if other, dup := seen[string(secret)]; dup {
			return nil, fmt.Errorf("roles %q and %q share a signing secret", other, role)
		}
		seen[string(secret)] = role
	}

	// Tier order is highest privilege first; broader tiers extend the
	// narrower ones with lower-privilege secrets.
	registry := &SecretRegistry{secrets: secrets}
	registry.tiers = map[Tier][]RoleSecret{
		TierAdmin: {
			{Role: domain.RoleAdmin, Secret: secrets[domain.RoleAdmin]},
		},
		TierTeacher: {
			{Role: domain.RoleAdmin, Secret: secrets[domain.RoleAdmin]},
			{Role: domain.RoleTeacher, Secret: secrets[domain.RoleTeacher]},
		},
		TierStudent: {
			{Role: domain.RoleAdmin, Secret: secrets[domain.RoleAdmin]},
			{Role: domain.RoleTeacher, Secret: secrets[domain.RoleTeacher]},
			{Role: domain.RoleStudent, Secret: secrets[domain.RoleStudent]},
		},
	}
	return registry, nil
}

// SecretFor returns the signing secret for the role.
func (r *SecretRegistry) SecretFor(role domain.Role) ([]byte, error) {
	secret, ok := r.secrets[role]
	if !ok {
		return nil, fmt.Errorf("no signing secret configured for role %q", role)
	}
	return secret, nil
}

// AcceptedSecrets returns the ordered secret set for a tier. The returned
// slice must not be mutated.
func (r *SecretRegistry) AcceptedSecrets(tier Tier) []RoleSecret {
	return r.tiers[tier]
}
