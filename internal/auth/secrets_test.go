package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/classroom-gateway/internal/config"
	"github.com/spec-kit/classroom-gateway/internal/domain"
)

func validAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AdminSecret:   "admin-secret",
		TeacherSecret: "teacher-secret",
		StudentSecret: "student-secret",
	}
}

func TestNewSecretRegistry(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		registry, err := NewSecretRegistry(validAuthConfig())
		require.NoError(t, err)

		secret, err := registry.SecretFor(domain.RoleTeacher)
		require.NoError(t, err)
		assert.Equal(t, []byte("teacher-secret"), secret)
	})

	t.Run("missing secret is fatal", func(t *testing.T) {
		cfg := validAuthConfig()
		cfg.TeacherSecret = ""

		_, err := NewSecretRegistry(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "teacher")
	})

	t.Run("colliding secrets are fatal", func(t *testing.T) {
		cfg := validAuthConfig()
		cfg.StudentSecret = cfg.AdminSecret

		_, err := NewSecretRegistry(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "share a signing secret")
	})
}

func TestAcceptedSecretsOrdering(t *testing.T) {
	registry, err := NewSecretRegistry(validAuthConfig())
	require.NoError(t, err)

	cases := []struct {
		tier  Tier
		roles []domain.Role
	}{
		{TierAdmin, []domain.Role{domain.RoleAdmin}},
		{TierTeacher, []domain.Role{domain.RoleAdmin, domain.RoleTeacher}},
		{TierStudent, []domain.Role{domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent}},
	}

	for _, tc := range cases {
		accepted := registry.AcceptedSecrets(tc.tier)
		require.Len(t, accepted, len(tc.roles), "tier %s", tc.tier)
		for i, role := range tc.roles {
			assert.Equal(t, role, accepted[i].Role, "tier %s position %d", tc.tier, i)
		}
	}
}
