package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-gateway/internal/api/dto"
	"github.com/spec-kit/classroom-gateway/internal/auth"
	"github.com/spec-kit/classroom-gateway/internal/service"
	apperrors "github.com/spec-kit/classroom-gateway/pkg/util/errorutil"
)

// AuthService is the slice of the auth gateway the handlers need.
type AuthService interface {
	Login(ctx context.Context, email, password, clientIP string) (*service.LoginResult, error)
	Register(ctx context.Context, username, email, password string) error
	ModifyPermission(ctx context.Context, email string, permissionTypeID int) error
}

// AuthHandler exposes the auth endpoints.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.Context(), req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Message: "login successful",
		UserInfo: dto.UserInfo{
			Username: result.Username,
			Email:    result.Email,
		},
		Token:      result.Token,
		ExpiresAt:  result.ExpiresAt,
		Permission: result.Permission,
	})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.auth.Register(c.Context(), req.Username, req.Email, req.Password); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "user registered successfully",
	})
}

// ModifyPermission handles POST /modify-permission. The route is gated
// by the admin tier; the handler itself performs no role check.
func (h *AuthHandler) ModifyPermission(c *fiber.Ctx) error {
	var req dto.ModifyPermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.auth.ModifyPermission(c.Context(), req.Email, req.PermissionTypeID); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "permission modified successfully",
	})
}

// Protected handles GET /protected, a probe route for authenticated
// clients of any role.
func (h *AuthHandler) Protected(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("missing authentication")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("welcome, %s", claims.Email),
	})
}
