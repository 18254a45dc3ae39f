package http

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/service"
	authValidator "github.com/valentinaBarreto18/marketplaceRepo/internal/auth/validator"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/middleware"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/utils"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

type AuthHandler struct {
	auth     service.AuthService
	validate *validator.Validate
	logger   *zap.Logger
}

type registerInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Phone           string `json:"phone" validate:"omitempty,max=30"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func NewAuthHandler(auth service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		validate: validator.New(),
		logger:   logger,
	}
}

func userResponse(user *domain.User) fiber.Map {
	return fiber.Map{
		"id":          user.ID,
		"email":       user.Email,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"phone":       user.Phone,
		"address":     user.Address,
		"city":        user.City,
		"state":       user.State,
		"postal_code": user.PostalCode,
		"country":     user.Country,
		"avatar":      user.Avatar,
		"bio":         user.Bio,
		"is_admin":    user.IsAdmin,
		"created_at":  user.CreatedAt,
		"updated_at":  user.UpdatedAt,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	input := new(registerInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "failed to parse body in register", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	user, err := h.auth.Register(ctx, &service.RegisterRequest{
		Email:           input.Email,
		Password:        input.Password,
		PasswordConfirm: input.PasswordConfirm,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Phone:           input.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, authValidator.ErrPasswordMismatch),
			errors.Is(err, authValidator.ErrPasswordTooShort),
			errors.Is(err, authValidator.ErrPasswordTooWeak):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrUserAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "user already exists"})
		}

		logging.Warn(
			ctx,
			h.logger,
			"register failed",
			zap.String("email", input.Email),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	logging.Info(
		ctx,
		h.logger,
		"register user succeeded",
		zap.Int64("created_id", user.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(userResponse(user))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	input := new(loginInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "body parsing failed", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	tokens, err := h.auth.Login(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		}

		logging.Warn(ctx, h.logger, "login failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	input := new(refreshInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if input.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "refresh token is required"})
	}

	tokens, err := h.auth.Refresh(ctx, input.RefreshToken)
	if err != nil {
		logging.Warn(ctx, h.logger, "refresh failed", zap.Error(err))

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid refresh token"})
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	input := new(refreshInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if input.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "refresh token is required"})
	}

	if err := h.auth.Logout(ctx, input.RefreshToken); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}

		logging.Warn(ctx, h.logger, "logout failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	user, err := h.auth.GetUserInfo(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}

		logging.Warn(ctx, h.logger, "get me failed", zap.Int64("user_id", caller.UserID), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(userResponse(user))
}

func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	req := new(service.UpdateProfileRequest)
	if err := c.BodyParser(req); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error in update profile", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	user, err := h.auth.UpdateProfile(ctx, caller.UserID, req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}

		logging.Warn(ctx, h.logger, "update profile failed", zap.Int64("user_id", caller.UserID), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(userResponse(user))
}
