package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/myportfolios/task-app/internal/auth"
	"github.com/myportfolios/task-app/internal/middleware"
	"github.com/myportfolios/task-app/internal/models"
	"github.com/myportfolios/task-app/internal/repository"
	"github.com/myportfolios/task-app/pkg/logger"
)

func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals(middleware.LocalUser).(*models.User)
}

func currentToken(c *fiber.Ctx) string {
	return c.Locals(middleware.LocalToken).(string)
}

// issueToken signs a fresh session token and appends it to the user's list.
func (h *Handler) issueToken(userID int) (string, error) {
	token, err := auth.SignToken(userID, h.Secret)
	if err != nil {
		return "", err
	}
	if err := h.Store.AddToken(userID, token); err != nil {
		return "", err
	}
	return token, nil
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	type SignupRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required"`
		Age      int    `json:"age"`
		Password string `json:"password" validate:"required"`
	}

	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in signup", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad request"})
	}
	if err := validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during signup", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Password: req.Password,
	}
	if err := h.Store.CreateUser(&user); err != nil {
		var validationErr *repository.ValidationError
		switch {
		case errors.As(err, &validationErr):
			logger.AuditLogger.Warn("Invalid signup", zap.String("reason", validationErr.Reason))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Reason})
		case errors.Is(err, repository.ErrDuplicateEmail):
			logger.SecurityLogger.Warn("Duplicate email", zap.String("email", user.Email))
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		default:
			logger.ErrorLogger.Error("Error creating user", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error creating user"})
		}
	}

	// Best-effort, never blocks or fails the signup
	h.Outbox.EnqueueWelcome(user.Email, user.Name)

	token, err := h.issueToken(user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating token"})
	}

	logger.AuditLogger.Info("User registered", zap.Int("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad request"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to login"})
	}

	user, err := h.Store.FindByCredentials(req.Email, req.Password)
	if err != nil {
		// Missing account and wrong password answer identically
		logger.SecurityLogger.Warn("Failed login", zap.String("email", req.Email))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unable to login"})
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error generating token"})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return c.JSON(fiber.Map{"user": user, "token": token})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	user := currentUser(c)
	if err := h.Store.RemoveToken(user.ID, currentToken(c)); err != nil {
		logger.ErrorLogger.Error("Error removing token", zap.Error(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	logger.AuditLogger.Info("Logout", zap.Int("user_id", user.ID))
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) LogoutAll(c *fiber.Ctx) error {
	user := currentUser(c)
	if err := h.Store.ClearTokens(user.ID); err != nil {
		logger.ErrorLogger.Error("Error clearing tokens", zap.Error(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	logger.AuditLogger.Info("Logout all sessions", zap.Int("user_id", user.ID))
	return c.SendStatus(fiber.StatusOK)
}

func profileCacheKey(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

// GetProfile serves the profile through a Redis read-through cache; every
// profile and avatar write invalidates the entry.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user := currentUser(c)

	cacheKey := profileCacheKey(user.ID)
	if cached, err := h.Cache.Get(c.Context(), cacheKey).Bytes(); err == nil && len(cached) > 0 {
		c.Set("Content-Type", "application/json")
		return c.Send(cached)
	}

	body, err := json.Marshal(user)
	if err != nil {
		logger.ErrorLogger.Error("Error serializing profile", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching profile"})
	}
	h.Cache.SetEX(c.Context(), cacheKey, body, time.Hour)

	c.Set("Content-Type", "application/json")
	return c.Send(body)
}

var allowedUserUpdates = map[string]bool{
	"name":     true,
	"email":    true,
	"age":      true,
	"password": true,
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var updates map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &updates); err != nil {
		logger.ErrorLogger.Error("Bad request in profile update", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad request"})
	}
	for field := range updates {
		if !allowedUserUpdates[field] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid updates"})
		}
	}

	user := currentUser(c)
	passwordChanged := false
	for field, value := range updates {
		var err error
		switch field {
		case "name":
			err = json.Unmarshal(value, &user.Name)
		case "email":
			err = json.Unmarshal(value, &user.Email)
		case "age":
			err = json.Unmarshal(value, &user.Age)
		case "password":
			err = json.Unmarshal(value, &user.Password)
			passwordChanged = true
		}
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad request"})
		}
	}

	if err := h.Store.UpdateUser(user, passwordChanged); err != nil {
		var validationErr *repository.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Reason})
		case errors.Is(err, repository.ErrDuplicateEmail):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		default:
			logger.ErrorLogger.Error("Error updating user", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error updating user"})
		}
	}

	h.Cache.Del(c.Context(), profileCacheKey(user.ID))

	logger.AuditLogger.Info("User updated", zap.Int("user_id", user.ID))
	return c.JSON(user)
}

func (h *Handler) DeleteProfile(c *fiber.Ctx) error {
	user := currentUser(c)
	if err := h.Store.DeleteUser(user.ID); err != nil {
		logger.ErrorLogger.Error("Error deleting user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error deleting user"})
	}

	h.Cache.Del(c.Context(), avatarCacheKey(user.ID), profileCacheKey(user.ID))
	h.Outbox.EnqueueCancellation(user.Email, user.Name)

	logger.AuditLogger.Info("User deleted", zap.Int("user_id", user.ID))
	return c.JSON(user)
}
