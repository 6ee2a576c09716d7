package handlers

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/myportfolios/task-app/internal/repository"
	"github.com/myportfolios/task-app/pkg/logger"
)

// Avatar constraints: jpg/jpeg/png by filename extension, at most 1,000,000
// bytes. Stored images are normalized to a 250x250 PNG.
const maxAvatarSize = 1000000

const avatarSide = 250

var allowedAvatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

func avatarCacheKey(userID int) string {
	return fmt.Sprintf("avatar:%d", userID)
}

func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	user := currentUser(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		logger.ErrorLogger.Error("Missing avatar upload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please upload an image"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExts[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please upload an image"})
	}
	if file.Size > maxAvatarSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File too large"})
	}

	src, err := file.Open()
	if err != nil {
		logger.ErrorLogger.Error("Error reading avatar upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error reading upload"})
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please upload an image"})
	}

	resized := imaging.Fill(img, avatarSide, avatarSide, imaging.Center, imaging.Lanczos)
	var out bytes.Buffer
	if err := imaging.Encode(&out, resized, imaging.PNG); err != nil {
		logger.ErrorLogger.Error("Error encoding avatar", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error processing image"})
	}

	if err := h.Store.UpdateAvatar(user.ID, out.Bytes()); err != nil {
		logger.ErrorLogger.Error("Error saving avatar", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error saving avatar"})
	}
	// The write also bumps updated_at, so the cached profile is stale too
	h.Cache.Del(c.Context(), avatarCacheKey(user.ID), profileCacheKey(user.ID))

	logger.AuditLogger.Info("Avatar uploaded", zap.Int("user_id", user.ID))
	return c.SendStatus(fiber.StatusOK)
}

func (h *Handler) DeleteAvatar(c *fiber.Ctx) error {
	user := currentUser(c)
	if err := h.Store.ClearAvatar(user.ID); err != nil {
		logger.ErrorLogger.Error("Error clearing avatar", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error clearing avatar"})
	}
	h.Cache.Del(c.Context(), avatarCacheKey(user.ID), profileCacheKey(user.ID))

	logger.AuditLogger.Info("Avatar deleted", zap.Int("user_id", user.ID))
	return c.SendStatus(fiber.StatusOK)
}

// GetAvatar is public; it serves the stored PNG bytes with a Redis
// read-through cache in front of the store.
func (h *Handler) GetAvatar(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	cacheKey := avatarCacheKey(userID)
	if cached, err := h.Cache.Get(c.Context(), cacheKey).Bytes(); err == nil && len(cached) > 0 {
		c.Set("Content-Type", "image/png")
		return c.Send(cached)
	}

	avatar, err := h.Store.GetAvatar(userID)
	if err == repository.ErrNotFound {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching avatar", zap.Error(err))
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	h.Cache.SetEX(c.Context(), cacheKey, avatar, time.Hour)

	c.Set("Content-Type", "image/png")
	return c.Send(avatar)
}
