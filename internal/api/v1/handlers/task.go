package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/myportfolios/task-app/internal/models"
	"github.com/myportfolios/task-app/internal/repository"
	"github.com/myportfolios/task-app/pkg/logger"
)

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	user := currentUser(c)

	type TaskRequest struct {
		Description string `json:"description" validate:"required"`
		Completed   bool   `json:"completed"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad request"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	task := models.Task{
		OwnerID:     user.ID,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if err := h.Store.CreateTask(&task); err != nil {
		var validationErr *repository.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Reason})
		}
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error creating task"})
	}

	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(task)
}

// ListTasks supports ?completed=true|false, ?sortBy=field:asc|desc and
// ?limit/?skip pagination, always scoped to the authenticated owner.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	user := currentUser(c)

	var filter repository.ListFilter
	if completed := c.Query("completed"); completed != "" {
		value := completed == "true"
		filter.Completed = &value
	}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		parts := strings.SplitN(sortBy, ":", 2)
		filter.SortField = parts[0]
		// Anything other than "desc" sorts ascending
		filter.SortDesc = len(parts) == 2 && parts[1] == "desc"
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pagination parameters"})
		}
		filter.Limit = &n
	}
	if skip := c.Query("skip"); skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pagination parameters"})
		}
		filter.Skip = &n
	}

	tasks, err := h.Store.ListTasks(user.ID, filter)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching tasks"})
	}
	return c.JSON(tasks)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	task, err := h.Store.GetTask(taskID, user.ID)
	if err == repository.ErrNotFound {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching task"})
	}
	return c.JSON(task)
}

var allowedTaskUpdates = map[string]bool{
	"description": true,
	"completed":   true,
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	var updates map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &updates); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad request"})
	}
	for field := range updates {
		if !allowedTaskUpdates[field] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid updates"})
		}
	}

	task, err := h.Store.GetTask(taskID, user.ID)
	if err == repository.ErrNotFound {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching task"})
	}

	for field, value := range updates {
		var err error
		switch field {
		case "description":
			err = json.Unmarshal(value, &task.Description)
		case "completed":
			err = json.Unmarshal(value, &task.Completed)
		}
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad request"})
		}
	}

	if err := h.Store.UpdateTask(task); err != nil {
		var validationErr *repository.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Reason})
		case errors.Is(err, repository.ErrNotFound):
			return c.SendStatus(fiber.StatusNotFound)
		default:
			logger.ErrorLogger.Error("Error updating task", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error updating task"})
		}
	}

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", task.ID))
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	user := currentUser(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}

	task, err := h.Store.DeleteTask(taskID, user.ID)
	if err == repository.ErrNotFound {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error deleting task"})
	}

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", task.ID))
	return c.JSON(task)
}
