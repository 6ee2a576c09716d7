package repository

import (
	"database/sql"
	"fmt"

	"github.com/myportfolios/task-app/internal/models"
)

const taskColumns = "id, owner_id, description, completed, created_at, updated_at"

// ListFilter narrows, orders and pages an owner's task list. Nil fields mean
// "not requested".
type ListFilter struct {
	Completed *bool
	SortField string
	SortDesc  bool
	Limit     *int
	Skip      *int
}

// sortColumns whitelists the JSON field names clients may sort by and maps
// them to their columns. Unknown fields fall back to insertion order.
var sortColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

func scanTask(row *sql.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Store) CreateTask(task *models.Task) error {
	task.Normalize()
	if err := task.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	return s.DB.QueryRow(
		"INSERT INTO tasks (owner_id, description, completed) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at",
		task.OwnerID, task.Description, task.Completed,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

// GetTask fetches exactly the task matching id and owner; a task owned by
// someone else is indistinguishable from a missing one.
func (s *Store) GetTask(id, ownerID int) (*models.Task, error) {
	row := s.DB.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND owner_id = $2", id, ownerID)
	return scanTask(row)
}

func (s *Store) UpdateTask(task *models.Task) error {
	task.Normalize()
	if err := task.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	err := s.DB.QueryRow(
		"UPDATE tasks SET description = $1, completed = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3 AND owner_id = $4 RETURNING updated_at",
		task.Description, task.Completed, task.ID, task.OwnerID,
	).Scan(&task.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// DeleteTask removes the owner's task and returns it.
func (s *Store) DeleteTask(id, ownerID int) (*models.Task, error) {
	row := s.DB.QueryRow(
		"DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING "+taskColumns,
		id, ownerID)
	return scanTask(row)
}

func (s *Store) ListTasks(ownerID int, filter ListFilter) ([]models.Task, error) {
	query, args := buildListQuery(ownerID, filter)
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.OwnerID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func buildListQuery(ownerID int, filter ListFilter) (string, []interface{}) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE owner_id = $1"
	args := []interface{}{ownerID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	if column, ok := sortColumns[filter.SortField]; ok {
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		query += " ORDER BY " + column + " " + direction
	} else {
		query += " ORDER BY id ASC"
	}

	if filter.Limit != nil {
		args = append(args, *filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Skip != nil {
		args = append(args, *filter.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}
