package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/tgienger/taskdesk/internal/models"
)

const taskColumns = "id, title, description, status, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var status string
	var created, updated time.Time
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &created, &updated); err != nil {
		return models.Task{}, err
	}
	t.Status = models.Status(status)
	t.CreatedAt = models.NewTimestamp(created)
	t.UpdatedAt = models.NewTimestamp(updated)
	return t, nil
}

// CreateTask creates a new task
func (db *DB) CreateTask(title, description string, status models.Status) (*models.Task, error) {
	result, err := db.Exec(`
		INSERT INTO tasks (title, description, status) VALUES (?, ?, ?)
	`, title, description, string(status))
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetTask(id)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(id int64) (*models.Task, error) {
	t, err := scanTask(db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns all tasks in insertion order
func (db *DB) ListTasks() ([]models.Task, error) {
	rows, err := db.Query("SELECT " + taskColumns + " FROM tasks ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TaskUpdate holds the fields to change; nil fields are kept
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.Status
}

// UpdateTask applies a partial update and returns the stored task
func (db *DB) UpdateTask(id int64, u TaskUpdate) (*models.Task, error) {
	current, err := db.GetTask(id)
	if err != nil {
		return nil, err
	}

	title, description, status := current.Title, current.Description, current.Status
	if u.Title != nil {
		title = *u.Title
	}
	if u.Description != nil {
		description = *u.Description
	}
	if u.Status != nil {
		status = *u.Status
	}

	_, err = db.Exec(`
		UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = `+nowExpr+`
		WHERE id = ?
	`, title, description, string(status), id)
	if err != nil {
		return nil, err
	}
	return db.GetTask(id)
}

// DeleteTask deletes a task and, through the foreign key, its comments
func (db *DB) DeleteTask(id int64) error {
	result, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// TaskCount returns the number of tasks
func (db *DB) TaskCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&count)
	return count, err
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
