package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/tgienger/taskdesk/internal/models"
)

const commentColumns = "id, task_id, content, created_at, updated_at"

func scanComment(row rowScanner) (models.Comment, error) {
	var c models.Comment
	var created, updated time.Time
	if err := row.Scan(&c.ID, &c.TaskID, &c.Content, &created, &updated); err != nil {
		return models.Comment{}, err
	}
	c.CreatedAt = models.NewTimestamp(created)
	c.UpdatedAt = models.NewTimestamp(updated)
	return c, nil
}

// CreateComment creates a new comment on a task. A missing task yields ErrNotFound.
func (db *DB) CreateComment(taskID int64, content string) (*models.Comment, error) {
	if _, err := db.GetTask(taskID); err != nil {
		return nil, err
	}

	result, err := db.Exec(`
		INSERT INTO comments (task_id, content) VALUES (?, ?)
	`, taskID, content)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetComment(id)
}

// GetComment retrieves a comment by ID
func (db *DB) GetComment(id int64) (*models.Comment, error) {
	c, err := scanComment(db.QueryRow("SELECT "+commentColumns+" FROM comments WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetTaskComments retrieves all comments for a task, oldest first
func (db *DB) GetTaskComments(taskID int64) ([]models.Comment, error) {
	rows, err := db.Query(`
		SELECT `+commentColumns+`
		FROM comments
		WHERE task_id = ?
		ORDER BY id ASC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateComment replaces a comment's content and bumps updated_at
func (db *DB) UpdateComment(id int64, content string) (*models.Comment, error) {
	result, err := db.Exec(`
		UPDATE comments SET content = ?, updated_at = `+nowExpr+`
		WHERE id = ?
	`, content, id)
	if err != nil {
		return nil, err
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}
	return db.GetComment(id)
}

// DeleteComment deletes a comment
func (db *DB) DeleteComment(id int64) error {
	result, err := db.Exec("DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}
