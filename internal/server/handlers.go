package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tgienger/taskdesk/internal/db"
	"github.com/tgienger/taskdesk/internal/models"
)

const (
	maxTitleSize   = 200
	maxContentSize = 10 << 10 // 10KB

	msgRequired = "Missing data for required field."
)

// fieldErrors maps a field to its problems, e.g. {"title": ["Missing data for required field."]}
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// taskPayload uses pointers to tell missing fields from empty ones
type taskPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (p taskPayload) validate(partial bool) fieldErrors {
	errs := fieldErrors{}
	if p.Title == nil {
		if !partial {
			errs.add("title", msgRequired)
		}
	} else if strings.TrimSpace(*p.Title) == "" {
		errs.add("title", "Title must not be blank.")
	} else if len(*p.Title) > maxTitleSize {
		errs.add("title", "Title is too long.")
	}
	if p.Description == nil && !partial {
		errs.add("description", msgRequired)
	}
	if p.Status == nil {
		if !partial {
			errs.add("status", msgRequired)
		}
	} else if !models.Status(*p.Status).Valid() {
		errs.add("status", "Must be one of: pending, in_progress, completed.")
	}
	return errs
}

type commentPayload struct {
	TaskID  *int64  `json:"task_id"`
	Content *string `json:"content"`
}

func validateContent(content *string, errs fieldErrors) {
	switch {
	case content == nil:
		errs.add("content", msgRequired)
	case strings.TrimSpace(*content) == "":
		errs.add("content", "Content must not be blank.")
	case len(*content) > maxContentSize:
		errs.add("content", "Content is too long.")
	}
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.db.ListTasks()
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var p taskPayload
	if !bindJSON(c, &p) {
		return
	}
	if errs := p.validate(false); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	task, err := s.db.CreateTask(strings.TrimSpace(*p.Title), *p.Description, models.Status(*p.Status))
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	task, err := s.db.GetTask(id)
	if err != nil {
		s.storeError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var p taskPayload
	if !bindJSON(c, &p) {
		return
	}
	if errs := p.validate(true); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	u := db.TaskUpdate{Title: p.Title, Description: p.Description}
	if p.Status != nil {
		st := models.Status(*p.Status)
		u.Status = &st
	}
	task, err := s.db.UpdateTask(id, u)
	if err != nil {
		s.storeError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := s.db.DeleteTask(id); err != nil {
		s.storeError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Task deleted"})
}

func (s *Server) handleListComments(c *gin.Context) {
	taskID, ok := paramID(c)
	if !ok {
		return
	}
	comments, err := s.db.GetTaskComments(taskID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Server) handleCreateComment(c *gin.Context) {
	var p commentPayload
	if !bindJSON(c, &p) {
		return
	}
	errs := fieldErrors{}
	if p.TaskID == nil {
		errs.add("task_id", msgRequired)
	}
	validateContent(p.Content, errs)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	comment, err := s.db.CreateComment(*p.TaskID, strings.TrimSpace(*p.Content))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusBadRequest, fieldErrors{"task_id": {"Task not found."}})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) handleUpdateComment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var p commentPayload
	if !bindJSON(c, &p) {
		return
	}
	errs := fieldErrors{}
	validateContent(p.Content, errs)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	comment, err := s.db.UpdateComment(id, strings.TrimSpace(*p.Content))
	if err != nil {
		s.storeError(c, err, "Not found")
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := s.db.DeleteComment(id); err != nil {
		s.storeError(c, err, "Not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Deleted"})
}

// handleHealth doubles as a storage check
func (s *Server) handleHealth(c *gin.Context) {
	n, err := s.db.TaskCount()
	if err != nil {
		s.log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tasks": n})
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return id, true
}

// bindJSON binds the body, answering 400 itself on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"_schema": []string{"Invalid input data."}})
		return false
	}
	return true
}

func (s *Server) storeError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	s.internalError(c, err)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
