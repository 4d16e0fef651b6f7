package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"taskflow/internal/middleware"
	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/internal/scoring"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	dateLayout          = "2006-01-02"
	defaultHighPriority = 5.0
)

type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, in service.TaskInput) (*model.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, in service.TaskInput) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
	ToggleCompleted(ctx context.Context, userID, taskID uuid.UUID) (bool, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error)
	Recompute(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Graph(ctx context.Context, userID uuid.UUID) (*service.GraphView, error)
}

type TaskHandler struct {
	tasks  TaskService
	logger *slog.Logger
}

func NewTaskHandler(tasks TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// TaskRequest представляет запрос на создание или обновление задачи
type TaskRequest struct {
	Number         int      `json:"number" binding:"required,gt=0"`
	Title          string   `json:"title" binding:"required,max=255"`
	DueDate        string   `json:"due_date" binding:"required"`
	EstimatedHours int      `json:"estimated_hours" binding:"required,gt=0"`
	Importance     int      `json:"importance" binding:"required,min=1,max=10"`
	Dependencies   []string `json:"dependencies" binding:"omitempty,dive,uuid"`
}

// TaskResponse представляет ответ с данными задачи
type TaskResponse struct {
	ID                 string   `json:"id"`
	Number             int      `json:"number"`
	Title              string   `json:"title"`
	DueDate            string   `json:"due_date"`
	EstimatedHours     int      `json:"estimated_hours"`
	Importance         int      `json:"importance"`
	Dependencies       []string `json:"dependencies"`
	PriorityScore      float64  `json:"priorityScore"`
	SmartPriorityScore float64  `json:"smartPriorityScore"`
	Completed          bool     `json:"completed"`
	CircularTask       bool     `json:"circularTask"`
	DaysUntilDue       int      `json:"days_until_due"`
}

type ToggleResponse struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

// GraphResponse содержит граф задач и порядок выполнения; order = null при наличии цикла
type GraphResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Order    []string       `json:"order"`
	HasCycle bool           `json:"hasCycle"`
}

func (r TaskRequest) toInput() (service.TaskInput, error) {
	due, err := time.ParseInLocation(dateLayout, r.DueDate, time.UTC)
	if err != nil {
		return service.TaskInput{}, err
	}
	deps := make([]uuid.UUID, 0, len(r.Dependencies))
	for _, s := range r.Dependencies {
		id, err := uuid.Parse(s)
		if err != nil {
			return service.TaskInput{}, err
		}
		deps = append(deps, id)
	}
	return service.TaskInput{
		Number:         r.Number,
		Title:          r.Title,
		DueDate:        due,
		EstimatedHours: r.EstimatedHours,
		Importance:     r.Importance,
		Dependencies:   deps,
	}, nil
}

func toTaskResponse(t *model.Task, today time.Time) TaskResponse {
	deps := make([]string, len(t.DependencyIDs))
	for i, id := range t.DependencyIDs {
		deps[i] = id.String()
	}
	return TaskResponse{
		ID:                 t.ID.String(),
		Number:             t.Number,
		Title:              t.Title,
		DueDate:            t.DueDate.Format(dateLayout),
		EstimatedHours:     t.EstimatedHours,
		Importance:         t.Importance,
		Dependencies:       deps,
		PriorityScore:      t.PriorityScore,
		SmartPriorityScore: t.SmartPriorityScore,
		Completed:          t.Completed,
		CircularTask:       t.CircularTask,
		DaysUntilDue:       scoring.CalendarDays(t.DueDate, today),
	}
}

func toTaskResponses(tasks []model.Task, today time.Time) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = toTaskResponse(&tasks[i], today)
	}
	return out
}

// parseFilter переводит ?filter= и ?min= в TaskFilter
func parseFilter(c *gin.Context) (repository.TaskFilter, bool) {
	var f repository.TaskFilter
	yes, no := true, false

	switch c.Query("filter") {
	case "", "all":
	case "completed":
		f.Completed = &yes
	case "pending":
		f.Completed = &no
	case "circular":
		f.CircularOnly = true
	case "high-priority":
		threshold := defaultHighPriority
		if raw := c.Query("min"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return f, false
			}
			threshold = v
		}
		f.MinPriority = &threshold
	case "by-date":
		f.OrderByDueDate = true
	case "with-dependencies":
		f.HasDependencies = &yes
	case "without-dependencies":
		f.HasDependencies = &no
	default:
		return f, false
	}
	return f, true
}

func (h *TaskHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTask):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDependencyNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrDuplicateNumber):
		c.JSON(http.StatusConflict, gin.H{"error": "Task number already exists"})
	case errors.Is(err, service.ErrHasDependents):
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a task other tasks depend on"})
	default:
		h.logger.Error("task request failed",
			"path", c.FullPath(),
			"error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func taskParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, taskID, true
}

func bindTask(c *gin.Context) (service.TaskInput, bool) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return service.TaskInput{}, false
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date, expected YYYY-MM-DD"})
		return service.TaskInput{}, false
	}
	return in, true
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TaskRequest true "Task"
// @Success      201 {object} TaskResponse
// @Failure      400 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	in, ok := bindTask(c)
	if !ok {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task, time.Now()))
}

// List godoc
// @Summary      List tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        filter query string false "completed | pending | circular | high-priority | by-date | with-dependencies | without-dependencies"
// @Param        min    query number false "Minimum priority score for high-priority (default 5)"
// @Success      200 {array} TaskResponse
// @Failure      400 {object} map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks, time.Now()))
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} TaskResponse
// @Failure      404 {object} map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, taskID, ok := taskParams(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task, time.Now()))
}

// Update godoc
// @Summary      Update a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string      true "Task ID"
// @Param        request body TaskRequest true "Task"
// @Success      200 {object} TaskResponse
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, taskID, ok := taskParams(c)
	if !ok {
		return
	}
	in, ok := bindTask(c)
	if !ok {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, taskID, in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task, time.Now()))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      204
// @Failure      404 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, taskID, ok := taskParams(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Toggle godoc
// @Summary      Toggle task completion
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task ID"
// @Success      200 {object} ToggleResponse
// @Failure      404 {object} map[string]string
// @Router       /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	userID, taskID, ok := taskParams(c)
	if !ok {
		return
	}

	completed, err := h.tasks.ToggleCompleted(c.Request.Context(), userID, taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ToggleResponse{ID: taskID.String(), Completed: completed})
}

// Recompute godoc
// @Summary      Recompute scores and circular flags
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} TaskResponse
// @Router       /tasks/recompute [post]
func (h *TaskHandler) Recompute(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	tasks, err := h.tasks.Recompute(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTaskResponses(tasks, time.Now()))
}

// Graph godoc
// @Summary      Dependency graph with execution order
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} GraphResponse
// @Router       /tasks/graph [get]
func (h *TaskHandler) Graph(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	view, err := h.tasks.Graph(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := GraphResponse{
		Tasks:    toTaskResponses(view.Tasks, time.Now()),
		HasCycle: view.Order == nil && len(view.Tasks) > 0,
	}
	if view.Order != nil {
		resp.Order = make([]string, len(view.Order))
		for i, id := range view.Order {
			resp.Order[i] = id.String()
		}
	}
	c.JSON(http.StatusOK, resp)
}
