package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectpulse/internal/model"
	"projectpulse/internal/repository"
	"projectpulse/internal/service/authz"
)

type TaskHandler struct {
	taskRepo    *repository.TaskRepository
	projectRepo *repository.ProjectRepository
	gate        *authz.Gate
	activity    *activityRecorder
	logger      *zap.Logger
}

func NewTaskHandler(
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	gate *authz.Gate,
	producer Publisher,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		gate:        gate,
		activity:    &activityRecorder{producer: producer, logger: logger},
		logger:      logger,
	}
}

// ListTasks handles GET /projects/:id/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	tasks, err := h.taskRepo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// CreateTask handles POST /projects/:id/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, _ := currentUserID(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Title          string  `json:"title"`
		Status         string  `json:"status"`
		Priority       string  `json:"priority"`
		AssignedUserID *int    `json:"assigned_user_id"`
		DueTime        *string `json:"due_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.Title == "" {
		respondError(c, validationErr("title is required"))
		return
	}

	status := model.TaskStatus(req.Status)
	if req.Status == "" {
		status = model.TaskTodo
	}
	if !status.Valid() {
		respondError(c, validationErr("invalid task status"))
		return
	}

	priority := model.TaskPriority(req.Priority)
	if req.Priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		respondError(c, validationErr("invalid task priority"))
		return
	}

	var dueTime *time.Time
	if req.DueTime != nil && *req.DueTime != "" {
		d, err := time.Parse(time.RFC3339, *req.DueTime)
		if err != nil {
			respondError(c, validationErr("due_time must be RFC3339"))
			return
		}
		dueTime = &d
	}

	task := &model.Task{
		ProjectID:      projectID,
		Title:          req.Title,
		Status:         status,
		Priority:       priority,
		AssignedUserID: req.AssignedUserID,
		DueTime:        dueTime,
		Version:        1,
	}

	id, err := h.taskRepo.Insert(c.Request.Context(), task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}
	task.ID = id

	h.activity.record(userID, "created task %q", task.Title)
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// GetTask handles GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := h.taskRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UpdateTaskStatus handles PUT /tasks/:id/status
// 客户端必须回传读到的 version，过期版本会被拒绝并要求重新拉取。
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req struct {
		Status  string `json:"status"`
		Version int    `json:"version"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	status := model.TaskStatus(req.Status)
	if !status.Valid() {
		respondError(c, validationErr("invalid task status"))
		return
	}

	ctx := c.Request.Context()
	task, err := h.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		}
		return
	}

	if task.Status == status {
		// 幂等：目标状态与当前一致，直接返回成功，不发事件不升 version
		c.JSON(http.StatusOK, gin.H{"task": task})
		return
	}

	ok, err := h.taskRepo.UpdateStatus(ctx, id, status, req.Version)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "task was modified concurrently, refetch and retry"})
		return
	}

	task.Status = status
	task.Version = req.Version + 1

	h.activity.record(userID, "moved task %q to %s", task.Title, status)
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DeleteTask handles DELETE /tasks/:id（仅项目 owner）
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	ctx := c.Request.Context()
	task, err := h.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		}
		return
	}

	project, err := h.projectRepo.FindByID(ctx, task.ProjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		return
	}
	if err := h.gate.Require(userID, project); err != nil {
		respondError(c, err)
		return
	}

	if err := h.taskRepo.Delete(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}

	h.activity.record(userID, "deleted task %q", task.Title)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
