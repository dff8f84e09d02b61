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
	"projectpulse/internal/service/health"
)

type ProjectHandler struct {
	projectRepo     *repository.ProjectRepository
	taskRepo        *repository.TaskRepository
	expenditureRepo *repository.ExpenditureRepository
	membershipRepo  *repository.MembershipRepository
	gate            *authz.Gate
	activity        *activityRecorder
	logger          *zap.Logger
}

func NewProjectHandler(
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	expenditureRepo *repository.ExpenditureRepository,
	membershipRepo *repository.MembershipRepository,
	gate *authz.Gate,
	producer Publisher,
	logger *zap.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projectRepo:     projectRepo,
		taskRepo:        taskRepo,
		expenditureRepo: expenditureRepo,
		membershipRepo:  membershipRepo,
		gate:            gate,
		activity:        &activityRecorder{producer: producer, logger: logger},
		logger:          logger,
	}
}

type projectRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Budget      string  `json:"budget"`
	Status      string  `json:"status"`
	StartDate   string  `json:"start_date"`
	DueDate     *string `json:"due_date"`
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, _ := currentUserID(c)
	projects, err := h.projectRepo.ListVisible(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.projectFromRequest(req)
	if err != nil {
		respondError(c, err)
		return
	}
	p.OwnerID = userID

	id, err := h.projectRepo.Insert(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}
	p.ID = id

	h.activity.record(userID, "created project %q", p.Name)
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

// GetProject handles GET /projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, _ := currentUserID(c)
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	// 非成员不可见
	isMember, err := h.membershipRepo.IsMember(c.Request.Context(), project.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project":  project,
		"is_owner": h.gate.CanMutate(userID, project),
	})
}

// UpdateProject handles PUT /projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, _ := currentUserID(c)
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	if err := h.gate.Require(userID, project); err != nil {
		respondError(c, err)
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := h.projectFromRequest(req)
	if err != nil {
		respondError(c, err)
		return
	}
	updated.ID = project.ID
	updated.OwnerID = project.OwnerID

	if err := h.projectRepo.Update(c.Request.Context(), updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	h.activity.record(userID, "updated project %q", updated.Name)
	c.JSON(http.StatusOK, gin.H{"project": updated})
}

// DeleteProject handles DELETE /projects/:id
// 删除级联移除项目的任务、支出和风险记录（外键 ON DELETE CASCADE）。
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, _ := currentUserID(c)
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	if err := h.gate.Require(userID, project); err != nil {
		respondError(c, err)
		return
	}

	if err := h.projectRepo.Delete(c.Request.Context(), project.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	h.activity.record(userID, "deleted project %q", project.Name)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetReport handles GET /projects/:id/report
// 报表每次都从任务和支出流现算，不存任何派生状态。
func (h *ProjectHandler) GetReport(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	tasks, err := h.taskRepo.ListByProject(ctx, project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tasks"})
		return
	}
	expenditures, err := h.expenditureRepo.ListByProject(ctx, project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch expenditures"})
		return
	}

	report := health.ComputeHealth(tasks, expenditures, project.Budget)
	c.JSON(http.StatusOK, gin.H{
		"project":   project,
		"report":    report,
		"breakdown": health.Breakdown(expenditures),
	})
}

func (h *ProjectHandler) loadProject(c *gin.Context) (*model.Project, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return nil, false
	}

	project, err := h.projectRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		} else {
			h.logger.Error("Failed to load project", zap.Error(err), zap.Int("id", id))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		}
		return nil, false
	}
	return project, true
}

func (h *ProjectHandler) projectFromRequest(req projectRequest) (*model.Project, error) {
	budget, err := model.ParseCents(req.Budget)
	if err != nil {
		return nil, validationErr("invalid budget: " + err.Error())
	}

	status := model.ProjectStatus(req.Status)
	if req.Status == "" {
		status = model.ProjectPlanning
	}
	if !status.Valid() {
		return nil, validationErr("invalid project status")
	}

	startDate := time.Now()
	if req.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, validationErr("start_date must be YYYY-MM-DD")
		}
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		d, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, validationErr("due_date must be YYYY-MM-DD")
		}
		dueDate = &d
	}

	if req.Name == "" {
		return nil, validationErr("name is required")
	}

	return &model.Project{
		Name:        req.Name,
		Description: req.Description,
		Budget:      budget,
		Status:      status,
		StartDate:   startDate,
		DueDate:     dueDate,
	}, nil
}
