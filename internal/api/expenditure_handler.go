package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectpulse/internal/model"
	"projectpulse/internal/repository"
	"projectpulse/internal/service/authz"
	"projectpulse/internal/service/ledger"
)

type ExpenditureHandler struct {
	expenditureRepo *repository.ExpenditureRepository
	projectRepo     *repository.ProjectRepository
	view            *ledger.View
	gate            *authz.Gate
	activity        *activityRecorder
	logger          *zap.Logger
}

func NewExpenditureHandler(
	expenditureRepo *repository.ExpenditureRepository,
	projectRepo *repository.ProjectRepository,
	view *ledger.View,
	gate *authz.Gate,
	producer Publisher,
	logger *zap.Logger,
) *ExpenditureHandler {
	return &ExpenditureHandler{
		expenditureRepo: expenditureRepo,
		projectRepo:     projectRepo,
		view:            view,
		gate:            gate,
		activity:        &activityRecorder{producer: producer, logger: logger},
		logger:          logger,
	}
}

// ListExpenditures handles GET /projects/:id/expenditures
// 返回入账顺序的流水加整数分精确总额。
func (h *ExpenditureHandler) ListExpenditures(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	ctx := c.Request.Context()
	items, err := h.view.List(ctx, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.view.Total(ctx, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expenditures": items,
		"total":        total,
	})
}

// GetExpendituresTotal handles GET /projects/:id/expenditures/total
func (h *ExpenditureHandler) GetExpendituresTotal(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	total, err := h.view.Total(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

// CreateExpenditure handles POST /projects/:id/expenditures
// 任意成员可记支出；金额必须非负且最多两位小数。
func (h *ExpenditureHandler) CreateExpenditure(c *gin.Context) {
	userID, _ := currentUserID(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	amount, err := model.ParseCents(req.Amount)
	if err != nil {
		respondError(c, validationErr("invalid amount: "+err.Error()))
		return
	}
	if req.Description == "" {
		respondError(c, validationErr("description is required"))
		return
	}

	e := &model.Expenditure{
		ProjectID:   projectID,
		Amount:      amount,
		Description: req.Description,
	}
	id, err := h.expenditureRepo.Insert(c.Request.Context(), e)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record expenditure"})
		return
	}
	e.ID = id

	h.activity.record(userID, "recorded expenditure %s for %q", amount, e.Description)
	c.JSON(http.StatusCreated, gin.H{"expenditure": e})
}

// DeleteExpenditure handles DELETE /expenditures/:id（仅项目 owner）
// 支出不可原地修改，记错了只能删除后重记。
func (h *ExpenditureHandler) DeleteExpenditure(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expenditure id"})
		return
	}

	ctx := c.Request.Context()
	e, err := h.expenditureRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "expenditure not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load expenditure"})
		}
		return
	}

	project, err := h.projectRepo.FindByID(ctx, e.ProjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		return
	}
	if err := h.gate.Require(userID, project); err != nil {
		respondError(c, err)
		return
	}

	if err := h.expenditureRepo.Delete(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete expenditure"})
		return
	}

	h.activity.record(userID, "removed expenditure %s (%q)", e.Amount, e.Description)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
