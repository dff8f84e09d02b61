package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projectpulse/internal/model"
	"projectpulse/internal/service/riskissue"
)

// RiskIssueHandler 只做参数解析和错误映射，生命周期规则全部在 Manager 内。
type RiskIssueHandler struct {
	manager *riskissue.Manager
	logger  *zap.Logger
}

func NewRiskIssueHandler(manager *riskissue.Manager, logger *zap.Logger) *RiskIssueHandler {
	return &RiskIssueHandler{manager: manager, logger: logger}
}

// ListRiskIssues handles GET /projects/:id/risks-issues
func (h *RiskIssueHandler) ListRiskIssues(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	items, err := h.manager.List(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_issues": items})
}

// CreateRiskIssue handles POST /projects/:id/risks-issues（仅项目 owner）
func (h *RiskIssueHandler) CreateRiskIssue(c *gin.Context) {
	userID, _ := currentUserID(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var input riskissue.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.manager.Create(c.Request.Context(), projectID, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"risk_issue": item})
}

// UpdateRiskIssueStatus handles PUT /risks-issues/:id/status（仅项目 owner）
func (h *RiskIssueHandler) UpdateRiskIssueStatus(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid risk/issue id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.manager.SetStatus(c.Request.Context(), id, userID, model.RiskIssueStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_issue": item})
}
