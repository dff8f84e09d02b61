package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectpulse/internal/repository"
	"projectpulse/internal/service/authz"
)

type MemberHandler struct {
	membershipRepo *repository.MembershipRepository
	projectRepo    *repository.ProjectRepository
	userRepo       *repository.UserRepository
	gate           *authz.Gate
	activity       *activityRecorder
	logger         *zap.Logger
}

func NewMemberHandler(
	membershipRepo *repository.MembershipRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	gate *authz.Gate,
	producer Publisher,
	logger *zap.Logger,
) *MemberHandler {
	return &MemberHandler{
		membershipRepo: membershipRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		gate:           gate,
		activity:       &activityRecorder{producer: producer, logger: logger},
		logger:         logger,
	}
}

// ListMembers handles GET /projects/:id/members（owner 排首位）
func (h *MemberHandler) ListMembers(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	members, err := h.membershipRepo.ListMembers(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// AddMember handles POST /projects/:id/members（仅项目 owner）
func (h *MemberHandler) AddMember(c *gin.Context) {
	userID, _ := currentUserID(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req struct {
		UserID int `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	project, err := h.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		}
		return
	}
	if err := h.gate.Require(userID, project); err != nil {
		respondError(c, err)
		return
	}

	added, err := h.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		}
		return
	}

	if err := h.membershipRepo.Add(ctx, projectID, req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}

	h.activity.record(userID, "added %s to project %q", added.Name, project.Name)
	c.JSON(http.StatusCreated, gin.H{"status": "added"})
}

// RemoveMember handles DELETE /projects/:id/members/:userId（仅项目 owner）
// owner 自身不可被移除。
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	userID, _ := currentUserID(c)
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	targetID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx := c.Request.Context()
	project, err := h.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load project"})
		}
		return
	}
	if err := h.gate.Require(userID, project); err != nil {
		respondError(c, err)
		return
	}

	if targetID == project.OwnerID {
		respondError(c, validationErr("project owner cannot be removed"))
		return
	}

	if err := h.membershipRepo.Remove(ctx, projectID, targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}

	h.activity.record(userID, "removed user %d from project %q", targetID, project.Name)
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
