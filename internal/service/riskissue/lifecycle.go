// Package riskissue 管理风险/问题记录的两态生命周期。
// 状态机：open <-> closed，初始恒为 open，两个方向的迁移都是
// owner-gated 且幂等（"set to X" 语义，重复设置同一目标状态是 no-op 成功）。
package riskissue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectpulse/internal/apperr"
	"projectpulse/internal/model"
	"projectpulse/internal/mq"
	"projectpulse/internal/service/authz"
)

type Store interface {
	Insert(ctx context.Context, ri *model.RiskIssue) (int, error)
	FindByID(ctx context.Context, id int) (*model.RiskIssue, error)
	ListByProject(ctx context.Context, projectID int) ([]model.RiskIssue, error)
	UpdateStatus(ctx context.Context, id int, status model.RiskIssueStatus, version int) (bool, error)
}

type ProjectStore interface {
	FindByID(ctx context.Context, id int) (*model.Project, error)
}

type Publisher interface {
	Publish(routingKey string, payload any) error
}

type CreateInput struct {
	Type        model.RiskIssueType `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ImpactLevel model.ImpactLevel   `json:"impact_level"`
}

type Manager struct {
	store    Store
	projects ProjectStore
	gate     *authz.Gate
	producer Publisher
	logger   *zap.Logger
}

func NewManager(store Store, projects ProjectStore, gate *authz.Gate, producer Publisher, logger *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		projects: projects,
		gate:     gate,
		producer: producer,
		logger:   logger,
	}
}

// Create 校验并落库一条新记录，状态强制为 open（不接受调用方指定）。
func (m *Manager) Create(ctx context.Context, projectID, actorID int, input CreateInput) (*model.RiskIssue, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	project, err := m.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := m.gate.Require(actorID, project); err != nil {
		return nil, err
	}

	ri := &model.RiskIssue{
		ProjectID:   projectID,
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
		ImpactLevel: input.ImpactLevel,
		Status:      model.StatusOpen,
	}
	if _, err := m.store.Insert(ctx, ri); err != nil {
		return nil, apperr.Transient("failed to store risk/issue", err)
	}

	m.publishActivity(actorID, fmt.Sprintf("reported %s %q on project %q", ri.Type, ri.Title, project.Name))

	m.logger.Info("Risk/issue created",
		zap.Int("id", ri.ID),
		zap.Int("project_id", projectID),
		zap.String("type", string(ri.Type)),
	)
	return ri, nil
}

// SetStatus 把记录置为目标状态。语义是 "set to X" 而非 toggle：
// 记录已处于目标状态时直接返回成功，不产生重复事件。
// 除 status 外的字段不可变；version 不匹配映射为 Conflict。
func (m *Manager) SetStatus(ctx context.Context, id, actorID int, newStatus model.RiskIssueStatus) (*model.RiskIssue, error) {
	if !newStatus.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("invalid status %q", newStatus))
	}

	ri, err := m.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("risk/issue not found")
		}
		return nil, apperr.Transient("failed to load risk/issue", err)
	}

	// 每次变更都重新读取项目再过 gate，不缓存判定结果
	project, err := m.findProject(ctx, ri.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := m.gate.Require(actorID, project); err != nil {
		return nil, err
	}

	if ri.Status == newStatus {
		return ri, nil
	}

	ok, err := m.store.UpdateStatus(ctx, id, newStatus, ri.Version)
	if err != nil {
		return nil, apperr.Transient("failed to update risk/issue status", err)
	}
	if !ok {
		return nil, apperr.Conflict("risk/issue was modified concurrently, refetch and retry")
	}

	ri.Status = newStatus
	ri.Version++
	ri.UpdatedAt = time.Now()

	m.publishActivity(actorID, fmt.Sprintf("marked %s %q as %s", ri.Type, ri.Title, newStatus))

	m.logger.Info("Risk/issue status updated",
		zap.Int("id", id),
		zap.String("status", string(newStatus)),
	)
	return ri, nil
}

// List 返回项目的全部风险/问题，最新在前。风险和问题共用一个集合，
// 按 Type 的拆分只在展示层做。
func (m *Manager) List(ctx context.Context, projectID int) ([]model.RiskIssue, error) {
	items, err := m.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Transient("failed to list risk/issues", err)
	}
	return items, nil
}

func (m *Manager) findProject(ctx context.Context, projectID int) (*model.Project, error) {
	project, err := m.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, apperr.Transient("failed to load project", err)
	}
	return project, nil
}

// 活动流是尽力而为的：落库已成功，发布失败只记日志，不让调用失败。
func (m *Manager) publishActivity(actorID int, description string) {
	payload := mq.ActivityRecordedPayload{
		ActorID:     actorID,
		Description: description,
		OccurredAt:  time.Now(),
	}
	if err := m.producer.Publish(mq.RoutingKeyActivityRecorded, payload); err != nil {
		m.logger.Warn("Failed to publish activity event",
			zap.Error(err),
			zap.Int("actor_id", actorID),
		)
	}
}

func validate(input CreateInput) error {
	if input.Title == "" {
		return apperr.Validation("title is required")
	}
	if !input.Type.Valid() {
		return apperr.Validation(fmt.Sprintf("type must be risk or issue, got %q", input.Type))
	}
	if !input.ImpactLevel.Valid() {
		return apperr.Validation(fmt.Sprintf("impact_level must be low, medium or high, got %q", input.ImpactLevel))
	}
	return nil
}
