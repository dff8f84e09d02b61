package repository

import (
	"context"
	"projectpulse/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type RiskIssueRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRiskIssueRepository(db *pgxpool.Pool, logger *zap.Logger) *RiskIssueRepository {
	return &RiskIssueRepository{db: db, logger: logger}
}

func (r *RiskIssueRepository) Insert(ctx context.Context, ri *model.RiskIssue) (int, error) {
	r.logger.Debug("Inserting risk/issue",
		zap.Int("project_id", ri.ProjectID),
		zap.String("type", string(ri.Type)),
		zap.String("title", ri.Title),
	)
	query := `
        INSERT INTO risk_issues (project_id, type, title, description, impact_level, status, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		ri.ProjectID,
		ri.Type,
		ri.Title,
		ri.Description,
		ri.ImpactLevel,
		ri.Status,
	).Scan(&ri.ID, &ri.CreatedAt, &ri.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert risk/issue",
			zap.Error(err),
			zap.Int("project_id", ri.ProjectID),
		)
		return 0, err
	}
	ri.Version = 1
	r.logger.Info("Risk/issue inserted successfully",
		zap.Int("id", ri.ID),
		zap.Int("project_id", ri.ProjectID),
	)
	return ri.ID, nil
}

func (r *RiskIssueRepository) FindByID(ctx context.Context, id int) (*model.RiskIssue, error) {
	query := `
        SELECT id, project_id, type, title, description, impact_level, status, version, created_at, updated_at
        FROM risk_issues
        WHERE id = $1
    `
	var ri model.RiskIssue
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ri.ID,
		&ri.ProjectID,
		&ri.Type,
		&ri.Title,
		&ri.Description,
		&ri.ImpactLevel,
		&ri.Status,
		&ri.Version,
		&ri.CreatedAt,
		&ri.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ri, nil
}

// ListByProject 最新的排在最前，保证刚创建的记录出现在列表头部。
func (r *RiskIssueRepository) ListByProject(ctx context.Context, projectID int) ([]model.RiskIssue, error) {
	query := `
        SELECT id, project_id, type, title, description, impact_level, status, version, created_at, updated_at
        FROM risk_issues
        WHERE project_id = $1
        ORDER BY created_at DESC, id DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query risk/issues",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	items := []model.RiskIssue{}
	for rows.Next() {
		var ri model.RiskIssue
		if err := rows.Scan(
			&ri.ID,
			&ri.ProjectID,
			&ri.Type,
			&ri.Title,
			&ri.Description,
			&ri.ImpactLevel,
			&ri.Status,
			&ri.Version,
			&ri.CreatedAt,
			&ri.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan risk/issue row", zap.Error(err))
			return nil, err
		}
		items = append(items, ri)
	}
	return items, rows.Err()
}

// UpdateStatus 只改 status 字段并校验 version，其余字段创建后不可变。
// 返回 false 表示 version 不匹配（并发写冲突）。
func (r *RiskIssueRepository) UpdateStatus(ctx context.Context, id int, status model.RiskIssueStatus, version int) (bool, error) {
	r.logger.Debug("Updating risk/issue status",
		zap.Int("id", id),
		zap.String("status", string(status)),
		zap.Int("version", version),
	)
	query := `
        UPDATE risk_issues
        SET status = $2, version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $3
    `
	result, err := r.db.Exec(ctx, query, id, status, version)
	if err != nil {
		r.logger.Error("Failed to update risk/issue status",
			zap.Error(err),
			zap.Int("id", id),
		)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
