package repository

import (
	"context"

	"projectpulse/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.Int("owner_id", p.OwnerID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO projects (owner_id, name, description, budget_cents, status, start_date, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.OwnerID,
		p.Name,
		p.Description,
		int64(p.Budget),
		p.Status,
		p.StartDate,
		p.DueDate,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}

	r.logger.Info("Project inserted successfully",
		zap.Int("id", id),
		zap.Int("owner_id", p.OwnerID),
	)
	return id, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, owner_id, name, description, budget_cents, status, start_date, due_date, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	var budget int64
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&budget,
		&p.Status,
		&p.StartDate,
		&p.DueDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Budget = model.Cents(budget)
	return &p, nil
}

// ListVisible 返回用户拥有或作为成员参与的项目。
func (r *ProjectRepository) ListVisible(ctx context.Context, userID int) ([]model.Project, error) {
	r.logger.Debug("Listing projects for user", zap.Int("user_id", userID))
	query := `
        SELECT DISTINCT p.id, p.owner_id, p.name, p.description, p.budget_cents, p.status,
               p.start_date, p.due_date, p.created_at, p.updated_at
        FROM projects p
        LEFT JOIN memberships m ON m.project_id = p.id
        WHERE p.owner_id = $1 OR m.user_id = $1
        ORDER BY p.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err), zap.Int("user_id", userID))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		var budget int64
		if err := rows.Scan(
			&p.ID,
			&p.OwnerID,
			&p.Name,
			&p.Description,
			&budget,
			&p.Status,
			&p.StartDate,
			&p.DueDate,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		p.Budget = model.Cents(budget)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET name = $2, description = $3, budget_cents = $4, status = $5,
            start_date = $6, due_date = $7, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		int64(p.Budget),
		p.Status,
		p.StartDate,
		p.DueDate,
	)
	if err != nil {
		r.logger.Error("Failed to update project", zap.Error(err), zap.Int("id", p.ID))
		return err
	}
	r.logger.Info("Project updated",
		zap.Int("id", p.ID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// Delete 删除项目并级联删除其任务/支出/风险记录/成员关系。
func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM projects WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.Error(err), zap.Int("id", id))
		return err
	}
	r.logger.Info("Project deleted",
		zap.Int("id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
