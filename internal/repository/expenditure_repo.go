package repository

import (
	"context"
	"projectpulse/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ExpenditureRepository 只提供新增/删除/查询。
// 支出记录入账后金额不可修改，项目总支出只能通过增删调整。
type ExpenditureRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExpenditureRepository(db *pgxpool.Pool, logger *zap.Logger) *ExpenditureRepository {
	return &ExpenditureRepository{db: db, logger: logger}
}

func (r *ExpenditureRepository) Insert(ctx context.Context, e *model.Expenditure) (int, error) {
	r.logger.Debug("Inserting expenditure",
		zap.Int("project_id", e.ProjectID),
		zap.String("amount", e.Amount.String()),
	)
	query := `
        INSERT INTO expenditures (project_id, amount_cents, description, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		e.ProjectID,
		int64(e.Amount),
		e.Description,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert expenditure",
			zap.Error(err),
			zap.Int("project_id", e.ProjectID),
		)
		return 0, err
	}
	r.logger.Info("Expenditure inserted successfully",
		zap.Int("id", e.ID),
		zap.Int("project_id", e.ProjectID),
	)
	return e.ID, nil
}

// ListByProject 按创建时间升序返回（展示顺序即入账顺序）。
func (r *ExpenditureRepository) ListByProject(ctx context.Context, projectID int) ([]model.Expenditure, error) {
	query := `
        SELECT id, project_id, amount_cents, description, created_at
        FROM expenditures
        WHERE project_id = $1
        ORDER BY created_at ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query expenditures",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	items := []model.Expenditure{}
	for rows.Next() {
		var e model.Expenditure
		var amount int64
		if err := rows.Scan(&e.ID, &e.ProjectID, &amount, &e.Description, &e.CreatedAt); err != nil {
			r.logger.Error("Failed to scan expenditure row", zap.Error(err))
			return nil, err
		}
		e.Amount = model.Cents(amount)
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *ExpenditureRepository) FindByID(ctx context.Context, id int) (*model.Expenditure, error) {
	query := `
        SELECT id, project_id, amount_cents, description, created_at
        FROM expenditures
        WHERE id = $1
    `
	var e model.Expenditure
	var amount int64
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.ProjectID, &amount, &e.Description, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Amount = model.Cents(amount)
	return &e, nil
}

func (r *ExpenditureRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM expenditures WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete expenditure", zap.Error(err), zap.Int("id", id))
		return err
	}
	r.logger.Info("Expenditure deleted",
		zap.Int("id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
