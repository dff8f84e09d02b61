package repository

import (
	"context"
	"projectpulse/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (int, error) {
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.String("title", t.Title),
		zap.String("status", string(t.Status)),
		zap.String("priority", string(t.Priority)),
	)
	query := `
        INSERT INTO tasks (project_id, title, status, priority, assigned_user_id, due_time, version)
        VALUES ($1, $2, $3, $4, $5, $6, 1)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		t.ProjectID,
		t.Title,
		t.Status,
		t.Priority,
		t.AssignedUserID,
		t.DueTime,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("project_id", t.ProjectID),
		)
		return 0, err
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", id),
		zap.Int("project_id", t.ProjectID),
	)
	return id, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, project_id, title, status, priority, assigned_user_id, due_time, version, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Status,
		&t.Priority,
		&t.AssignedUserID,
		&t.DueTime,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.Task, error) {
	r.logger.Debug("Listing tasks for project", zap.Int("project_id", projectID))
	query := `
        SELECT id, project_id, title, status, priority, assigned_user_id, due_time, version, created_at, updated_at
        FROM tasks
        WHERE project_id = $1
        ORDER BY created_at ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.Status,
			&t.Priority,
			&t.AssignedUserID,
			&t.DueTime,
			&t.Version,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, t)
	}
	r.logger.Info("Tasks listed successfully",
		zap.Int("project_id", projectID),
		zap.Int("count", len(tasks)),
	)
	return tasks, rows.Err()
}

// UpdateStatus 只改状态字段，并校验 version。
// 返回 false 表示 version 不匹配（并发写冲突），调用方映射为 Conflict。
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int, status model.TaskStatus, version int) (bool, error) {
	r.logger.Debug("Updating task status",
		zap.Int("task_id", id),
		zap.String("status", string(status)),
		zap.Int("version", version),
	)
	query := `
        UPDATE tasks
        SET status = $2, version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $3
    `
	result, err := r.db.Exec(ctx, query, id, status, version)
	if err != nil {
		r.logger.Error("Failed to update task status",
			zap.Error(err),
			zap.Int("task_id", id),
		)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Error(err), zap.Int("task_id", id))
		return err
	}
	r.logger.Info("Task deleted",
		zap.Int("task_id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
