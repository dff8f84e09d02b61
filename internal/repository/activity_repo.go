package repository

import (
	"context"
	"projectpulse/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository 活动流是追加型的：只有插入和按时间倒序的读取。
type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Insert(ctx context.Context, e *model.ActivityEvent) error {
	query := `
        INSERT INTO activity_events (actor_id, actor_name, description, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, e.ActorID, e.ActorName, e.Description, e.CreatedAt).Scan(&e.ID)
}

// ListRecent 最新在前，limit 限制返回条数。
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]model.ActivityEvent, error) {
	query := `
        SELECT id, actor_id, actor_name, description, created_at
        FROM activity_events
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.ActivityEvent{}
	for rows.Next() {
		var e model.ActivityEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
