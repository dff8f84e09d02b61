package repository

import (
	"context"
	"projectpulse/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type MembershipRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMembershipRepository(db *pgxpool.Pool, logger *zap.Logger) *MembershipRepository {
	return &MembershipRepository{db: db, logger: logger}
}

func (r *MembershipRepository) Add(ctx context.Context, projectID, userID int) error {
	query := `
        INSERT INTO memberships (project_id, user_id, added_at)
        VALUES ($1, $2, NOW())
    `
	_, err := r.db.Exec(ctx, query, projectID, userID)
	if err != nil {
		r.logger.Error("Failed to add member",
			zap.Error(err),
			zap.Int("project_id", projectID),
			zap.Int("user_id", userID),
		)
		return err
	}
	r.logger.Info("Member added",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
	)
	return nil
}

func (r *MembershipRepository) Remove(ctx context.Context, projectID, userID int) error {
	query := `DELETE FROM memberships WHERE project_id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, projectID, userID)
	if err != nil {
		r.logger.Error("Failed to remove member",
			zap.Error(err),
			zap.Int("project_id", projectID),
			zap.Int("user_id", userID),
		)
		return err
	}
	r.logger.Info("Member removed",
		zap.Int("project_id", projectID),
		zap.Int("user_id", userID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// ListMembers 返回项目成员（含 owner），owner 永远排在最前。
func (r *MembershipRepository) ListMembers(ctx context.Context, projectID int) ([]model.Member, error) {
	query := `
        SELECT u.id, u.name, u.email, (u.id = p.owner_id) AS is_owner,
               COALESCE(m.added_at, p.created_at) AS added_at
        FROM projects p
        JOIN users u ON u.id = p.owner_id OR u.id IN (
            SELECT user_id FROM memberships WHERE project_id = p.id
        )
        LEFT JOIN memberships m ON m.project_id = p.id AND m.user_id = u.id
        WHERE p.id = $1
        ORDER BY is_owner DESC, added_at ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query members",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.IsOwner, &m.AddedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *MembershipRepository) IsMember(ctx context.Context, projectID, userID int) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM projects WHERE id = $1 AND owner_id = $2
            UNION
            SELECT 1 FROM memberships WHERE project_id = $1 AND user_id = $2
        )
    `
	var ok bool
	if err := r.db.QueryRow(ctx, query, projectID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
