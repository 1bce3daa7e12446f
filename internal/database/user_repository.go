package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tandemrecruit/ReplyStack-sub002/internal/domain"
)

// userColumns must match the Scan order in scanUser.
const userColumns = `id, email, COALESCE(organization_id, '00000000-0000-0000-0000-000000000000'::uuid), created_at, updated_at`

// UserRepo implements domain.UserRepository backed by PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.OrganizationID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

func (r *UserRepo) Upsert(ctx context.Context, email string, organizationID uuid.UUID) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (email, organization_id, created_at, updated_at)
		VALUES ($1, NULLIF($2, '00000000-0000-0000-0000-000000000000'::uuid), NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET
			organization_id = EXCLUDED.organization_id,
			updated_at = NOW()
		RETURNING `+userColumns, email, organizationID))
}
