package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tandemrecruit/ReplyStack-sub002/internal/domain"
)

// orgColumns must match the Scan order in scanOrganization.
const orgColumns = `id, name, google_refresh_token, created_at, updated_at`

// OrganizationRepo implements domain.OrganizationRepository backed by
// PostgreSQL. The google_refresh_token column holds the encrypted blob
// verbatim; encryption and decryption happen in the application layer so the
// publish workflow controls when the credential is opened.
type OrganizationRepo struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepo(pool *pgxpool.Pool) *OrganizationRepo {
	return &OrganizationRepo{pool: pool}
}

func scanOrganization(row pgx.Row) (*domain.Organization, error) {
	var org domain.Organization
	err := row.Scan(&org.ID, &org.Name, &org.RefreshToken, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepo) GetByID(ctx context.Context, orgID uuid.UUID) (*domain.Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = $1`, orgID))
}

func (r *OrganizationRepo) Create(ctx context.Context, name string) (*domain.Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING `+orgColumns, name))
}

// SetRefreshToken stores a freshly obtained credential blob.
func (r *OrganizationRepo) SetRefreshToken(ctx context.Context, orgID uuid.UUID, refreshToken string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE organizations
		SET google_refresh_token = $1, updated_at = NOW()
		WHERE id = $2
	`, refreshToken, orgID)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrganizationNotFound
	}

	return nil
}

// ClearRefreshToken removes the stored credential after the provider reported
// it invalid.
func (r *OrganizationRepo) ClearRefreshToken(ctx context.Context, orgID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE organizations
		SET google_refresh_token = '', updated_at = NOW()
		WHERE id = $1
	`, orgID)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrganizationNotFound
	}

	return nil
}
