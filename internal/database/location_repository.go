package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tandemrecruit/ReplyStack-sub002/internal/domain"
)

// locationColumns must match the Scan order in scanLocation.
const locationColumns = `id, organization_id, google_account_id, google_location_id, name, address, created_at, updated_at`

// LocationRepo implements domain.LocationRepository backed by PostgreSQL.
type LocationRepo struct {
	pool *pgxpool.Pool
}

func NewLocationRepo(pool *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{pool: pool}
}

func (r *LocationRepo) scanLocation(row pgx.Row) (*domain.Location, error) {
	var loc domain.Location
	err := row.Scan(
		&loc.ID, &loc.OrganizationID, &loc.GoogleAccountID, &loc.GoogleLocationID,
		&loc.Name, &loc.Address, &loc.CreatedAt, &loc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *LocationRepo) GetByID(ctx context.Context, locationID uuid.UUID) (*domain.Location, error) {
	return r.scanLocation(r.pool.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = $1`, locationID))
}

func (r *LocationRepo) Upsert(ctx context.Context, orgID uuid.UUID, googleAccountID, googleLocationID, name, address string) (*domain.Location, error) {
	return r.scanLocation(r.pool.QueryRow(ctx, `
		INSERT INTO locations (organization_id, google_account_id, google_location_id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (organization_id, google_location_id) DO UPDATE SET
			google_account_id = EXCLUDED.google_account_id,
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			updated_at = NOW()
		RETURNING `+locationColumns, orgID, googleAccountID, googleLocationID, name, address))
}
