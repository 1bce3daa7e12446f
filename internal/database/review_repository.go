package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tandemrecruit/ReplyStack-sub002/internal/domain"
)

// reviewColumns must match the Scan order in scanReview.
const reviewColumns = `r.id, r.location_id, r.google_review_id, r.reviewer_name, r.comment, r.rating, r.has_reply, r.status, r.created_at, r.updated_at`

// ReviewRepo implements domain.ReviewRepository backed by PostgreSQL.
type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID, &review.LocationID, &review.GoogleReviewID, &review.ReviewerName,
		&review.Comment, &review.Rating, &review.HasReply, &review.Status,
		&review.CreatedAt, &review.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetForOrganization resolves a review scoped to an organization via its
// location. A review owned by another organization scans as no rows, so the
// caller cannot tell it apart from a review that does not exist.
func (r *ReviewRepo) GetForOrganization(ctx context.Context, reviewID, orgID uuid.UUID) (*domain.Review, error) {
	return scanReview(r.pool.QueryRow(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		JOIN locations l ON l.id = r.location_id
		WHERE r.id = $1 AND l.organization_id = $2
	`, reviewID, orgID))
}

func (r *ReviewRepo) Upsert(ctx context.Context, locationID uuid.UUID, googleReviewID, reviewerName, comment string, rating *int, hasReply bool) (*domain.Review, error) {
	status := domain.ReviewStatusPending
	if hasReply {
		status = domain.ReviewStatusResponded
	}

	return scanReview(r.pool.QueryRow(ctx, `
		INSERT INTO reviews AS r (location_id, google_review_id, reviewer_name, comment, rating, has_reply, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (location_id, google_review_id) DO UPDATE SET
			reviewer_name = EXCLUDED.reviewer_name,
			comment = EXCLUDED.comment,
			rating = EXCLUDED.rating,
			has_reply = EXCLUDED.has_reply,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING `+reviewColumns, locationID, googleReviewID, reviewerName, comment, rating, hasReply, status))
}

// MarkResponded flags a review as having a provider-side reply.
func (r *ReviewRepo) MarkResponded(ctx context.Context, reviewID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reviews
		SET has_reply = TRUE, status = $1, updated_at = NOW()
		WHERE id = $2
	`, domain.ReviewStatusResponded, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// UpsertReply persists the outcome of a publish attempt, keyed by review.
func (r *ReviewRepo) UpsertReply(ctx context.Context, reviewID uuid.UUID, finalText, status string, publishedAt time.Time) (*domain.ReviewReply, error) {
	var reply domain.ReviewReply
	err := r.pool.QueryRow(ctx, `
		INSERT INTO review_replies (review_id, final_text, status, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (review_id) DO UPDATE SET
			final_text = EXCLUDED.final_text,
			status = EXCLUDED.status,
			published_at = EXCLUDED.published_at,
			updated_at = NOW()
		RETURNING id, review_id, final_text, status, published_at, created_at, updated_at
	`, reviewID, finalText, status, publishedAt).Scan(
		&reply.ID, &reply.ReviewID, &reply.FinalText, &reply.Status,
		&reply.PublishedAt, &reply.CreatedAt, &reply.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}
