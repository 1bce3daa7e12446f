// Package domain holds the core entities and the interfaces between layers.
// Repositories and external clients implement these interfaces; the app
// service depends only on this package.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus tracks whether a review already has a provider-side reply.
const (
	ReviewStatusPending   = "pending"
	ReviewStatusResponded = "responded"
)

// ReplyStatus values for a ReviewReply record.
const (
	ReplyStatusDraft     = "draft"
	ReplyStatusPublished = "published"
)

// Organization is the tenant. RefreshToken carries the Google refresh token
// as a single encrypted blob exactly as stored; an empty string means the
// provider is not connected. The application layer encrypts before writing
// and decrypts after reading.
type Organization struct {
	ID           uuid.UUID
	Name         string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is a member of an organization. OrganizationID is Nil until the user
// has joined one.
type User struct {
	ID             uuid.UUID
	Email          string
	OrganizationID uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasOrganization reports whether the user belongs to an organization.
func (u *User) HasOrganization() bool {
	return u.OrganizationID != uuid.Nil
}

// Location is a business location imported from the provider.
type Location struct {
	ID               uuid.UUID
	OrganizationID   uuid.UUID
	GoogleAccountID  string
	GoogleLocationID string
	Name             string
	Address          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Review is a customer review imported from the provider.
// Rating is nil when the provider reported no recognizable star rating.
type Review struct {
	ID             uuid.UUID
	LocationID     uuid.UUID
	GoogleReviewID string
	ReviewerName   string
	Comment        string
	Rating         *int
	HasReply       bool
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReviewReply is the outcome of a publish attempt, keyed by review.
type ReviewReply struct {
	ID          uuid.UUID
	ReviewID    uuid.UUID
	FinalText   string
	Status      string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRepository loads users.
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
}

// OrganizationRepository manages tenants and their stored credential.
type OrganizationRepository interface {
	GetByID(ctx context.Context, orgID uuid.UUID) (*Organization, error)
	SetRefreshToken(ctx context.Context, orgID uuid.UUID, refreshToken string) error
	ClearRefreshToken(ctx context.Context, orgID uuid.UUID) error
}

// LocationRepository manages imported locations.
type LocationRepository interface {
	GetByID(ctx context.Context, locationID uuid.UUID) (*Location, error)
	Upsert(ctx context.Context, orgID uuid.UUID, googleAccountID, googleLocationID, name, address string) (*Location, error)
}

// ReviewRepository manages imported reviews and their replies.
type ReviewRepository interface {
	// GetForOrganization resolves a review scoped to an organization via its
	// location. A review that exists but belongs to another organization is
	// reported exactly like a missing one.
	GetForOrganization(ctx context.Context, reviewID, orgID uuid.UUID) (*Review, error)
	Upsert(ctx context.Context, locationID uuid.UUID, googleReviewID, reviewerName, comment string, rating *int, hasReply bool) (*Review, error)
	MarkResponded(ctx context.Context, reviewID uuid.UUID) error
	UpsertReply(ctx context.Context, reviewID uuid.UUID, finalText, status string, publishedAt time.Time) (*ReviewReply, error)
}

// PublishRateLimiter bounds publish attempts per organization.
type PublishRateLimiter interface {
	Allow(ctx context.Context, orgID uuid.UUID) (bool, error)
}

// PublishResult is the success payload of the publish workflow.
type PublishResult struct {
	ReplyID     uuid.UUID
	PublishedAt time.Time
}
