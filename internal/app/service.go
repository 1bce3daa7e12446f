package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Tandemrecruit/ReplyStack-sub002/internal/crypto"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/domain"
	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/gbp"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/metrics"
)

// reviewNotFoundMsg is shared by the missing and cross-tenant cases so the
// response never leaks whether another tenant's review exists.
const reviewNotFoundMsg = "review not found"

// ReviewPlatform is the surface of the provider client the service consumes.
type ReviewPlatform interface {
	ExchangeCode(ctx context.Context, code string) (*gbp.TokenGrant, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	FetchAccounts(ctx context.Context, accessToken string) ([]gbp.Account, error)
	FetchLocations(ctx context.Context, accessToken, accountID string) ([]gbp.Location, error)
	FetchReviews(ctx context.Context, accessToken, accountID, locationID, pageToken string) (*gbp.ReviewPage, error)
	PublishReply(ctx context.Context, accessToken, accountID, locationID, reviewID, text string) (*gbp.PublishedReply, error)
}

// Service orchestrates all use cases over the repositories, the cipher, and
// the provider client.
type Service struct {
	users     domain.UserRepository
	orgs      domain.OrganizationRepository
	locations domain.LocationRepository
	reviews   domain.ReviewRepository
	platform  ReviewPlatform
	cipher    crypto.Service
	limiter   domain.PublishRateLimiter
	clock     clockwork.Clock
}

// NewService creates the application layer service.
// limiter may be nil when Redis is not configured.
func NewService(users domain.UserRepository, orgs domain.OrganizationRepository, locations domain.LocationRepository, reviews domain.ReviewRepository, platform ReviewPlatform, cipher crypto.Service, limiter domain.PublishRateLimiter, clock clockwork.Clock) *Service {
	return &Service{
		users:     users,
		orgs:      orgs,
		locations: locations,
		reviews:   reviews,
		platform:  platform,
		cipher:    cipher,
		limiter:   limiter,
		clock:     clock,
	}
}

// resolveCaller loads the user and their organization, enforcing the first
// two workflow gates: unknown user and missing organization.
func (s *Service) resolveCaller(ctx context.Context, userID uuid.UUID) (*domain.User, *domain.Organization, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, apperrors.UnauthorizedError("unknown user")
		}
		return nil, nil, apperrors.InternalError("failed to load user", err)
	}

	if !user.HasOrganization() {
		return nil, nil, apperrors.ValidationError("no organization")
	}

	org, err := s.orgs.GetByID(ctx, user.OrganizationID)
	if err != nil {
		return nil, nil, apperrors.InternalError("failed to load organization", err).
			WithField("organization_id", user.OrganizationID.String())
	}

	return user, org, nil
}

// accessTokenForOrg decrypts the stored credential and exchanges it for a
// fresh access token. On a provider 401 the stored credential is cleared
// (best effort; a failed clear never masks the original error) and the
// auth-expired error propagates to prompt reconnection.
func (s *Service) accessTokenForOrg(ctx context.Context, org *domain.Organization) (string, error) {
	if org.RefreshToken == "" {
		return "", apperrors.ValidationError("provider not connected")
	}

	if !s.cipher.IsConfigured() {
		return "", apperrors.ConfigError("token encryption key not configured")
	}

	refreshToken, err := s.cipher.Decrypt(org.RefreshToken)
	if err != nil {
		return "", apperrors.InternalError("failed to decrypt stored credential", err).
			WithField("organization_id", org.ID.String())
	}

	accessToken, err := s.platform.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		var structured *apperrors.Error
		if errors.As(err, &structured) && structured.Type == apperrors.TypeAuthExpired {
			if clearErr := s.orgs.ClearRefreshToken(ctx, org.ID); clearErr != nil {
				slog.Error("Failed to clear expired credential",
					"organization_id", org.ID.String(),
					"error", clearErr)
			} else {
				slog.Info("Cleared expired provider credential", "organization_id", org.ID.String())
			}
		}
		return "", err
	}

	return accessToken, nil
}

// PublishReviewReply runs the publish workflow for one review: resolve the
// caller and their credential, validate input, mint an access token, publish
// the reply upstream, and persist the outcome.
func (s *Service) PublishReviewReply(ctx context.Context, userID, reviewID uuid.UUID, text string) (*domain.PublishResult, error) {
	result, err := s.publishReviewReply(ctx, userID, reviewID, text)
	if err != nil {
		metrics.PublishAttemptsTotal.WithLabelValues(string(apperrors.AsStructuredError(err).Type)).Inc()
		return nil, err
	}
	metrics.PublishAttemptsTotal.WithLabelValues("success").Inc()
	return result, nil
}

func (s *Service) publishReviewReply(ctx context.Context, userID, reviewID uuid.UUID, text string) (*domain.PublishResult, error) {
	user, org, err := s.resolveCaller(ctx, userID)
	if err != nil {
		return nil, err
	}

	if org.RefreshToken == "" {
		return nil, apperrors.ValidationError("provider not connected")
	}

	review, err := s.reviews.GetForOrganization(ctx, reviewID, org.ID)
	if err != nil {
		if errors.Is(err, domain.ErrReviewNotFound) {
			return nil, apperrors.NotFoundError(reviewNotFoundMsg)
		}
		return nil, apperrors.InternalError("failed to load review", err).
			WithField("review_id", reviewID.String())
	}

	finalText := strings.TrimSpace(text)
	if finalText == "" {
		return nil, apperrors.ValidationError("reply text is required")
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, org.ID)
		if err != nil {
			// A broken limiter must not block publishing.
			slog.Error("Publish rate limit check failed", "organization_id", org.ID.String(), "error", err)
		} else if !allowed {
			return nil, apperrors.RateLimitedError("publish rate limit exceeded, try again later")
		}
	}

	accessToken, err := s.accessTokenForOrg(ctx, org)
	if err != nil {
		return nil, err
	}

	location, err := s.locations.GetByID(ctx, review.LocationID)
	if err != nil {
		return nil, apperrors.InternalError("failed to load location for review", err).
			WithField("location_id", review.LocationID.String())
	}

	published, err := s.platform.PublishReply(ctx, accessToken, location.GoogleAccountID, location.GoogleLocationID, review.GoogleReviewID, finalText)
	if err != nil {
		return nil, err
	}

	publishedAt := published.UpdateTime
	if publishedAt.IsZero() {
		publishedAt = s.clock.Now().UTC()
	}

	reply, err := s.reviews.UpsertReply(ctx, review.ID, finalText, domain.ReplyStatusPublished, publishedAt)
	if err != nil {
		return nil, apperrors.InternalError("failed to persist reply", err).
			WithField("review_id", review.ID.String())
	}

	if err := s.reviews.MarkResponded(ctx, review.ID); err != nil {
		return nil, apperrors.InternalError("failed to mark review responded", err).
			WithField("review_id", review.ID.String())
	}

	slog.Info("Published review reply",
		"user_id", user.ID.String(),
		"organization_id", org.ID.String(),
		"review_id", review.ID.String(),
		"reply_id", reply.ID.String())

	return &domain.PublishResult{ReplyID: reply.ID, PublishedAt: publishedAt}, nil
}

// ConnectProvider redeems an OAuth authorization code and stores the
// resulting refresh token, encrypted, on the caller's organization. This is
// the only place a new credential blob is minted.
func (s *Service) ConnectProvider(ctx context.Context, userID uuid.UUID, code string) error {
	_, org, err := s.resolveCaller(ctx, userID)
	if err != nil {
		return err
	}

	if code == "" {
		return apperrors.ValidationError("authorization code is required")
	}

	if !s.cipher.IsConfigured() {
		return apperrors.ConfigError("token encryption key not configured")
	}

	grant, err := s.platform.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	encrypted, err := s.cipher.Encrypt(grant.RefreshToken)
	if err != nil {
		return apperrors.InternalError("failed to encrypt credential", err)
	}

	if err := s.orgs.SetRefreshToken(ctx, org.ID, encrypted); err != nil {
		return apperrors.InternalError("failed to store credential", err).
			WithField("organization_id", org.ID.String())
	}

	slog.Info("Provider connected", "organization_id", org.ID.String())
	return nil
}

// ListAccounts returns the provider accounts visible to the caller's
// credential.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]gbp.Account, error) {
	_, org, err := s.resolveCaller(ctx, userID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.accessTokenForOrg(ctx, org)
	if err != nil {
		return nil, err
	}

	return s.platform.FetchAccounts(ctx, accessToken)
}

// ListLocations fetches the locations under a provider account and upserts
// them locally so reviews can be scoped by organization.
func (s *Service) ListLocations(ctx context.Context, userID uuid.UUID, accountID string) ([]*domain.Location, error) {
	_, org, err := s.resolveCaller(ctx, userID)
	if err != nil {
		return nil, err
	}

	if accountID == "" {
		return nil, apperrors.ValidationError("account id is required")
	}

	accessToken, err := s.accessTokenForOrg(ctx, org)
	if err != nil {
		return nil, err
	}

	fetched, err := s.platform.FetchLocations(ctx, accessToken, accountID)
	if err != nil {
		return nil, err
	}

	locations := make([]*domain.Location, 0, len(fetched))
	for _, loc := range fetched {
		stored, err := s.locations.Upsert(ctx, org.ID, accountID, loc.ID, loc.Name, loc.Address)
		if err != nil {
			return nil, apperrors.InternalError("failed to store location", err).
				WithField("google_location_id", loc.ID)
		}
		locations = append(locations, stored)
	}

	return locations, nil
}

// SyncReviews pages through the provider's reviews for a location (50 per
// page) and upserts them locally. Returns the number of reviews synced.
func (s *Service) SyncReviews(ctx context.Context, userID, locationID uuid.UUID) (int, error) {
	_, org, err := s.resolveCaller(ctx, userID)
	if err != nil {
		return 0, err
	}

	location, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, domain.ErrLocationNotFound) {
			return 0, apperrors.NotFoundError("location not found")
		}
		return 0, apperrors.InternalError("failed to load location", err)
	}
	if location.OrganizationID != org.ID {
		return 0, apperrors.NotFoundError("location not found")
	}

	accessToken, err := s.accessTokenForOrg(ctx, org)
	if err != nil {
		return 0, err
	}

	synced := 0
	pageToken := ""
	for {
		page, err := s.platform.FetchReviews(ctx, accessToken, location.GoogleAccountID, location.GoogleLocationID, pageToken)
		if err != nil {
			return synced, err
		}

		for _, r := range page.Reviews {
			if _, err := s.reviews.Upsert(ctx, location.ID, r.ID, r.ReviewerName, r.Comment, r.Rating, r.HasReply); err != nil {
				return synced, apperrors.InternalError("failed to store review", err).
					WithField("google_review_id", r.ID)
			}
			synced++
			metrics.ReviewsSyncedTotal.Inc()
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	slog.Info("Synced reviews", "location_id", location.ID.String(), "count", synced)
	return synced, nil
}
