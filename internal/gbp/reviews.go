package gbp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Tandemrecruit/ReplyStack-sub002/internal/domain"
	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
)

// reviewsPageSize is fixed by the provider contract.
const reviewsPageSize = 50

// Review is a single review as reported by the provider.
// Rating is nil when the star-rating enum was absent or unrecognized.
type Review struct {
	ID           string
	ReviewerName string
	Comment      string
	Rating       *int
	HasReply     bool
	Status       string
	CreateTime   time.Time
	UpdateTime   time.Time
}

// ReviewPage is one page of reviews plus the token for the next page, if any.
type ReviewPage struct {
	Reviews       []Review
	NextPageToken string
}

// PublishedReply is the provider's record of a published reply.
type PublishedReply struct {
	Comment    string
	UpdateTime time.Time
}

var starRatings = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
}

// starRatingValue maps the provider enum to 1..5, nil for anything else.
func starRatingValue(raw string) *int {
	if v, ok := starRatings[raw]; ok {
		return &v
	}
	return nil
}

// FetchReviews lists one page of reviews for a location (50 per page).
// Pass the previous page's NextPageToken to continue; an empty token starts
// from the beginning.
func (c *Client) FetchReviews(ctx context.Context, accessToken, accountID, locationID, pageToken string) (*ReviewPage, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/locations/%s/reviews?pageSize=%d",
		c.apiBaseURL, url.PathEscape(accountID), url.PathEscape(locationID), reviewsPageSize)
	if pageToken != "" {
		endpoint += "&pageToken=" + url.QueryEscape(pageToken)
	}

	status, body, err := c.do(ctx, http.MethodGet, endpoint, nil, bearerHeader(accessToken))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperrors.UpstreamError(status, fmt.Sprintf("reviews list failed with status %d: %s", status, truncateBody(body)))
	}

	var result struct {
		Reviews []struct {
			ReviewID string `json:"reviewId"`
			Reviewer struct {
				DisplayName string `json:"displayName"`
			} `json:"reviewer"`
			StarRating  string    `json:"starRating"`
			Comment     string    `json:"comment"`
			CreateTime  time.Time `json:"createTime"`
			UpdateTime  time.Time `json:"updateTime"`
			ReviewReply *struct {
				Comment    string    `json:"comment"`
				UpdateTime time.Time `json:"updateTime"`
			} `json:"reviewReply"`
		} `json:"reviews"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.UpstreamError(http.StatusBadGateway, fmt.Sprintf("failed to decode reviews response: %v", err))
	}

	page := &ReviewPage{NextPageToken: result.NextPageToken}
	for _, r := range result.Reviews {
		hasReply := r.ReviewReply != nil
		reviewStatus := domain.ReviewStatusPending
		if hasReply {
			reviewStatus = domain.ReviewStatusResponded
		}
		page.Reviews = append(page.Reviews, Review{
			ID:           r.ReviewID,
			ReviewerName: r.Reviewer.DisplayName,
			Comment:      r.Comment,
			Rating:       starRatingValue(r.StarRating),
			HasReply:     hasReply,
			Status:       reviewStatus,
			CreateTime:   r.CreateTime,
			UpdateTime:   r.UpdateTime,
		})
	}

	return page, nil
}

// PublishReply publishes (or overwrites) the owner reply on a review.
// Any non-2xx status is carried verbatim in the returned error.
func (c *Client) PublishReply(ctx context.Context, accessToken, accountID, locationID, reviewID, text string) (*PublishedReply, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s/locations/%s/reviews/%s/reply",
		c.apiBaseURL, url.PathEscape(accountID), url.PathEscape(locationID), url.PathEscape(reviewID))

	payload, err := json.Marshal(map[string]string{"comment": text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode reply payload: %w", err)
	}

	header := bearerHeader(accessToken)
	header.Set("Content-Type", "application/json")

	status, body, err := c.do(ctx, http.MethodPut, endpoint, bytes.NewReader(payload), header)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, apperrors.UpstreamError(status, fmt.Sprintf("reply publish failed with status %d: %s", status, truncateBody(body)))
	}

	var result struct {
		Comment    string    `json:"comment"`
		UpdateTime time.Time `json:"updateTime"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		// The reply went through; a malformed body only costs us the
		// provider timestamp.
		return &PublishedReply{Comment: text}, nil
	}

	return &PublishedReply{Comment: result.Comment, UpdateTime: result.UpdateTime}, nil
}
