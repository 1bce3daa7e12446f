package server

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
)

type publishReplyRequest struct {
	Text string `json:"text"`
}

func callerID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get("userID").(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.InternalError("invalid user ID in context", nil)
	}
	return userID, nil
}

func (s *Server) handlePublishReply(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid review ID").WithField("id", c.Param("id"))
	}

	var req publishReplyRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	result, err := s.app.PublishReviewReply(c.Request().Context(), userID, reviewID, req.Text)
	if err != nil {
		return err
	}

	if err := c.JSON(200, map[string]any{
		"reply_id":     result.ReplyID.String(),
		"published_at": result.PublishedAt,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListAccounts(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	accounts, err := s.app.ListAccounts(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	payload := make([]map[string]string, 0, len(accounts))
	for _, a := range accounts {
		payload = append(payload, map[string]string{"id": a.ID, "name": a.Name})
	}

	if err := c.JSON(200, map[string]any{"accounts": payload}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListLocations(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	accountID := c.QueryParam("account_id")
	locations, err := s.app.ListLocations(c.Request().Context(), userID, accountID)
	if err != nil {
		return err
	}

	payload := make([]map[string]string, 0, len(locations))
	for _, loc := range locations {
		payload = append(payload, map[string]string{
			"id":      loc.ID.String(),
			"name":    loc.Name,
			"address": loc.Address,
		})
	}

	if err := c.JSON(200, map[string]any{"locations": payload}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleSyncReviews(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid location ID").WithField("id", c.Param("id"))
	}

	synced, err := s.app.SyncReviews(c.Request().Context(), userID, locationID)
	if err != nil {
		return err
	}

	if err := c.JSON(200, map[string]any{"synced": synced}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
