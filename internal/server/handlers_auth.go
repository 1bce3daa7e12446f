package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
)

const (
	googleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	googleScope   = "https://www.googleapis.com/auth/business.manage"
)

// requireAuth resolves the calling user from the session cookie.
// No user means 401; account login itself lives outside this service.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			return apperrors.UnauthorizedError("authentication required")
		}

		raw, ok := session.Values[sessionKeyUserID].(string)
		if !ok {
			return apperrors.UnauthorizedError("authentication required")
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.UnauthorizedError("authentication required")
		}

		c.Set("userID", userID)
		return next(c)
	}
}

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// handleConnectGoogle starts the provider connect flow by redirecting to the
// Google consent screen with a fresh state nonce.
func (s *Server) handleConnectGoogle(c echo.Context) error {
	state, err := generateOAuthState()
	if err != nil {
		return apperrors.InternalError("failed to generate OAuth state", err)
	}

	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.Values[sessionKeyState] = state
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	authURL := fmt.Sprintf(
		"%s?client_id=%s&redirect_uri=%s&response_type=code&access_type=offline&prompt=consent&scope=%s&state=%s",
		googleAuthURL,
		url.QueryEscape(s.config.GoogleClientID),
		url.QueryEscape(s.config.GoogleRedirectURI),
		url.QueryEscape(googleScope),
		url.QueryEscape(state),
	)

	return c.Redirect(302, authURL)
}

// handleGoogleCallback finishes the connect flow: state check, code exchange,
// encrypted credential storage.
func (s *Server) handleGoogleCallback(c echo.Context) error {
	userID, ok := c.Get("userID").(uuid.UUID)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	code := c.QueryParam("code")
	if code == "" {
		return apperrors.ValidationError("missing code parameter")
	}

	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return apperrors.ValidationError("invalid session")
	}
	expectedState, ok := session.Values[sessionKeyState].(string)
	if !ok || expectedState == "" {
		return apperrors.ValidationError("missing OAuth state")
	}
	if c.QueryParam("state") != expectedState {
		return apperrors.ValidationError("invalid OAuth state")
	}
	delete(session.Values, sessionKeyState)
	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	if err := s.app.ConnectProvider(c.Request().Context(), userID, code); err != nil {
		return err
	}

	if err := c.JSON(200, map[string]string{"status": "connected"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
