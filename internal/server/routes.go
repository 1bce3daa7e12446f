package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Provider connect flow (authenticated)
	s.echo.GET("/auth/google", s.handleConnectGoogle, s.requireAuth)
	s.echo.GET("/auth/google/callback", s.handleGoogleCallback, s.requireAuth)

	// API routes (authenticated)
	s.echo.GET("/api/accounts", s.handleListAccounts, s.requireAuth)
	s.echo.GET("/api/locations", s.handleListLocations, s.requireAuth)
	s.echo.POST("/api/locations/:id/sync", s.handleSyncReviews, s.requireAuth)
	s.echo.POST("/api/reviews/:id/reply", s.handlePublishReply, s.requireAuth)
}
