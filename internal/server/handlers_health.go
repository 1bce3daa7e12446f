package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

const readinessTimeout = 2 * time.Second

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}

// handleReadiness verifies the backing stores are reachable.
func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	if s.pool != nil {
		if err := s.pool.Ping(ctx); err != nil {
			return c.JSON(503, map[string]string{"status": "unavailable", "component": "database"})
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			return c.JSON(503, map[string]string{"status": "unavailable", "component": "redis"})
		}
	}

	return c.JSON(200, map[string]string{"status": "ok"})
}
