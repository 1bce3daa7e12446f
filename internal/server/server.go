package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Tandemrecruit/ReplyStack-sub002/internal/config"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/domain"
	apperrors "github.com/Tandemrecruit/ReplyStack-sub002/internal/errors"
	"github.com/Tandemrecruit/ReplyStack-sub002/internal/gbp"
)

const (
	sessionName      = "replystack_session"
	sessionKeyUserID = "user_id"
	sessionKeyState  = "oauth_state"

	sessionMaxAgeDays = 7
)

// appService is the application-layer surface the handlers consume.
type appService interface {
	PublishReviewReply(ctx context.Context, userID, reviewID uuid.UUID, text string) (*domain.PublishResult, error)
	ConnectProvider(ctx context.Context, userID uuid.UUID, code string) error
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]gbp.Account, error)
	ListLocations(ctx context.Context, userID uuid.UUID, accountID string) ([]*domain.Location, error)
	SyncReviews(ctx context.Context, userID, locationID uuid.UUID) (int, error)
}

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	app          appService
	sessionStore *sessions.CookieStore
	pool         *pgxpool.Pool
	redisClient  *goredis.Client
}

// NewServer wires the echo instance, middleware, session store, and routes.
// pool and redisClient are only used by the readiness probe and may be nil in
// tests.
func NewServer(cfg *config.Config, app appService, pool *pgxpool.Pool, redisClient *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * sessionMaxAgeDays,
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		sessionStore: sessionStore,
		pool:         pool,
		redisClient:  redisClient,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
