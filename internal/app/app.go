package app

import (
	"context"
	"fmt"
	"net/http"

	goredis "github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/gridironlabs/squares/external/espn"
	"github.com/gridironlabs/squares/internal/config"
	"github.com/gridironlabs/squares/internal/domain/board"
	"github.com/gridironlabs/squares/internal/infrastructure/repository/memory"
	"github.com/gridironlabs/squares/internal/infrastructure/repository/postgres"
	redisrepo "github.com/gridironlabs/squares/internal/infrastructure/repository/redis"
	"github.com/gridironlabs/squares/internal/interfaces/httpapi"
	"github.com/gridironlabs/squares/internal/platform/cache"
	idgen "github.com/gridironlabs/squares/internal/platform/id"
	"github.com/gridironlabs/squares/internal/platform/logging"
	"github.com/gridironlabs/squares/internal/platform/resilience"
	"github.com/gridironlabs/squares/internal/usecase"
)

// App bundles the built HTTP server with the background score poller and the
// resources both need released on shutdown.
type App struct {
	Server *http.Server
	Scores *usecase.ScoreService

	cleanups []func() error
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{}

	boardRepo, err := a.buildBoardRepository(cfg)
	if err != nil {
		return nil, err
	}

	espnClient := espn.NewClient(espn.ClientConfig{
		BaseURL:    cfg.ESPNBaseURL,
		Timeout:    cfg.ESPNTimeout,
		MaxRetries: cfg.ESPNMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	boardSvc := usecase.NewBoardService(boardRepo, idgen.NewRandomGenerator(), logger)
	scoreSvc := usecase.NewScoreService(espnClient, boardRepo, cache.NewStore(cfg.ScoreCacheTTL), logger)
	viewSvc := usecase.NewViewService(boardSvc, scoreSvc, logger)

	handler := httpapi.NewHandler(boardSvc, viewSvc, scoreSvc, logger)
	router := httpapi.NewRouter(
		handler,
		newStaticSessionVerifier(cfg.SessionTokens),
		boardSvc,
		logger,
		cfg.CORSAllowedOrigins,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a.Server = server
	a.Scores = scoreSvc
	return a, nil
}

func (a *App) buildBoardRepository(cfg config.Config) (board.Repository, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return memory.NewBoardRepository(), nil

	case config.StorageRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.cleanups = append(a.cleanups, client.Close)
		return redisrepo.NewBoardRepository(client), nil

	case config.StoragePostgres:
		db, err := otelsqlx.Open("postgres", cfg.DBURL,
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		a.cleanups = append(a.cleanups, db.Close)
		return postgres.NewBoardRepository(db), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Close releases storage connections. Call after the HTTP server has drained.
func (a *App) Close() error {
	var firstErr error
	for _, cleanup := range a.cleanups {
		if err := cleanup(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
