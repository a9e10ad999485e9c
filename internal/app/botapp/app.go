package botapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Mohammed137/ascii-master-bot/internal/config"
	"github.com/Mohammed137/ascii-master-bot/internal/infra/telegram"
	pgrepo "github.com/Mohammed137/ascii-master-bot/internal/repo/postgres"
	redrepo "github.com/Mohammed137/ascii-master-bot/internal/repo/redis"
	asciisvc "github.com/Mohammed137/ascii-master-bot/internal/services/ascii"
	dispatchsvc "github.com/Mohammed137/ascii-master-bot/internal/services/dispatch"
	quotasvc "github.com/Mohammed137/ascii-master-bot/internal/services/quota"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	// Quota is load-bearing: a pool that cannot even be constructed is a
	// startup failure, not a degraded mode.
	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}

	usageRepo := pgrepo.NewUsageRepo(pool)
	if err := usageRepo.EnsureSchema(ctx); err != nil {
		log.Warn("usage schema init failed, continuing with existing schema", zap.Error(err))
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	bannerCache := redrepo.NewBannerCacheRepo(redisClient, cfg.ASCII.BannerCacheTTL)

	quotaService := quotasvc.NewService(usageRepo, quotasvc.Config{
		TextPerDay:  cfg.Limits.TextPerDay,
		ImagePerDay: cfg.Limits.ImagePerDay,
		Window:      cfg.Limits.Window,
	})
	converter := asciisvc.NewConverter(asciisvc.Config{
		Font:        cfg.ASCII.Font,
		SampleWidth: cfg.ASCII.SampleWidth,
		CacheDir:    cfg.ASCII.CacheDir,
	})

	var messenger dispatchsvc.Messenger
	if bot, err := telegram.NewBot(cfg.Bot.Token); err != nil {
		log.Warn("telegram bot init failed, continuing in degraded mode", zap.Error(err))
	} else {
		messenger = bot
	}

	dispatcher := dispatchsvc.NewService(dispatchsvc.Dependencies{
		Messenger:   messenger,
		Quota:       quotaService,
		Converter:   converter,
		BannerCache: bannerCache,
		Logger:      log,
	}, dispatchsvc.Config{
		TextThreshold: cfg.ASCII.TextThreshold,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		Dispatcher: dispatcher,
		Logger:     log,
		Config:     cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("bot server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
