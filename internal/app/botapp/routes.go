package botapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Mohammed137/ascii-master-bot/internal/config"
	"github.com/Mohammed137/ascii-master-bot/internal/transport/http/handlers"
)

type Dependencies struct {
	Dispatcher handlers.Dispatcher
	Logger     *zap.Logger
	Config     config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	webhookHandler := handlers.NewWebhookHandler(deps.Config.Bot.WebhookSecret, deps.Dispatcher, deps.Logger)
	healthHandler := handlers.NewHealthHandler()
	landingHandler := handlers.NewLandingHandler()

	r.Get("/", landingHandler.Handle)
	r.Get("/healthz", healthHandler.Handle)
	r.Post("/webhook/{secret}", webhookHandler.Handle)

	// Rendered art is served straight from the content-addressed cache so a
	// reverse proxy can expose it without touching the bot process.
	cacheServer := http.StripPrefix("/cache/", http.FileServer(http.Dir(deps.Config.ASCII.CacheDir)))
	r.Get("/cache/*", cacheServer.ServeHTTP)
}
