package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Mohammed137/ascii-master-bot/internal/domain/model"
	"github.com/Mohammed137/ascii-master-bot/internal/services/dispatch"
	httperrors "github.com/Mohammed137/ascii-master-bot/internal/transport/http/errors"
)

// Dispatcher handles one classified update to completion.
type Dispatcher interface {
	HandleUpdate(ctx context.Context, upd model.Update) error
}

// WebhookHandler receives platform updates on the secret-scoped route. No
// fault from dispatching ever escapes as anything but a structured result.
type WebhookHandler struct {
	secret     string
	dispatcher Dispatcher
	logger     *zap.Logger
}

func NewWebhookHandler(secret string, dispatcher Dispatcher, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		secret:     secret,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		http.NotFound(w, r)
		return
	}

	if h.dispatcher == nil {
		httperrors.Write(w, http.StatusInternalServerError, httperrors.Result{OK: false, Error: "dispatcher is unavailable"})
		return
	}

	var upd tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		httperrors.Write(w, http.StatusBadRequest, httperrors.Result{OK: false, Error: "invalid json"})
		return
	}

	if err := h.dispatcher.HandleUpdate(r.Context(), dispatch.Classify(upd)); err != nil {
		h.logger.Error("dispatch update failed", zap.Error(err), zap.Int("update_id", upd.UpdateID))
		httperrors.Write(w, http.StatusInternalServerError, httperrors.Result{OK: false, Error: err.Error()})
		return
	}

	httperrors.Write(w, http.StatusOK, httperrors.Result{OK: true})
}
