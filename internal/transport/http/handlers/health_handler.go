package handlers

import (
	"net/http"

	httperrors "github.com/Mohammed137/ascii-master-bot/internal/transport/http/errors"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, httperrors.Result{OK: true})
}
