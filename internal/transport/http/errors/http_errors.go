package errors

import (
	"encoding/json"
	"net/http"
)

// Result is the webhook processing envelope: {ok:true} or {ok:false, error}.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
