package httputil

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cwrk-planet/thread-service/internal/logger"
)

type errorBody struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// JSON пишет v с заданным статусом; nil - только статус.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Error("write json response", "err", err)
	}
}

// Error пишет {"error": {"message", "request_id", "meta"}}.
func Error(ctx context.Context, w http.ResponseWriter, status int, msg string, meta map[string]any) {
	JSON(w, status, map[string]errorBody{"error": {
		Message:   msg,
		RequestID: RequestIDFrom(ctx),
		Meta:      meta,
	}})
}
