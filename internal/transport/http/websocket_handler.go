package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
	"github.com/wilbersoares/projeto-fatec/internal/session"
	"github.com/wilbersoares/projeto-fatec/internal/validation"
)

// WebSocketHandler upgrades GET /ws/dashboard/{id} to the session stream
type WebSocketHandler struct {
	stream       SessionStream
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewWebSocketHandler creates a websocket route handler
func NewWebSocketHandler(stream SessionStream, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WebSocketHandler {
	return &WebSocketHandler{
		stream:       stream,
		logger:       logger.With(slog.String("component", "websocket_handler")),
		errorHandler: errorHandler,
	}
}

// ServeHTTP implements http.Handler
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.Validator().Var(id, "required,uuid"); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Session id must be a UUID"))
		return
	}

	ctx := infrastructure.WithSessionID(r.Context(), id)
	err := h.stream.Serve(w, r.WithContext(ctx), id)
	if err == nil {
		return
	}

	h.logger.WarnContext(ctx, "websocket session refused",
		slog.String("error", err.Error()),
		slog.String("remote_addr", r.RemoteAddr))
	if errors.Is(err, session.ErrNotFound) {
		h.errorHandler.HandleError(w, r, apierrors.ErrSessionNotFound)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
