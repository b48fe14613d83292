package websocket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/wilbersoares/projeto-fatec/internal/config"
	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
	"github.com/wilbersoares/projeto-fatec/internal/services"
	"github.com/wilbersoares/projeto-fatec/internal/session"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/events"
)

// Handler upgrades session requests and routes client messages to the
// dashboard service.
type Handler struct {
	service  SessionService
	hub      *Hub
	upgrader websocket.Upgrader
	timing   Timing
	logger   *slog.Logger
}

// NewHandler creates a handler. Origins not in allowedOrigins are refused;
// requests without an Origin header are accepted.
func NewHandler(service SessionService, hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.handler"))

	h := &Handler{
		service: service,
		hub:     hub,
		timing:  TimingFrom(cfg),
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
				slog.String("origin", origin),
				slog.Any("allowed_origins", allowedOrigins))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			logger.ErrorContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// Serve attaches the request to sessionID. Errors returned before the
// upgrade (unknown session, dataset failure) are for the caller to render;
// once upgraded, failures travel as error messages.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	ctx := infrastructure.WithSessionID(r.Context(), sessionID)
	initial, err := h.service.View(ctx, sessionID)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		return nil
	}

	traceID := middleware.GetReqID(r.Context())
	client := NewClient(h.hub, conn, sessionID, traceID, h.timing, h.logger)
	h.hub.Register(client)

	client.SendJSON(events.NewMessage(events.MessageTypeConnect, sessionID, events.ConnectPayload{
		SessionID: sessionID,
		Protocol:  events.ProtocolVersion,
		Heartbeat: int(h.timing.PingPeriod.Seconds()),
	}))
	client.SendJSON(events.NewMessage(events.MessageTypeView, sessionID, initial.View))

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
	return nil
}

// handleMessage answers one client message.
func (h *Handler) handleMessage(c *Client, raw []byte) {
	ctx := c.context()

	var in events.InboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		h.sendError(c, "", events.ErrCodeInvalidMessage, "malformed message", false)
		return
	}

	var (
		view      *services.SessionView
		err       error
		broadcast bool
		code      string
	)
	switch in.Type {
	case events.MessageTypeHeartbeat:
		return
	case events.MessageTypeRefresh:
		view, err = h.service.View(ctx, c.sessionID)
	case events.MessageTypeAction:
		code = events.ErrCodeInvalidAction
		var action filter.Action
		if err = decode(in.Data, &action); err == nil {
			view, err = h.service.ApplyAction(ctx, c.sessionID, action)
			broadcast = true
		}
	case events.MessageTypeOptions:
		code = events.ErrCodeInvalidOptions
		var opts dashboard.Options
		if err = decode(in.Data, &opts); err == nil {
			view, err = h.service.SetOptions(ctx, c.sessionID, opts)
			broadcast = true
		}
	default:
		h.sendError(c, in.ID, events.ErrCodeUnsupportedType, "unsupported message type "+string(in.Type), false)
		return
	}

	if err != nil {
		errCode, fatal := classify(err, code)
		h.logger.WarnContext(ctx, "client message rejected",
			slog.String("type", string(in.Type)),
			slog.String("code", errCode),
			slog.String("error", err.Error()))
		h.sendError(c, in.ID, errCode, err.Error(), fatal)
		if fatal {
			h.hub.Unregister(c)
		}
		return
	}

	msg := events.NewMessage(events.MessageTypeView, c.sessionID, view.View)
	msg.ReplyTo = in.ID
	c.SendJSON(msg)
	if broadcast {
		push := events.NewMessage(events.MessageTypeView, c.sessionID, view.View)
		push.TraceID = c.traceID
		if data, err := json.Marshal(push); err == nil {
			h.hub.Broadcast(c.sessionID, data, c)
		}
	}
}

func (h *Handler) sendError(c *Client, replyTo, code, message string, fatal bool) {
	c.SendJSON(events.NewErrorMessage(c.sessionID, replyTo, code, message, fatal))
}

func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return apperrors.NewAppValidationError("message data is required")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "malformed message data", errors.Join(services.ErrInvalidInput, err))
	}
	return nil
}

// classify maps a service error to a protocol error code. Fatal errors end
// the connection.
func classify(err error, fallback string) (string, bool) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return events.ErrCodeSessionNotFound, true
	case apperrors.IsDatasetFailure(err):
		return events.ErrCodeDatasetFailure, true
	case apperrors.IsType(err, apperrors.ErrTypeValidation) && fallback != "":
		return fallback, false
	}
	return events.ErrCodeServerError, false
}

// Shutdown disconnects every client.
func (h *Handler) Shutdown() {
	h.hub.Close()
}
