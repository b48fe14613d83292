package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	apierrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/exporter"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
	"github.com/wilbersoares/projeto-fatec/internal/session"
	"github.com/wilbersoares/projeto-fatec/internal/validation"
	api "github.com/wilbersoares/projeto-fatec/pkg/contracts/api/v1"
)

const defaultPageSize = 50

type ctxKey string

const sessionIDKey ctxKey = "dashboard_session_id"

// DashboardHandler serves dashboard sessions and stateless views
type DashboardHandler struct {
	service      DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxPageSize  int
	now          func() time.Time
}

// NewDashboardHandler creates a dashboard handler. maxPageSize bounds the
// records page size.
func NewDashboardHandler(service DashboardService, maxPageSize int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if maxPageSize <= 0 {
		maxPageSize = 500
	}
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		maxPageSize:  maxPageSize,
		now:          time.Now,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/view", h.GetView)
	r.Get("/peak-years", h.GetPeakYears)
	r.Get("/universe", h.GetUniverse)
	r.Get("/dataset", h.GetDatasetStatus)

	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(h.SessionCtx)
		r.Get("/state", h.GetSessionState)
		r.Get("/view", h.GetSessionView)
		r.Post("/actions", h.ApplyAction)
		r.Put("/options", h.SetOptions)
		r.Get("/records", h.GetRecords)
		r.Get("/export", h.Export)
	})

	return r
}

// SessionCtx validates the session id parameter and tags the request
// context with it.
func (h *DashboardHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := validation.Validator().Var(id, "required,uuid"); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Session id must be a UUID"))
			return
		}

		ctx := infrastructure.WithSessionID(r.Context(), id)
		ctx = context.WithValue(ctx, sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetView handles GET /api/dashboard/view
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	q, err := parseViewQuery(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctrl, err := h.service.Controller(r.Context())
	if err != nil {
		h.fail(w, r, "stateless view failed", err)
		return
	}
	state, opts, err := viewRequest(ctrl, q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Render(r.Context(), &state, opts)
	if err != nil {
		h.fail(w, r, "stateless view failed", err)
		return
	}
	h.success(w, r, http.StatusOK, view)
}

// GetPeakYears handles GET /api/dashboard/peak-years
func (h *DashboardHandler) GetPeakYears(w http.ResponseWriter, r *http.Request) {
	peaks, err := h.service.PeakYears(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get peak years", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   peaks,
		"count":  len(peaks),
	})
}

// GetUniverse handles GET /api/dashboard/universe
func (h *DashboardHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	universe, err := h.service.Universe(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get filter universe", err)
		return
	}
	h.success(w, r, http.StatusOK, universe)
}

// GetDatasetStatus handles GET /api/dashboard/dataset
func (h *DashboardHandler) GetDatasetStatus(w http.ResponseWriter, r *http.Request) {
	h.success(w, r, http.StatusOK, h.service.Status(r.Context()))
}

// CreateSession handles POST /api/dashboard/sessions
func (h *DashboardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sv, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.fail(w, r, "failed to create session", err)
		return
	}

	h.logger.InfoContext(r.Context(), "session created",
		slog.String("session_id", sv.Session.ID),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, sv.Session.ID))
	h.success(w, r, http.StatusCreated, sv)
}

// GetSessionState handles GET /api/dashboard/sessions/{id}/state
func (h *DashboardHandler) GetSessionState(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Session(r.Context(), sessionFrom(r))
	if err != nil {
		h.fail(w, r, "failed to get session", err)
		return
	}
	h.success(w, r, http.StatusOK, sess)
}

// GetSessionView handles GET /api/dashboard/sessions/{id}/view
func (h *DashboardHandler) GetSessionView(w http.ResponseWriter, r *http.Request) {
	sv, err := h.service.View(r.Context(), sessionFrom(r))
	if err != nil {
		h.fail(w, r, "failed to render session", err)
		return
	}
	h.success(w, r, http.StatusOK, sv)
}

// ApplyAction handles POST /api/dashboard/sessions/{id}/actions
func (h *DashboardHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	var action filter.Action
	if err := render.DecodeJSON(r.Body, &action); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	sv, err := h.service.ApplyAction(r.Context(), sessionFrom(r), action)
	if err != nil {
		h.fail(w, r, "filter action failed", err)
		return
	}
	h.success(w, r, http.StatusOK, sv)
}

// SetOptions handles PUT /api/dashboard/sessions/{id}/options
func (h *DashboardHandler) SetOptions(w http.ResponseWriter, r *http.Request) {
	var opts dashboard.Options
	if err := render.DecodeJSON(r.Body, &opts); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	sv, err := h.service.SetOptions(r.Context(), sessionFrom(r), opts)
	if err != nil {
		h.fail(w, r, "failed to set view options", err)
		return
	}
	h.success(w, r, http.StatusOK, sv)
}

// GetRecords handles GET /api/dashboard/sessions/{id}/records
func (h *DashboardHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	page, err := parsePagination(r.URL.Query(), defaultPageSize, h.maxPageSize)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := h.service.Records(r.Context(), sessionFrom(r), page.Offset, page.Limit)
	if err != nil {
		h.fail(w, r, "failed to list records", err)
		return
	}
	h.success(w, r, http.StatusOK, records)
}

// Export handles GET /api/dashboard/sessions/{id}/export
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	req := api.ExportRequest{Format: strings.ToLower(r.URL.Query().Get("format"))}
	if req.Format == "" {
		req.Format = string(exporter.FormatCSV)
	}
	if err := validation.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Buffered so a failure can still be answered with a problem document.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), sessionFrom(r), format, &buf); err != nil {
		h.fail(w, r, "export failed", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(h.now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("error", err.Error()))
	}
}

func (h *DashboardHandler) success(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// fail logs err and renders it. Unknown sessions become 404s.
func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	level := slog.LevelError
	if apierrors.IsType(err, apierrors.ErrTypeValidation) || errors.Is(err, session.ErrNotFound) {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	if errors.Is(err, session.ErrNotFound) {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound,
			"SESSION_NOT_FOUND",
			err.Error(),
		))
		return
	}
	if apierrors.IsDatasetFailure(err) {
		infrastructure.RecordError(r.Context(), err)
	}
	h.errorHandler.HandleError(w, r, err)
}

func sessionFrom(r *http.Request) string {
	if id, ok := r.Context().Value(sessionIDKey).(string); ok {
		return id
	}
	return chi.URLParam(r, "id")
}
