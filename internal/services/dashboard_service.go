package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	"github.com/wilbersoares/projeto-fatec/internal/dataset"
	"github.com/wilbersoares/projeto-fatec/internal/exporter"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
	"github.com/wilbersoares/projeto-fatec/internal/session"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// DatasetLoader loads the base dataset. Implementations memoize the result.
type DatasetLoader interface {
	Load(ctx context.Context) *dataset.LoadResult
	Loaded() bool
}

// DatasetStatus describes the outcome of the dataset load.
type DatasetStatus struct {
	Loaded     bool           `json:"loaded"`
	OK         bool           `json:"ok"`
	Rows       int            `json:"rows"`
	InputRows  int            `json:"input_rows"`
	Dropped    map[string]int `json:"dropped,omitempty"`
	ErrorType  string         `json:"error_type,omitempty"`
	Diagnostic string         `json:"diagnostic,omitempty"`
	LoadedAt   time.Time      `json:"loaded_at,omitempty"`
	Duration   string         `json:"duration,omitempty"`
}

// RecordsPage is one page of the filtered data table.
type RecordsPage struct {
	Total   int               `json:"total"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
	Records []domain.GameSale `json:"records"`
	NoData  bool              `json:"no_data"`
}

// SessionView pairs a session with its rendered view.
type SessionView struct {
	Session session.Session     `json:"session"`
	View    *dashboard.ViewModel `json:"view"`
}

// DashboardService serves dashboard views over the memoized dataset.
type DashboardService struct {
	loader   DatasetLoader
	sessions *session.Store
	limits   dashboard.Limits
	exporter *exporter.Exporter
	logger   *slog.Logger
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer

	once        sync.Once
	renderer    *dashboard.Renderer
	rendererErr error
}

// NewDashboardService wires the service. metrics may be nil.
func NewDashboardService(loader DatasetLoader, sessions *session.Store, limits dashboard.Limits, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DashboardService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &DashboardService{
		loader:   loader,
		sessions: sessions,
		limits:   limits,
		exporter: exporter.New(logger, metrics),
		logger:   logger.With(slog.String("service", "dashboard")),
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.MeterName),
	}
}

// Renderer loads the dataset on first use and returns the renderer bound to
// it. A failed load is returned on every call.
func (s *DashboardService) Renderer(ctx context.Context) (*dashboard.Renderer, error) {
	result := s.loader.Load(ctx)
	if !result.OK() {
		return nil, result.Err
	}

	s.once.Do(func() {
		s.renderer, s.rendererErr = dashboard.NewRenderer(result.Dataset, s.limits)
		if s.rendererErr != nil {
			s.logger.ErrorContext(ctx, "renderer initialization failed",
				slog.String("error", s.rendererErr.Error()))
		}
	})
	return s.renderer, s.rendererErr
}

// Status reports the dataset load outcome without triggering a load.
func (s *DashboardService) Status(ctx context.Context) DatasetStatus {
	if !s.loader.Loaded() {
		return DatasetStatus{}
	}

	result := s.loader.Load(ctx)
	status := DatasetStatus{
		Loaded:     true,
		OK:         result.OK(),
		InputRows:  result.Stats.InputRows,
		Dropped:    result.Stats.Dropped,
		Diagnostic: result.Diagnostic,
		LoadedAt:   result.LoadedAt,
		Duration:   result.Duration.String(),
	}
	if result.Dataset != nil {
		status.Rows = result.Dataset.Len()
	}
	if !status.OK {
		status.ErrorType = string(result.ErrType)
	}
	return status
}

// CreateSession starts a session with every filter selected and the default
// options, and renders its first view.
func (s *DashboardService) CreateSession(ctx context.Context) (*SessionView, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.Create(ctx, r.Controller().Default(), r.DefaultOptions())
	view, err := s.render(ctx, r, sess.State, sess.Options)
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: sess, View: view}, nil
}

// Session returns the stored session.
func (s *DashboardService) Session(ctx context.Context, id string) (session.Session, error) {
	return s.sessions.Get(id)
}

// View renders the session's current state.
func (s *DashboardService) View(ctx context.Context, id string) (*SessionView, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	ctx = infrastructure.WithSessionID(ctx, id)
	view, err := s.render(ctx, r, sess.State, sess.Options)
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: sess, View: view}, nil
}

// ApplyAction dispatches a filter action on the session's state, stores the
// new state and renders it. The state is left unchanged on error.
func (s *DashboardService) ApplyAction(ctx context.Context, id string, action filter.Action) (*SessionView, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return nil, err
	}
	ctx = infrastructure.WithSessionID(ctx, id)

	sess, err := s.sessions.Update(ctx, id, func(sess *session.Session) error {
		next, err := r.Controller().Dispatch(sess.State, action)
		if err != nil {
			return err
		}
		sess.State = next
		return nil
	})
	infrastructure.RecordFilterAction(ctx, s.metrics, string(action.Type), err == nil)
	if err != nil {
		s.logger.WarnContext(ctx, "filter action rejected",
			slog.String("action", string(action.Type)),
			slog.String("error", err.Error()))
		return nil, err
	}

	view, err := s.render(ctx, r, sess.State, sess.Options)
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: sess, View: view}, nil
}

// SetOptions replaces the session's view options. Options that fail to
// render are rejected and not stored.
func (s *DashboardService) SetOptions(ctx context.Context, id string, opts dashboard.Options) (*SessionView, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return nil, err
	}
	ctx = infrastructure.WithSessionID(ctx, id)

	var view *dashboard.ViewModel
	sess, err := s.sessions.Update(ctx, id, func(sess *session.Session) error {
		v, err := s.render(ctx, r, sess.State, opts)
		if err != nil {
			return err
		}
		view = v
		sess.Options = v.Options
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: sess, View: view}, nil
}

// Render renders an explicit state, or the default state when state is nil,
// without touching any session.
func (s *DashboardService) Render(ctx context.Context, state *filter.State, opts dashboard.Options) (*dashboard.ViewModel, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return nil, err
	}
	st := r.Controller().Default()
	if state != nil {
		st = *state
	}
	return s.render(ctx, r, st, opts)
}

// Records returns a page of the session's filtered table.
func (s *DashboardService) Records(ctx context.Context, id string, offset, limit int) (*RecordsPage, error) {
	filtered, err := s.filtered(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RecordsPage{
		Total:   filtered.Len(),
		Offset:  offset,
		Limit:   limit,
		Records: filtered.Slice(offset, limit),
		NoData:  filtered.Empty(),
	}, nil
}

// Export writes the session's filtered table to w.
func (s *DashboardService) Export(ctx context.Context, id string, format exporter.Format, w io.Writer) error {
	filtered, err := s.filtered(ctx, id)
	if err != nil {
		return err
	}
	return s.exporter.Export(ctx, w, format, filtered)
}

// PeakYears returns the best selling years of the whole dataset.
func (s *DashboardService) PeakYears(ctx context.Context) ([]domain.YearTotal, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return nil, err
	}
	return r.PeakYears(), nil
}

// Universe returns the domain of every filter.
func (s *DashboardService) Universe(ctx context.Context) (filter.Universe, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return filter.Universe{}, err
	}
	return r.Controller().Universe(), nil
}

// Controller returns the filter controller of the loaded dataset.
func (s *DashboardService) Controller(ctx context.Context) (*filter.Controller, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return nil, err
	}
	return r.Controller(), nil
}

// filtered applies the session's state. No match yields an empty dataset.
func (s *DashboardService) filtered(ctx context.Context, id string) (*domain.Dataset, error) {
	r, err := s.Renderer(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	ds, err := r.Filtered(sess.State)
	if err != nil && !errors.Is(err, filter.ErrNoData) {
		return nil, err
	}
	return ds, nil
}

func (s *DashboardService) render(ctx context.Context, r *dashboard.Renderer, state filter.State, opts dashboard.Options) (*dashboard.ViewModel, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.render")
	defer span.End()

	start := time.Now()
	view, err := r.Render(state, opts)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	duration := time.Since(start)
	span.SetAttributes(attribute.Bool("dashboard.no_data", view.NoData))
	infrastructure.RecordRender(ctx, s.metrics, duration, view.NoData)
	if view.NoData {
		s.logger.InfoContext(ctx, "filters matched no records",
			slog.Int("year_min", state.Years.Min),
			slog.Int("year_max", state.Years.Max))
	}
	return view, nil
}
