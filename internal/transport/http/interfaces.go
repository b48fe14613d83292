package http

import (
	"context"
	"io"
	"net/http"

	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	"github.com/wilbersoares/projeto-fatec/internal/exporter"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/services"
	"github.com/wilbersoares/projeto-fatec/internal/session"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// DashboardService defines the dashboard operations exposed over HTTP
type DashboardService interface {
	CreateSession(ctx context.Context) (*services.SessionView, error)
	Session(ctx context.Context, id string) (session.Session, error)
	View(ctx context.Context, id string) (*services.SessionView, error)
	ApplyAction(ctx context.Context, id string, action filter.Action) (*services.SessionView, error)
	SetOptions(ctx context.Context, id string, opts dashboard.Options) (*services.SessionView, error)
	Render(ctx context.Context, state *filter.State, opts dashboard.Options) (*dashboard.ViewModel, error)
	Records(ctx context.Context, id string, offset, limit int) (*services.RecordsPage, error)
	Export(ctx context.Context, id string, format exporter.Format, w io.Writer) error
	PeakYears(ctx context.Context) ([]domain.YearTotal, error)
	Universe(ctx context.Context) (filter.Universe, error)
	Controller(ctx context.Context) (*filter.Controller, error)
	Status(ctx context.Context) services.DatasetStatus
}

// SessionStream attaches a request to a session's websocket stream. An
// error means the connection was not upgraded.
type SessionStream interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID string) error
}
