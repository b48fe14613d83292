package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	apierrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/exporter"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/services"
	"github.com/wilbersoares/projeto-fatec/internal/session"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) CreateSession(ctx context.Context) (*services.SessionView, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockDashboardService) Session(ctx context.Context, id string) (session.Session, error) {
	args := m.Called(id)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *MockDashboardService) View(ctx context.Context, id string) (*services.SessionView, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockDashboardService) ApplyAction(ctx context.Context, id string, action filter.Action) (*services.SessionView, error) {
	args := m.Called(id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockDashboardService) SetOptions(ctx context.Context, id string, opts dashboard.Options) (*services.SessionView, error) {
	args := m.Called(id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockDashboardService) Render(ctx context.Context, state *filter.State, opts dashboard.Options) (*dashboard.ViewModel, error) {
	args := m.Called(state, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.ViewModel), args.Error(1)
}

func (m *MockDashboardService) Records(ctx context.Context, id string, offset, limit int) (*services.RecordsPage, error) {
	args := m.Called(id, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RecordsPage), args.Error(1)
}

func (m *MockDashboardService) Export(ctx context.Context, id string, format exporter.Format, w io.Writer) error {
	args := m.Called(id, format, w)
	return args.Error(0)
}

func (m *MockDashboardService) PeakYears(ctx context.Context) ([]domain.YearTotal, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.YearTotal), args.Error(1)
}

func (m *MockDashboardService) Universe(ctx context.Context) (filter.Universe, error) {
	args := m.Called()
	return args.Get(0).(filter.Universe), args.Error(1)
}

func (m *MockDashboardService) Controller(ctx context.Context) (*filter.Controller, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filter.Controller), args.Error(1)
}

func (m *MockDashboardService) Status(ctx context.Context) services.DatasetStatus {
	return m.Called().Get(0).(services.DatasetStatus)
}

var testUniverse = filter.Universe{
	Years:     filter.YearRange{Min: 2000, Max: 2010},
	Platforms: []string{"PS3", "Wii"},
	Genres:    []string{"Action", "Sports"},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDashboardRouter(svc DashboardService) http.Handler {
	logger := quietLogger()
	h := NewDashboardHandler(svc, 500, logger, apierrors.NewErrorHandler(logger, false))
	h.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Mount("/api/dashboard", h.Routes())
	return r
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionView(id string) *services.SessionView {
	return &services.SessionView{
		Session: session.Session{ID: id},
		View:    &dashboard.ViewModel{Universe: testUniverse},
	}
}

func TestDashboardHandler_CreateSession(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		check          func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "created",
			setupMock: func(m *MockDashboardService) {
				m.On("CreateSession").Return(sessionView("abc"), nil)
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "/api/dashboard/sessions/abc", rec.Header().Get("Location"))
				body := decodeBody(t, rec)
				assert.Equal(t, "success", body["status"])
			},
		},
		{
			name: "dataset unavailable",
			setupMock: func(m *MockDashboardService) {
				m.On("CreateSession").Return(nil,
					apierrors.NewSourceUnavailableError("vgsales.csv not found in download", nil))
			},
			expectedStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := decodeBody(t, rec)
				assert.Equal(t, apierrors.TypeDatasetSourceUnavailable, body["type"])
				assert.Equal(t, "vgsales.csv not found in download", body["detail"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			rec := do(t, newDashboardRouter(svc), http.MethodPost, "/api/dashboard/sessions", "")
			assert.Equal(t, tt.expectedStatus, rec.Code)
			tt.check(t, rec)
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_SessionRoutes(t *testing.T) {
	id := uuid.NewString()
	missing := apierrors.NewAppError(apierrors.ErrTypeNotFound, "session "+id+" not found", session.ErrNotFound)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "invalid session id",
			method:         http.MethodGet,
			path:           "/api/dashboard/sessions/not-a-uuid/view",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"VALIDATION_FAILED"`,
		},
		{
			name:   "view",
			method: http.MethodGet,
			path:   "/api/dashboard/sessions/" + id + "/view",
			setupMock: func(m *MockDashboardService) {
				m.On("View", id).Return(sessionView(id), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"success"`,
		},
		{
			name:   "unknown session",
			method: http.MethodGet,
			path:   "/api/dashboard/sessions/" + id + "/view",
			setupMock: func(m *MockDashboardService) {
				m.On("View", id).Return(nil, missing)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"SESSION_NOT_FOUND"`,
		},
		{
			name:   "state",
			method: http.MethodGet,
			path:   "/api/dashboard/sessions/" + id + "/state",
			setupMock: func(m *MockDashboardService) {
				m.On("Session", id).Return(session.Session{ID: id}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   id,
		},
		{
			name:   "apply action",
			method: http.MethodPost,
			path:   "/api/dashboard/sessions/" + id + "/actions",
			body:   `{"type":"apply_peak_year","year":2008}`,
			setupMock: func(m *MockDashboardService) {
				m.On("ApplyAction", id, mock.MatchedBy(func(a filter.Action) bool {
					return a.Type == filter.ActionApplyPeakYear && a.Year != nil && *a.Year == 2008
				})).Return(sessionView(id), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"success"`,
		},
		{
			name:           "malformed action",
			method:         http.MethodPost,
			path:           "/api/dashboard/sessions/" + id + "/actions",
			body:           `{"type":`,
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"INVALID_REQUEST"`,
		},
		{
			name:   "rejected action",
			method: http.MethodPost,
			path:   "/api/dashboard/sessions/" + id + "/actions",
			body:   `{"type":"set_year_range","min":2010,"max":2000}`,
			setupMock: func(m *MockDashboardService) {
				m.On("ApplyAction", id, mock.Anything).
					Return(nil, apierrors.NewAppValidationError("year range min 2010 is after max 2000"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   apierrors.TypeValidation,
		},
		{
			name:   "set options",
			method: http.MethodPut,
			path:   "/api/dashboard/sessions/" + id + "/options",
			body:   `{"region":"vendas_eu","region_top":15}`,
			setupMock: func(m *MockDashboardService) {
				m.On("SetOptions", id, mock.MatchedBy(func(o dashboard.Options) bool {
					return o.Region == domain.MetricEU && o.RegionTop == 15
				})).Return(sessionView(id), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"success"`,
		},
		{
			name:   "records default page",
			method: http.MethodGet,
			path:   "/api/dashboard/sessions/" + id + "/records",
			setupMock: func(m *MockDashboardService) {
				m.On("Records", id, 0, defaultPageSize).
					Return(&services.RecordsPage{Total: 0, Limit: defaultPageSize, NoData: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"no_data":true`,
		},
		{
			name:           "records limit too large",
			method:         http.MethodGet,
			path:           "/api/dashboard/sessions/" + id + "/records?limit=1000",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "records bad offset",
			method:         http.MethodGet,
			path:           "/api/dashboard/sessions/" + id + "/records?offset=x",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "offset must be an integer",
		},
		{
			name:           "export unsupported format",
			method:         http.MethodGet,
			path:           "/api/dashboard/sessions/" + id + "/export?format=pdf",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			rec := do(t, newDashboardRouter(svc), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_Export(t *testing.T) {
	id := uuid.NewString()
	svc := new(MockDashboardService)
	svc.On("Export", id, exporter.FormatCSV, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(2).(io.Writer).Write([]byte("Nome,Console\nWii Sports,Wii\n"))
		}).
		Return(nil)

	rec := do(t, newDashboardRouter(svc), http.MethodGet, "/api/dashboard/sessions/"+id+"/export", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="vgsales_filtrado_20240301_123000.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Nome,Console\nWii Sports,Wii\n", rec.Body.String())
	svc.AssertExpectations(t)
}

func TestDashboardHandler_ExportFailureIsProblem(t *testing.T) {
	id := uuid.NewString()
	svc := new(MockDashboardService)
	svc.On("Export", id, exporter.FormatXLSX, mock.Anything).
		Return(apierrors.NewStorageError("export failed", assert.AnError))

	rec := do(t, newDashboardRouter(svc), http.MethodGet, "/api/dashboard/sessions/"+id+"/export?format=XLSX", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestDashboardHandler_StatelessView(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		render         bool
		expectedStatus int
		checkState     func(t *testing.T, s filter.State, o dashboard.Options)
	}{
		{
			name:           "defaults",
			render:         true,
			expectedStatus: http.StatusOK,
			checkState: func(t *testing.T, s filter.State, o dashboard.Options) {
				assert.Equal(t, testUniverse.Years, s.Years)
				assert.Equal(t, []string{"PS3", "Wii"}, s.Platforms)
				assert.Nil(t, o.ShareCategories)
			},
		},
		{
			name:           "explicit filters and options",
			query:          "year_min=2004&platform=Wii&genre=Sports&genre=Action&region=vendas_jp&region_top=5&share_category=",
			render:         true,
			expectedStatus: http.StatusOK,
			checkState: func(t *testing.T, s filter.State, o dashboard.Options) {
				assert.Equal(t, filter.YearRange{Min: 2004, Max: 2010}, s.Years)
				assert.Equal(t, []string{"Wii"}, s.Platforms)
				assert.Equal(t, []string{"Action", "Sports"}, s.Genres)
				assert.Equal(t, domain.MetricJP, o.Region)
				assert.Equal(t, 5, o.RegionTop)
				assert.NotNil(t, o.ShareCategories)
				assert.Empty(t, o.ShareCategories)
			},
		},
		{
			name:           "empty platform selection",
			query:          "platform=",
			render:         true,
			expectedStatus: http.StatusOK,
			checkState: func(t *testing.T, s filter.State, o dashboard.Options) {
				assert.Empty(t, s.Platforms)
			},
		},
		{
			name:           "peak year",
			query:          "peak_year=2006",
			render:         true,
			expectedStatus: http.StatusOK,
			checkState: func(t *testing.T, s filter.State, o dashboard.Options) {
				assert.Equal(t, filter.YearRange{Min: 2006, Max: 2006}, s.Years)
				require.NotNil(t, s.PeakYear)
				assert.Equal(t, 2006, *s.PeakYear)
			},
		},
		{name: "region top out of range", query: "region_top=3", expectedStatus: http.StatusBadRequest},
		{name: "unknown region", query: "region=vendas_br", expectedStatus: http.StatusBadRequest},
		{name: "non numeric year", query: "year_min=abc", expectedStatus: http.StatusBadRequest},
		{name: "too many compare items", query: "compare_item=a&compare_item=b&compare_item=c&compare_item=d", expectedStatus: http.StatusBadRequest},
		{name: "unknown platform", query: "platform=Dreamcast", expectedStatus: http.StatusBadRequest},
		{name: "peak year outside bounds", query: "peak_year=1990", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("Controller").Return(filter.NewController(testUniverse), nil).Maybe()

			var gotState filter.State
			var gotOpts dashboard.Options
			if tt.render {
				svc.On("Render", mock.Anything, mock.Anything).
					Run(func(args mock.Arguments) {
						gotState = *args.Get(0).(*filter.State)
						gotOpts = args.Get(1).(dashboard.Options)
					}).
					Return(&dashboard.ViewModel{NoData: true, Warning: filter.NoDataWarning}, nil)
			}

			rec := do(t, newDashboardRouter(svc), http.MethodGet, "/api/dashboard/view?"+tt.query, "")
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.checkState != nil {
				tt.checkState(t, gotState, gotOpts)
				assert.Contains(t, rec.Body.String(), `"no_data":true`)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_PeakYearsAndUniverse(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("PeakYears").Return([]domain.YearTotal{{Year: 2008, Value: 678.9}, {Year: 2009, Value: 667.3}}, nil)
	svc.On("Universe").Return(testUniverse, nil)
	svc.On("Status").Return(services.DatasetStatus{Loaded: true, OK: true, Rows: 16291})
	router := newDashboardRouter(svc)

	rec := do(t, router, http.MethodGet, "/api/dashboard/peak-years", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])

	rec = do(t, router, http.MethodGet, "/api/dashboard/universe", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"platforms":["PS3","Wii"]`)

	rec = do(t, router, http.MethodGet, "/api/dashboard/dataset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rows":16291`)
}
