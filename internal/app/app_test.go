package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilbersoares/projeto-fatec/internal/config"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/events"
)

const testCSV = "Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales\n" +
	"1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74\n" +
	"2,Super Mario Bros.,NES,1985,Platform,Nintendo,29.08,3.58,6.81,0.77,40.24\n" +
	"3,Mario Kart Wii,Wii,2008,Racing,Nintendo,15.85,12.88,3.79,3.31,35.82\n" +
	"4,Grand Theft Auto V,PS3,2013,Action,Take-Two Interactive,7.01,9.27,0.97,4.14,21.4\n" +
	"5,Call of Duty: Black Ops,X360,2010,Shooter,Activision,9.7,3.68,0.11,1.13,14.62\n"

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// testConfig points the application at a temporary dataset directory.
func testConfig(t *testing.T, csv string) *config.Config {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	if csv != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, "vgsales.csv"), []byte(csv), 0644))
	}

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Dataset.LocalDir = dataDir
	cfg.Dataset.CacheDir = filepath.Join(root, "cache")
	cfg.Logging.FilePath = filepath.Join(root, "logs", "app.log")
	cfg.Security.RateLimit.Enabled = false
	cfg.Security.AllowedOrigins = []string{"http://localhost:3000"}
	return cfg
}

func newTestApp(t *testing.T, csv string) (*Application, *httptest.Server) {
	t.Helper()
	app, err := New(testConfig(t, csv), createTestLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.Stream.Shutdown()
	})
	return app, srv
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestNew(t *testing.T) {
	app, err := New(testConfig(t, testCSV), createTestLogger())
	require.NoError(t, err)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Dashboard)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.WebSocketHub)
	assert.NotNil(t, app.Metrics)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.False(t, app.Loader.Loaded())

	_, err = New(nil, nil)
	assert.Error(t, err)
}

func TestReadinessFollowsDatasetLoad(t *testing.T) {
	tests := []struct {
		name      string
		csv       string
		wantReady int
	}{
		{name: "valid dataset", csv: testCSV, wantReady: http.StatusOK},
		{name: "missing file", csv: "", wantReady: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, srv := newTestApp(t, tt.csv)

			code, _ := getJSON(t, srv.URL+"/api/health/ready")
			assert.Equal(t, http.StatusServiceUnavailable, code)

			app.WarmUp(context.Background())

			code, _ = getJSON(t, srv.URL+"/api/health/ready")
			assert.Equal(t, tt.wantReady, code)

			code, _ = getJSON(t, srv.URL+"/api/health/live")
			assert.Equal(t, http.StatusOK, code)
		})
	}
}

func TestApplication_Routes(t *testing.T) {
	_, srv := newTestApp(t, testCSV)

	code, body := getJSON(t, srv.URL+"/api/dashboard/view")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	view, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, view["no_data"])

	code, body = getJSON(t, srv.URL+"/api/dashboard/view?platform=")
	require.Equal(t, http.StatusOK, code)
	view = body["data"].(map[string]interface{})
	assert.Equal(t, true, view["no_data"])

	code, body = getJSON(t, srv.URL+"/api/dashboard/view?year_min=abc")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "/errors/validation", body["type"])

	code, body = getJSON(t, srv.URL+"/api/does-not-exist")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "/errors/not-found", body["type"])

	code, _ = getJSON(t, srv.URL+"/api/version")
	assert.Equal(t, http.StatusOK, code)
}

func TestApplication_DatasetFailureIs503(t *testing.T) {
	_, srv := newTestApp(t, "")

	code, body := getJSON(t, srv.URL+"/api/dashboard/view")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "/errors/dataset/source-unavailable", body["type"])
	assert.Contains(t, body["detail"], "vgsales.csv")
}

func TestApplication_SessionFlow(t *testing.T) {
	_, srv := newTestApp(t, testCSV)

	resp, err := http.Post(srv.URL+"/api/dashboard/sessions", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			Session struct {
				ID string `json:"id"`
			} `json:"session"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	id := created.Data.Session.ID
	require.NotEmpty(t, id)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/dashboard/sessions/"+id+"/actions",
		strings.NewReader(`{"type":"set_year_range","min":2006,"max":2008}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	actionResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	actionResp.Body.Close()
	assert.Equal(t, http.StatusOK, actionResp.StatusCode)

	exportResp, err := http.Get(srv.URL + "/api/dashboard/sessions/" + id + "/export?format=csv")
	require.NoError(t, err)
	data, err := io.ReadAll(exportResp.Body)
	exportResp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, exportResp.StatusCode)
	assert.Contains(t, string(data), "Wii Sports")
	assert.NotContains(t, string(data), "Super Mario Bros.")

	code, _ := getJSON(t, srv.URL+"/api/dashboard/sessions/"+id+"/records?limit=1000")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestApplication_WebSocket(t *testing.T) {
	app, srv := newTestApp(t, testCSV)

	sv, err := app.Dashboard.CreateSession(context.Background())
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard/" + sv.Session.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, events.MessageTypeConnect, msg.Type)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, events.MessageTypeView, msg.Type)

	require.NoError(t, conn.WriteJSON(events.InboundMessage{
		ID:   "m1",
		Type: events.MessageTypeAction,
		Data: json.RawMessage(`{"type":"reset"}`),
	}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, events.MessageTypeView, msg.Type)
	assert.Equal(t, "m1", msg.ReplyTo)

	resp, err := http.Get(srv.URL + "/ws/dashboard/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestApplication_Metrics(t *testing.T) {
	_, srv := newTestApp(t, testCSV)

	code, _ := getJSON(t, srv.URL+"/api/dashboard/view")
	require.Equal(t, http.StatusOK, code)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")

	code, stats := getJSON(t, srv.URL+"/api/metrics/websocket")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", stats["status"])
}
