package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
)

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestSource(t *testing.T, url string) *KaggleSource {
	t.Helper()
	return NewKaggleSource(KaggleConfig{
		BaseURL:  url,
		CacheDir: t.TempDir(),
		FileName: "vgsales.csv",
	}, nil, nil)
}

func TestKaggleSourceFetch(t *testing.T) {
	t.Setenv(UsernameEnv, "player")
	t.Setenv(KeyEnv, "secret")

	archive := zipArchive(t, map[string]string{"vgsales.csv": sampleCSV})
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		user, key, ok := r.BasicAuth()
		if !ok || user != "player" || key != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/datasets/download/gregorut/videogamesales", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		w.Write(archive)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)

	dir, err := src.Fetch(context.Background(), "gregorut/videogamesales")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "vgsales.csv"))

	again, err := src.Fetch(context.Background(), "gregorut/videogamesales")
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	assert.Equal(t, int32(1), requests.Load())
}

func TestKaggleSourcePlainFile(t *testing.T) {
	t.Setenv(UsernameEnv, "player")
	t.Setenv(KeyEnv, "secret")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	dir, err := newTestSource(t, srv.URL).Fetch(context.Background(), "gregorut/videogamesales")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "vgsales.csv"))
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
}

func TestKaggleSourceFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		identifier string
		noCreds    bool
		wantType   apperrors.ErrorType
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, identifier: "gregorut/videogamesales", wantType: apperrors.ErrTypeAuthentication},
		{name: "forbidden", status: http.StatusForbidden, identifier: "gregorut/videogamesales", wantType: apperrors.ErrTypeAuthentication},
		{name: "not found", status: http.StatusNotFound, identifier: "gregorut/missing", wantType: apperrors.ErrTypeNetwork},
		{name: "server error", status: http.StatusBadGateway, identifier: "gregorut/videogamesales", wantType: apperrors.ErrTypeNetwork},
		{name: "bad identifier", status: http.StatusOK, identifier: "videogamesales", wantType: apperrors.ErrTypeNetwork},
		{name: "no credentials", status: http.StatusOK, identifier: "gregorut/videogamesales", noCreds: true, wantType: apperrors.ErrTypeAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.noCreds {
				t.Setenv(UsernameEnv, "")
				t.Setenv(KeyEnv, "")
			} else {
				t.Setenv(UsernameEnv, "player")
				t.Setenv(KeyEnv, "secret")
			}

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestSource(t, srv.URL).Fetch(context.Background(), tt.identifier)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestKaggleSourceTransportError(t *testing.T) {
	t.Setenv(UsernameEnv, "player")
	t.Setenv(KeyEnv, "secret")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestSource(t, url).Fetch(context.Background(), "gregorut/videogamesales")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeNetwork, apperrors.TypeOf(err))
}

func TestLoadCredentialsFile(t *testing.T) {
	t.Setenv(UsernameEnv, "")
	t.Setenv(KeyEnv, "")

	dir := t.TempDir()
	good := filepath.Join(dir, "kaggle.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"username":"player","key":"secret"}`), 0600))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"username":"player"}`), 0600))

	creds, err := LoadCredentials(good)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Username: "player", Key: "secret"}, creds)

	_, err = LoadCredentials(bad)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAuthentication))

	_, err = LoadCredentials(filepath.Join(dir, "absent.json"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAuthentication))
}

func TestExtractZipRejectsEscapingEntries(t *testing.T) {
	archive := zipArchive(t, map[string]string{"../evil.csv": "x"})
	err := extractZip(archive, t.TempDir())
	assert.Error(t, err)
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	got, err := LocalSource{Dir: dir}.Fetch(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = LocalSource{Dir: filepath.Join(dir, "absent")}.Fetch(context.Background(), "ignored")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceUnavailable))
}
