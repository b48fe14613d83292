package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
)

// Source resolves a dataset identifier to a local directory holding the
// dataset files.
type Source interface {
	Fetch(ctx context.Context, identifier string) (string, error)
}

// LocalSource serves a directory that already holds the dataset.
type LocalSource struct {
	Dir string
}

// Fetch returns the configured directory unchanged.
func (s LocalSource) Fetch(ctx context.Context, identifier string) (string, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return "", apperrors.NewSourceUnavailableError(
			fmt.Sprintf("local dataset directory %s is not accessible", s.Dir), err)
	}
	if !info.IsDir() {
		return "", apperrors.NewSourceUnavailableError(
			fmt.Sprintf("local dataset path %s is not a directory", s.Dir), nil)
	}
	return s.Dir, nil
}

// Credentials authenticate against the remote dataset repository.
type Credentials struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// Environment variables that take precedence over the credentials file.
const (
	UsernameEnv = "KAGGLE_USERNAME"
	KeyEnv      = "KAGGLE_KEY"
)

// LoadCredentials reads credentials from the environment, falling back to
// the JSON credentials file at path.
func LoadCredentials(path string) (Credentials, error) {
	if user, key := os.Getenv(UsernameEnv), os.Getenv(KeyEnv); user != "" && key != "" {
		return Credentials{Username: user, Key: key}, nil
	}
	if path == "" {
		return Credentials{}, apperrors.NewAuthenticationError("no credentials configured", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, apperrors.NewAuthenticationError(
			fmt.Sprintf("cannot read credentials file %s", path), err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, apperrors.NewAuthenticationError(
			fmt.Sprintf("malformed credentials file %s", path), err)
	}
	if creds.Username == "" || creds.Key == "" {
		return Credentials{}, apperrors.NewAuthenticationError(
			fmt.Sprintf("credentials file %s lacks username or key", path), nil)
	}
	return creds, nil
}

// KaggleConfig configures a KaggleSource.
type KaggleConfig struct {
	BaseURL         string
	CacheDir        string
	FileName        string
	CredentialsFile string
	Timeout         time.Duration
}

// KaggleSource downloads a dataset archive over HTTP and extracts it into a
// cache directory. A cached copy holding FileName is reused without a request.
type KaggleSource struct {
	cfg    KaggleConfig
	client *http.Client
	logger *slog.Logger
	group  singleflight.Group
}

// NewKaggleSource creates a remote source. A nil client gets one with the
// configured timeout.
func NewKaggleSource(cfg KaggleConfig, client *http.Client, logger *slog.Logger) *KaggleSource {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KaggleSource{
		cfg:    cfg,
		client: client,
		logger: logger.With(slog.String("component", "kaggle_source")),
	}
}

// Fetch resolves identifier ("owner/slug") to the extracted dataset directory.
func (s *KaggleSource) Fetch(ctx context.Context, identifier string) (string, error) {
	owner, slug, err := splitIdentifier(identifier)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.cfg.CacheDir, owner, slug)
	if fileExists(filepath.Join(dir, s.cfg.FileName)) {
		s.logger.DebugContext(ctx, "using cached dataset", slog.String("dir", dir))
		return dir, nil
	}

	_, err, _ = s.group.Do(identifier, func() (interface{}, error) {
		return nil, s.download(ctx, owner, slug, dir)
	})
	if err != nil {
		return "", err
	}
	return dir, nil
}

func (s *KaggleSource) download(ctx context.Context, owner, slug, dir string) error {
	creds, err := LoadCredentials(s.cfg.CredentialsFile)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/datasets/download/%s/%s", strings.TrimRight(s.cfg.BaseURL, "/"), owner, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.NewNetworkError("failed to create download request", err)
	}
	req.SetBasicAuth(creds.Username, creds.Key)
	req.Header.Set("User-Agent", "vgsales-dashboard/1.0")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset download failed",
			slog.String("url", url),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return apperrors.NewNetworkError("dataset download failed", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp, owner+"/"+slug); err != nil {
		s.logger.ErrorContext(ctx, "dataset download rejected",
			slog.String("url", url),
			slog.Int("status_code", resp.StatusCode),
		)
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewNetworkError("failed to read dataset download", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create cache directory %s", dir), err)
	}

	if isZip(body) {
		err = extractZip(body, dir)
	} else {
		err = os.WriteFile(filepath.Join(dir, s.cfg.FileName), body, 0644)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to store dataset", err)
	}

	s.logger.InfoContext(ctx, "dataset downloaded",
		slog.String("dir", dir),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func statusError(resp *http.Response, identifier string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.NewAuthenticationError(
			fmt.Sprintf("remote repository rejected credentials (status %d)", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewNetworkError(fmt.Sprintf("dataset %s not found", identifier), nil).
			WithContext("status_code", resp.StatusCode)
	default:
		return apperrors.NewNetworkError(
			fmt.Sprintf("dataset download failed with status %d", resp.StatusCode), nil).
			WithContext("status_code", resp.StatusCode)
	}
}

func splitIdentifier(identifier string) (string, string, error) {
	parts := strings.Split(identifier, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperrors.NewNetworkError(
			fmt.Sprintf("dataset identifier %q must be owner/slug", identifier), nil)
	}
	return parts[0], parts[1], nil
}

func isZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// extractZip writes every regular file of the archive below dest.
func extractZip(data []byte, dest string) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range r.File {
		path := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(path, root) {
			return fmt.Errorf("archive entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := writeEntry(f, path); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(f *zip.File, path string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
