package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved directories and files the dashboard touches.
type Paths struct {
	CacheDir        string
	LocalDir        string
	LogsDir         string
	CredentialsFile string
}

// GetPaths resolves the configured locations against the working directory.
func (c *Config) GetPaths() (*Paths, error) {
	cacheDir, err := filepath.Abs(c.Dataset.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache dir: %w", err)
	}

	logsDir, err := filepath.Abs(filepath.Dir(c.Logging.FilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
	}

	paths := &Paths{
		CacheDir:        cacheDir,
		LogsDir:         logsDir,
		CredentialsFile: c.Dataset.CredentialsFile,
	}

	if c.Dataset.LocalDir != "" {
		if paths.LocalDir, err = filepath.Abs(c.Dataset.LocalDir); err != nil {
			return nil, fmt.Errorf("failed to resolve local dataset dir: %w", err)
		}
	}

	if paths.CredentialsFile == "" {
		paths.CredentialsFile = DefaultCredentialsPath()
	}

	return paths, nil
}

// DefaultCredentialsPath returns ~/.kaggle/kaggle.json, or "" when the home
// directory cannot be determined.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kaggle", "kaggle.json")
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.CacheDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// LogPathResolution logs the resolved locations once at startup.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("cache", p.CacheDir),
			slog.String("local", p.LocalDir),
			slog.String("logs", p.LogsDir),
		),
		slog.String("credentials", p.CredentialsFile))
}
