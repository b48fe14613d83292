package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/wilbersoares/projeto-fatec/pkg/contracts"
)

// StatusProvider reports the dataset load outcome.
type StatusProvider interface {
	Status(ctx context.Context) DatasetStatus
}

// Counter reports a number of live items, such as sessions or clients.
type Counter interface {
	Len() int
}

// CounterFunc adapts a function to Counter.
type CounterFunc func() int

// Len calls f.
func (f CounterFunc) Len() int { return f() }

// HealthService provides health check functionality
type HealthService struct {
	version   contracts.VersionInfo
	dataset   StatusProvider
	sessions  Counter
	clients   Counter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. sessions and clients may be nil.
func NewHealthService(version contracts.VersionInfo, dataset StatusProvider, sessions, clients Counter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version.Version),
		slog.String("git_commit", version.GitCommit))

	return &HealthService{
		version:   version,
		dataset:   dataset,
		sessions:  sessions,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
	}
}

// ReadinessCheck is ready once the dataset has loaded successfully. A failed
// load keeps the service not ready for the life of the process.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Services:  make(map[string]interface{}),
	}

	status.Services["dataset"] = hs.checkDatasetHealth(ctx)
	status.Services["sessions"] = hs.checkCounter("sessions", hs.sessions)
	status.Services["websocket"] = hs.checkCounter("websocket clients", hs.clients)

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"name":         hs.version.Name,
		"version":      hs.version.Version,
		"api_version":  hs.version.APIVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.version.BuildTime != "" {
		result["build_time"] = hs.version.BuildTime
	}
	if hs.version.GitCommit != "" {
		result["git_commit"] = hs.version.GitCommit
	}
	return result
}

func (hs *HealthService) checkDatasetHealth(ctx context.Context) ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: ErrDatasetNotLoaded.Error()}
	}

	st := hs.dataset.Status(ctx)
	switch {
	case !st.Loaded:
		return ServiceHealth{Status: "not_ready", Message: ErrDatasetNotLoaded.Error()}
	case !st.OK:
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("%s: %s", st.ErrorType, st.Diagnostic),
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d records loaded", st.Rows),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkCounter(name string, c Counter) ServiceHealth {
	if c == nil {
		return ServiceHealth{Status: "ready", Message: name + " not tracked"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d active %s", c.Len(), name),
	}
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	detail := map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
	}
	if hs.dataset != nil {
		detail["dataset"] = hs.dataset.Status(ctx)
	}
	return detail
}
