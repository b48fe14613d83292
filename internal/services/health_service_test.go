package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wilbersoares/projeto-fatec/pkg/contracts"
)

type fixedStatus DatasetStatus

func (f fixedStatus) Status(context.Context) DatasetStatus { return DatasetStatus(f) }

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		provider   StatusProvider
		wantStatus string
		wantMsg    string
	}{
		{name: "no provider", provider: nil, wantStatus: "not_ready", wantMsg: ErrDatasetNotLoaded.Error()},
		{name: "not loaded yet", provider: fixedStatus{}, wantStatus: "not_ready", wantMsg: ErrDatasetNotLoaded.Error()},
		{
			name:       "load failed",
			provider:   fixedStatus{Loaded: true, ErrorType: "NETWORK", Diagnostic: "sem rede"},
			wantStatus: "not_ready",
			wantMsg:    "NETWORK: sem rede",
		},
		{
			name:       "loaded",
			provider:   fixedStatus{Loaded: true, OK: true, Rows: 16291},
			wantStatus: "ready",
			wantMsg:    "16291 records loaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService(contracts.GetVersionInfo(), tt.provider, CounterFunc(func() int { return 2 }), nil, nil)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)

			dataset, ok := status.Services["dataset"].(ServiceHealth)
			assert.True(t, ok)
			assert.Equal(t, tt.wantMsg, dataset.Message)

			sessions := status.Services["sessions"].(ServiceHealth)
			assert.Equal(t, "2 active sessions", sessions.Message)
		})
	}
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	info := contracts.GetVersionInfo()
	hs := NewHealthService(info, nil, nil, nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	health := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, info.Version, health.Version)

	version := hs.Version()
	assert.Equal(t, info.Name, version["name"])
	assert.Equal(t, info.APIVersion, version["api_version"])

	detail := hs.GetDetailedHealth(context.Background())
	assert.Contains(t, detail, "readiness")
	assert.NotContains(t, detail, "dataset")
}
