package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/jasonmurdy-collab/MarketPulse/internal/infrastructure"
	"github.com/jasonmurdy-collab/MarketPulse/internal/store"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts"
)

// ClientCounter reports connected WebSocket clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	store     *store.MarketStore
	ingestion *IngestionService
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service. ingestion and clients may
// be nil.
func NewHealthService(st *store.MarketStore, ingestion *IngestionService, clients ClientCounter, logger *slog.Logger) *HealthService {
	return &HealthService{
		version:   contracts.Version,
		store:     st,
		ingestion: ingestion,
		clients:   clients,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once market data has been published
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"market_data": hs.checkMarketData(),
			"ingestion":   hs.checkIngestion(),
		},
	}

	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.DebugContext(ctx, "readiness check failed", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	runtimeInfo := map[string]interface{}{
		"uptime":     time.Since(hs.startTime).Seconds(),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	if hs.clients != nil {
		runtimeInfo["websocket_clients"] = hs.clients.ClientCount()
	}
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   runtimeInfo,
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) checkMarketData() ServiceHealth {
	snap := hs.store.Snapshot()
	switch {
	case len(snap.Weekly) == 0 && len(snap.Monthly) == 0 && snap.Loading:
		return ServiceHealth{Status: "loading", Message: "waiting for first ingestion"}
	case len(snap.Weekly) == 0 && len(snap.Monthly) == 0:
		return ServiceHealth{Status: "empty", Message: snap.Error}
	case snap.Error != "":
		return ServiceHealth{Status: "ready", Message: "serving partial data: " + snap.Error}
	default:
		return ServiceHealth{Status: "ready"}
	}
}

func (hs *HealthService) checkIngestion() ServiceHealth {
	if hs.ingestion == nil {
		return ServiceHealth{Status: "ready", Message: "ingestion not configured"}
	}
	if hs.ingestion.Running() {
		return ServiceHealth{Status: "ready", Message: "cycle in progress"}
	}
	report, ok := hs.ingestion.LastReport()
	if !ok {
		return ServiceHealth{Status: "ready", Message: "no cycle finished yet"}
	}
	if report.Error != "" {
		return ServiceHealth{Status: "ready", Message: "last cycle failed: " + report.Error}
	}
	return ServiceHealth{Status: "ready"}
}
