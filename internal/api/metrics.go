package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/tileboard/internal/backend"
	"github.com/nerrad567/tileboard/internal/command"
	"github.com/nerrad567/tileboard/internal/core"
	"github.com/nerrad567/tileboard/internal/history"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string               `json:"timestamp"`
	Version       string               `json:"version"`
	UptimeSeconds int64                `json:"uptime_seconds"`
	Runtime       RuntimeMetrics       `json:"runtime"`
	WebSocket     WSMetrics            `json:"websocket"`
	Core          core.Stats           `json:"core"`
	Commands      command.Stats        `json:"commands"`
	Backend       *backend.Stats       `json:"backend,omitempty"`
	History       *history.WriterStats `json:"history,omitempty"`
	Database      *DatabaseMetrics     `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Core:     s.core.Stats(),
		Commands: s.commands.Stats(),
	}

	if s.backend != nil {
		st := s.backend.Stats()
		metrics.Backend = &st
	}
	if s.journal != nil {
		st := s.journal.Stats()
		metrics.History = &st
	}
	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
