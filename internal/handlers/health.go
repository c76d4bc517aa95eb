package handlers

import (
	"net/http"
	"runtime"
	"time"
)

// startedAt approximates process start for uptime reporting.
var startedAt = time.Now()

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string      `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	Uptime      float64     `json:"uptime"`
	Goroutines  int         `json:"goroutines"`
	MemoryUsage MemoryUsage `json:"memoryUsage"`
}

// MemoryUsage is a subset of runtime.MemStats, in bytes.
type MemoryUsage struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	HeapInuse  uint64 `json:"heapInuse"`
	NumGC      uint32 `json:"numGC"`
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(startedAt).Seconds(),
		Goroutines: runtime.NumGoroutine(),
		MemoryUsage: MemoryUsage{
			Alloc:      ms.Alloc,
			TotalAlloc: ms.TotalAlloc,
			Sys:        ms.Sys,
			HeapAlloc:  ms.HeapAlloc,
			HeapInuse:  ms.HeapInuse,
			NumGC:      ms.NumGC,
		},
	})
}
