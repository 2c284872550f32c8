package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/database"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SystemHandler reports service health and process statistics.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	runtime   *service.ExamRuntime
	startTime time.Time
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, runtime *service.ExamRuntime) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		runtime:   runtime,
		startTime: time.Now(),
	}
}

type systemStats struct {
	Uptime       string `json:"uptime"`
	LiveSessions int    `json:"live_sessions"`
	Goroutines   int    `json:"goroutines"`
	HeapAlloc    uint64 `json:"heap_alloc_bytes"`
	GoVersion    string `json:"go_version"`
	DBConns      int32  `json:"db_conns"`
	DBIdleConns  int32  `json:"db_idle_conns"`
}

// Health godoc
// GET /health
// Returns 503 while Postgres or Redis is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	health := database.CheckHealth(c.Request.Context(), h.pool, h.rdb)
	if !health.OK() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": health})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": health})
}

// Stats godoc
// GET /api/v1/admin/system/stats
func (h *SystemHandler) Stats(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stat := h.pool.Stat()
	response.Success(c, http.StatusOK, systemStats{
		Uptime:       formatDuration(time.Since(h.startTime)),
		LiveSessions: h.runtime.LiveCount(),
		Goroutines:   runtime.NumGoroutine(),
		HeapAlloc:    mem.HeapAlloc,
		GoVersion:    runtime.Version(),
		DBConns:      stat.TotalConns(),
		DBIdleConns:  stat.IdleConns(),
	})
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
