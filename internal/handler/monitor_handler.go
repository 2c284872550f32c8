package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler serves the admin live monitor.
type MonitorHandler struct {
	rdb            *redis.Client
	monitorService *service.MonitorService
	log            zerolog.Logger
}

func NewMonitorHandler(rdb *redis.Client, monitorService *service.MonitorService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// Overview godoc
// GET /api/v1/admin/monitor/overview
func (h *MonitorHandler) Overview(c *gin.Context) {
	overview, err := h.monitorService.Overview(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"overview": overview})
}

// MonitorSSE godoc
// GET /api/v1/admin/monitor/stream?session_id=
// Streams runtime events from Redis Pub/Sub, all sessions or just one,
// with a periodic overview refresh.
func (h *MonitorHandler) MonitorSSE(c *gin.Context) {
	channel := config.CacheKey.MonitorChannel()
	if raw := c.Query("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		channel = config.CacheKey.SessionMonitorChannel(id.String())
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.sendOverview(c, reqCtx, "snapshot")

	pubsub := h.rdb.Subscribe(reqCtx, channel)
	defer pubsub.Close()
	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	h.log.Info().Str("channel", channel).Msg("Admin attached to live monitor SSE")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("channel", channel).Msg("Admin disconnected from live monitor SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are already JSON; forward without decoding.
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-refreshTicker.C:
			h.sendOverview(c, reqCtx, "refresh")

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte(": ping\n\n"))
			c.Writer.Flush()
		}
	}
}

func (h *MonitorHandler) sendOverview(c *gin.Context, parent context.Context, kind string) {
	ctx, cancel := context.WithTimeout(parent, refreshTimeout)
	defer cancel()

	overview, err := h.monitorService.Overview(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to build monitor overview")
		return
	}

	c.SSEvent("message", gin.H{"type": kind, "data": overview})
	c.Writer.Flush()
}
