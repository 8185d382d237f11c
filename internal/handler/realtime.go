package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"agora/internal/handler/sse"
	"agora/internal/httputil"
	"agora/internal/realtime"
)

// RealtimeHandler serves row change feeds over WebSocket and SSE
type RealtimeHandler struct {
	hub       *realtime.Hub
	ws        *realtime.WSHandler
	sseConfig *sse.Config
	logger    *slog.Logger
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(hub *realtime.Hub, sseConfig *sse.Config, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:       hub,
		ws:        realtime.NewWSHandler(hub, logger),
		sseConfig: sseConfig.WithDefaults(),
		logger:    logger,
	}
}

// WebSocket upgrades to the multiplexed subscribe/unsubscribe protocol
// GET /api/realtime
func (h *RealtimeHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	h.ws.ServeHTTP(w, r)
}

// Stream sends one subscription's changes as Server-Sent Events until the
// client disconnects.
// GET /api/realtime/stream?table=&event=&filter=
func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := realtime.ParseFilter(q.Get("table"), q.Get("event"), q.Get("filter"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	changes := make(chan realtime.Change, h.sseConfig.Buffer)
	sub, err := h.hub.Subscribe(filter, func(ch realtime.Change) {
		select {
		case changes <- ch:
		default:
			h.logger.Warn("sse client too slow, dropping change", "filter", filter.String())
		}
	})
	if err != nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer sub.Close()

	out, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer out.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	keepAliveDone := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval).Start(ctx, out, h.logger)

	h.logger.Debug("sse stream opened",
		"subscription", sub.ID(),
		"filter", filter.String(),
		"user_id", httputil.GetUserID(r),
	)

	for {
		select {
		case ch := <-changes:
			data, err := json.Marshal(ch)
			if err != nil {
				h.logger.Error("encode change failed", "error", err)
				continue
			}
			if err := out.WriteEvent(realtime.MsgChange, data); err != nil {
				h.logger.Debug("client disconnected during event write", "error", err)
				return
			}
		case <-sub.Done():
			return
		case <-keepAliveDone:
			return
		case <-ctx.Done():
			h.logger.Debug("sse stream closed", "subscription", sub.ID())
			return
		}
	}
}
