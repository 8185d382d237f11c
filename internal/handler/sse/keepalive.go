package sse

import (
	"context"
	"log/slog"
	"time"
)

// KeepAliveStrategy defines how keep-alive pings are sent to maintain SSE connections
type KeepAliveStrategy interface {
	// Start sends keep-alive pings until ctx is done or a write fails.
	// The returned channel closes when it stops.
	Start(ctx context.Context, writer KeepAliveWriter, logger *slog.Logger) <-chan struct{}
}

// KeepAliveWriter writes keep-alive messages. *Writer implements it.
type KeepAliveWriter interface {
	// WriteKeepAlive writes a keep-alive message (SSE comment)
	// Returns error if connection is closed or write fails
	WriteKeepAlive() error
}

// TickerKeepAlive implements periodic keep-alive using time.Ticker
type TickerKeepAlive struct {
	interval time.Duration
}

// NewTickerKeepAlive creates a new ticker-based keep-alive strategy
func NewTickerKeepAlive(interval time.Duration) *TickerKeepAlive {
	return &TickerKeepAlive{interval: interval}
}

// Start begins sending keep-alive pings on the configured interval
func (k *TickerKeepAlive) Start(ctx context.Context, writer KeepAliveWriter, logger *slog.Logger) <-chan struct{} {
	stopped := make(chan struct{})
	ticker := time.NewTicker(k.interval)

	go func() {
		defer close(stopped)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := writer.WriteKeepAlive(); err != nil {
					// Connection dropped or write failed - stop keep-alive
					logger.Debug("keep-alive write failed, stopping", "error", err)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return stopped
}
