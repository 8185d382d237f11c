package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Publisher receives decoded change events
type Publisher interface {
	Publish(Change)
}

// Listener holds a dedicated LISTEN connection and relays notifications.
// The connection must be a session connection; transaction-mode poolers drop LISTEN.
type Listener struct {
	dbURL   string
	channel string
	prefix  string
	pub     Publisher
	logger  *slog.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewListener creates a listener for channel. prefix is stripped from
// table names so subscribers filter on unprefixed names.
func NewListener(dbURL, channel, prefix string, pub Publisher, logger *slog.Logger) *Listener {
	return &Listener{
		dbURL:      dbURL,
		channel:    channel,
		prefix:     prefix,
		pub:        pub,
		logger:     logger,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Run listens until ctx is cancelled, reconnecting with exponential backoff.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		start := time.Now()
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		// A connection that stayed up a while resets the backoff
		if time.Since(start) > l.maxBackoff {
			backoff = l.minBackoff
		}
		l.logger.Warn("realtime listener disconnected, reconnecting",
			"channel", l.channel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, l.maxBackoff)
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.Info("realtime listener started", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		ch, err := l.decode(n.Payload)
		if err != nil {
			l.logger.Warn("realtime payload skipped", "error", err, "bytes", len(n.Payload))
			continue
		}
		l.pub.Publish(ch)
	}
}

func (l *Listener) decode(payload string) (Change, error) {
	var ch Change
	if err := json.Unmarshal([]byte(payload), &ch); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if ch.Table == "" {
		return Change{}, fmt.Errorf("change without table")
	}
	ch.Table = strings.TrimPrefix(ch.Table, l.prefix)
	return ch, nil
}
