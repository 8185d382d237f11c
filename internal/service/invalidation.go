package service

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/cache"
	"agora/internal/mapper"
	"agora/internal/realtime"
)

// Subscriber registers realtime handlers
type Subscriber interface {
	Subscribe(filter realtime.Filter, handler realtime.Handler) (*realtime.Subscription, error)
}

// profileColumns lists, per table, the columns naming users whose cached
// profile stats a change affects.
var profileColumns = map[string][]string{
	"profiles": {"id"},
	"follows":  {"follower_id", "followee_id"},
	"posts":    {"author_id"},
	"comments": {"author_id"},
}

const invalidationTimeout = 5 * time.Second

// CacheInvalidator drops cached aggregates when the rows behind them change,
// so the next read re-fetches them.
type CacheInvalidator struct {
	cache  cache.Cache
	subs   []*realtime.Subscription
	logger *slog.Logger
}

// StartCacheInvalidator subscribes to category and profile-related tables.
// Close releases the subscriptions.
func StartCacheInvalidator(hub Subscriber, c cache.Cache, logger *slog.Logger) (*CacheInvalidator, error) {
	inv := &CacheInvalidator{cache: c, logger: logger}

	sub, err := hub.Subscribe(realtime.Filter{Table: "categories", Event: realtime.EventAll}, inv.onCategoryChange)
	if err != nil {
		return nil, err
	}
	inv.subs = append(inv.subs, sub)

	for table := range profileColumns {
		sub, err := hub.Subscribe(realtime.Filter{Table: table, Event: realtime.EventAll}, inv.onProfileChange)
		if err != nil {
			inv.Close()
			return nil, err
		}
		inv.subs = append(inv.subs, sub)
	}

	logger.Info("cache invalidation subscribed", "subscriptions", len(inv.subs))
	return inv, nil
}

func (i *CacheInvalidator) onCategoryChange(ch realtime.Change) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()

	if err := i.cache.Delete(ctx, cache.KeyCategoryTree); err != nil {
		i.logger.Warn("category tree invalidation failed", "error", err)
		return
	}
	i.logger.Debug("category tree invalidated", "type", ch.Type)
}

func (i *CacheInvalidator) onProfileChange(ch realtime.Change) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()

	for _, userID := range affectedUsers(ch) {
		if _, err := i.cache.DeletePrefix(ctx, cache.PrefixProfile+userID+":"); err != nil {
			i.logger.Warn("profile invalidation failed", "user_id", userID, "error", err)
			continue
		}
		i.logger.Debug("profile invalidated", "user_id", userID, "table", ch.Table, "type", ch.Type)
	}
}

// affectedUsers extracts user ids from the new and old row of ch
func affectedUsers(ch realtime.Change) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, raw := range [][]byte{ch.Record, ch.OldRecord} {
		for _, col := range profileColumns[ch.Table] {
			id, ok := mapper.Column(raw, col)
			if !ok || id == "null" || id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Close releases every subscription
func (i *CacheInvalidator) Close() {
	for _, s := range i.subs {
		s.Close()
	}
}
