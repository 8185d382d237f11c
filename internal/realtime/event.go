// Package realtime fans out row change events from Postgres to subscribers.
//
// Database triggers publish each insert, update and delete on a pg_notify
// channel. A Listener relays them to a Hub, and the Hub delivers every event
// to the subscriptions whose Filter matches. Subscriptions are explicit
// handles: they live until Close is called on them or on the Hub.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventType is the kind of row change
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// ParseEventType accepts INSERT, UPDATE, DELETE or * in any case; "" means *.
func ParseEventType(s string) (EventType, error) {
	switch EventType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", EventAll:
		return EventAll, nil
	case EventInsert:
		return EventInsert, nil
	case EventUpdate:
		return EventUpdate, nil
	case EventDelete:
		return EventDelete, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// Change is one row change as published by the notify trigger.
// Table is unprefixed once it has passed through a Listener.
type Change struct {
	Schema          string          `json:"schema"`
	Table           string          `json:"table"`
	Type            EventType       `json:"type"`
	Record          json.RawMessage `json:"record"`
	OldRecord       json.RawMessage `json:"old_record"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// Row returns the record an event is about: the new row, or the old row for deletes.
func (c Change) Row() json.RawMessage {
	if c.Type == EventDelete || isNull(c.Record) {
		return c.OldRecord
	}
	return c.Record
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
