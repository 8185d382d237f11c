package realtime

import (
	"fmt"
	"strings"

	"agora/internal/mapper"
)

// Filter selects change events by table, event type and an optional
// column equality written as "column=eq.value".
type Filter struct {
	Table  string    `json:"table"`
	Event  EventType `json:"event"`
	Column string    `json:"column,omitempty"`
	Value  string    `json:"value,omitempty"`
}

// ParseFilter builds a Filter from its wire parts.
func ParseFilter(table, event, filter string) (Filter, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Filter{}, fmt.Errorf("table is required")
	}
	et, err := ParseEventType(event)
	if err != nil {
		return Filter{}, err
	}

	f := Filter{Table: table, Event: et}
	if filter == "" {
		return f, nil
	}

	column, rest, ok := strings.Cut(filter, "=")
	if !ok || column == "" {
		return Filter{}, fmt.Errorf("invalid filter %q: want column=eq.value", filter)
	}
	value, ok := strings.CutPrefix(rest, "eq.")
	if !ok {
		return Filter{}, fmt.Errorf("invalid filter %q: only eq is supported", filter)
	}
	f.Column = column
	f.Value = value
	return f, nil
}

// String renders the filter in its wire form.
func (f Filter) String() string {
	s := f.Table + ":" + string(f.Event)
	if f.Column != "" {
		s += ":" + f.Column + "=eq." + f.Value
	}
	return s
}

// Matches reports whether ch passes the filter. Column filters are checked
// against the new row, or the old row for deletes. Numbers match their
// decimal text, so user_id=eq.42 matches 42 and "42".
func (f Filter) Matches(ch Change) bool {
	if f.Table != ch.Table {
		return false
	}
	if f.Event != EventAll && f.Event != ch.Type {
		return false
	}
	if f.Column == "" {
		return true
	}
	v, ok := mapper.Column(ch.Row(), f.Column)
	return ok && v == f.Value
}
