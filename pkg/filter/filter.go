// Package filter decides per-record inclusion based on event-name
// allow/deny sets.
package filter

import (
	"fmt"
	"strings"

	"github.com/tsouza/eventdump/pkg/event"
)

// Set holds the two event-name sets controlling inclusion. A non-empty
// allow list takes precedence: when Only has entries, Ignore is not
// consulted.
type Set struct {
	only   map[string]struct{}
	ignore map[string]struct{}
}

// Parse builds a Set from comma-separated name lists. Entries are
// trimmed and empty entries dropped. An allow list that is present but
// reduces to zero entries is a configuration error: it would silently
// export nothing.
func Parse(ignoreRaw, onlyRaw string) (Set, error) {
	only := splitList(onlyRaw)
	if onlyRaw != "" && len(only) == 0 {
		return Set{}, fmt.Errorf("filter: events to export %q contains no event names", onlyRaw)
	}
	return New(splitList(ignoreRaw), only), nil
}

// New builds a Set from already-split name lists.
func New(ignore, only []string) Set {
	return Set{only: toSet(only), ignore: toSet(ignore)}
}

// Select returns the subsequence of batch that passes the filter,
// insertion order preserved. An empty result means nothing to export,
// not an error.
func (s Set) Select(batch []*event.Record) []*event.Record {
	selected := make([]*event.Record, 0, len(batch))
	for _, rec := range batch {
		if s.Match(rec.Name()) {
			selected = append(selected, rec)
		}
	}
	return selected
}

// Match reports whether an event with the given name passes the filter.
func (s Set) Match(name string) bool {
	if len(s.only) > 0 {
		_, ok := s.only[name]
		return ok
	}
	_, denied := s.ignore[name]
	return !denied
}

func splitList(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
