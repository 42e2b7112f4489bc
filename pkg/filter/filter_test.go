package filter

import (
	"testing"

	"github.com/tsouza/eventdump/pkg/event"
)

func makeBatch(names ...string) []*event.Record {
	batch := make([]*event.Record, 0, len(names))
	for i, name := range names {
		r := event.NewRecord()
		r.Set("event", event.String(name))
		r.Set("distinct_id", event.String("u"+string(rune('0'+i))))
		batch = append(batch, r)
	}
	return batch
}

func names(batch []*event.Record) []string {
	out := make([]string, 0, len(batch))
	for _, r := range batch {
		out = append(out, r.Name())
	}
	return out
}

func TestSelectNoFilters(t *testing.T) {
	s, err := Parse("", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	batch := makeBatch("signup", "pageview")
	selected := s.Select(batch)

	if len(selected) != 2 {
		t.Errorf("Expected all 2 records kept, got %d", len(selected))
	}
}

func TestSelectIgnoreList(t *testing.T) {
	s, err := Parse("pageview, autocapture", "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	batch := makeBatch("signup", "pageview", "purchase", "autocapture")
	selected := s.Select(batch)

	got := names(selected)
	if len(got) != 2 || got[0] != "signup" || got[1] != "purchase" {
		t.Errorf("Expected [signup purchase], got %v", got)
	}
}

func TestSelectAllowListTakesPrecedence(t *testing.T) {
	// Ignore list must not be consulted when the allow list is non-empty,
	// even when the two are disjoint.
	s, err := Parse("pageview", "signup")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	batch := makeBatch("pageview", "signup", "purchase")
	selected := s.Select(batch)

	if len(selected) != 1 || selected[0].Name() != "signup" {
		t.Errorf("Expected only [signup], got %v", names(selected))
	}
}

func TestSelectAllowListOrderPreserved(t *testing.T) {
	s, err := Parse("", "signup,purchase")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	batch := makeBatch("purchase", "pageview", "signup", "purchase")
	got := names(s.Select(batch))

	expected := []string{"purchase", "signup", "purchase"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestSelectEmptyResult(t *testing.T) {
	s, err := Parse("", "signup")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	selected := s.Select(makeBatch("pageview", "autocapture"))
	if len(selected) != 0 {
		t.Errorf("Expected empty result, got %v", names(selected))
	}
}

func TestParseTrimsEntries(t *testing.T) {
	s, err := Parse("", " signup , purchase ,")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !s.Match("signup") || !s.Match("purchase") {
		t.Errorf("Expected trimmed names to match")
	}
	if s.Match(" signup ") {
		t.Errorf("Expected untrimmed name not to match")
	}
}

func TestParseRejectsBlankAllowList(t *testing.T) {
	if _, err := Parse("", " , ,  "); err == nil {
		t.Errorf("Expected error for allow list with no event names")
	}
	// A blank ignore list is harmless
	if _, err := Parse(" , ", ""); err != nil {
		t.Errorf("Expected blank ignore list to be accepted, got %v", err)
	}
}
