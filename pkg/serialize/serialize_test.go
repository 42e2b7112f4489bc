package serialize

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tsouza/eventdump/pkg/event"
)

func record(pairs ...string) *event.Record {
	r := event.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], event.String(pairs[i+1]))
	}
	return r
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"jsonl", "csv"} {
		if _, err := ParseFormat(valid); err != nil {
			t.Errorf("Expected %q to parse, got %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "parquet", "JSONL"} {
		if _, err := ParseFormat(invalid); err == nil {
			t.Errorf("Expected %q to be rejected", invalid)
		}
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	nested := event.NewRecord()
	nested.Set("browser", event.String("firefox"))

	first := event.NewRecord()
	first.Set("event", event.String("signup"))
	first.Set("distinct_id", event.String("u1"))
	first.Set("properties", event.Object(nested))

	second := record("event", "pageview", "distinct_id", "u2")

	batch := []*event.Record{first, second}
	data, err := Serialize(batch, FormatJSONL)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), data)
	}

	for i, line := range lines {
		decoded, decodeErr := event.Decode([]byte(line))
		if decodeErr != nil {
			t.Fatalf("Line %d does not decode: %v", i, decodeErr)
		}
		if !reflect.DeepEqual(decoded, batch[i]) {
			t.Errorf("Line %d round trip mismatch: %s", i, line)
		}
	}
}

func TestJSONLNoTrailingNewline(t *testing.T) {
	data, err := Serialize([]*event.Record{record("event", "signup")}, FormatJSONL)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if bytes.HasSuffix(data, []byte("\n")) {
		t.Errorf("Expected no trailing newline, got %q", data)
	}
}

func TestJSONLEmptyBatch(t *testing.T) {
	data, err := Serialize(nil, FormatJSONL)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty payload, got %q", data)
	}
}

func TestCSVHeaderAndRows(t *testing.T) {
	props := event.NewRecord()
	props.Set("plan", event.String("pro"))

	first := event.NewRecord()
	first.Set("event", event.String("signup"))
	first.Set("distinct_id", event.String("u1"))
	first.Set("revenue", event.Number(9.99))
	first.Set("properties", event.Object(props))

	second := event.NewRecord()
	second.Set("event", event.String("pageview"))
	second.Set("distinct_id", event.String("u2"))
	second.Set("revenue", event.Null())
	second.Set("properties", event.Bool(false))

	data, err := Serialize([]*event.Record{first, second}, FormatCSV)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	expected := "event,distinct_id,revenue,properties\r\n" +
		"\"signup\",\"u1\",9.99,\"{\"plan\":\"pro\"}\"\r\n" +
		"\"pageview\",\"u2\",null,false\r\n"
	if string(data) != expected {
		t.Errorf("Expected:\n%q\ngot:\n%q", expected, data)
	}
}

func TestCSVDropsFieldsAbsentFromHeader(t *testing.T) {
	first := record("event", "signup")
	second := record("event", "pageview", "extra", "dropped")

	data, err := Serialize([]*event.Record{first, second}, FormatCSV)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if strings.Contains(string(data), "dropped") {
		t.Errorf("Expected field absent from header to be dropped, got %q", data)
	}
}

func TestCSVMissingFieldLeavesEmptyCell(t *testing.T) {
	first := record("event", "signup", "distinct_id", "u1")
	second := record("event", "pageview")

	data, err := Serialize([]*event.Record{first, second}, FormatCSV)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	rows := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d: %q", len(rows), data)
	}
	if rows[2] != "\"pageview\"," {
		t.Errorf("Expected empty trailing cell, got %q", rows[2])
	}
}

func TestCSVDeterministic(t *testing.T) {
	batch := []*event.Record{
		record("event", "signup", "distinct_id", "u1"),
		record("event", "purchase", "distinct_id", "u2"),
	}

	a, err := Serialize(batch, FormatCSV)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	b, err := Serialize(batch, FormatCSV)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Errorf("Expected identical output across calls")
	}
}

func TestCSVEmptyBatch(t *testing.T) {
	_, err := Serialize(nil, FormatCSV)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Expected ErrEmptyBatch, got %v", err)
	}
}
