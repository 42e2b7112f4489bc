// Package serialize converts an ordered batch of event records into a
// byte payload ready for upload.
package serialize

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tsouza/eventdump/pkg/event"
)

// Format selects the payload shape.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ErrEmptyBatch is returned when the tabular serializer is handed a
// batch it cannot derive a header from. This is a usage error, never a
// retryable one.
var ErrEmptyBatch = errors.New("serialize: empty batch, cannot derive csv header")

// ParseFormat validates a configured format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSONL, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("serialize: unknown format %q", s)
	}
}

// Extension returns the file extension for a format, without a dot.
func (f Format) Extension() string { return string(f) }

// Serialize encodes the batch in the given format. The batch is read
// only; record order is preserved in the output.
func Serialize(batch []*event.Record, format Format) ([]byte, error) {
	switch format {
	case FormatJSONL:
		return encodeJSONL(batch)
	case FormatCSV:
		return encodeCSV(batch)
	default:
		return nil, fmt.Errorf("serialize: unknown format %q", format)
	}
}

// encodeJSONL writes one JSON object per record, lines joined by a
// single newline. Every line decodes independently back to its record.
func encodeJSONL(batch []*event.Record) ([]byte, error) {
	var buf bytes.Buffer
	for i, rec := range batch {
		if i > 0 {
			buf.WriteByte('\n')
		}
		line, err := event.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("serialize: record %d: %w", i, err)
		}
		buf.Write(line)
	}
	return buf.Bytes(), nil
}

// encodeCSV writes a header derived from the first record's fields, in
// that record's order, then one CRLF-terminated row per record.
//
// Columns are positional against the header: fields a later record has
// that the first record lacks are dropped from that row, and a field
// missing from a later record leaves its cell empty. Scalar cells are
// JSON-encoded literals; object and array cells are the JSON text
// wrapped in double quotes.
func encodeCSV(batch []*event.Record) ([]byte, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	header := batch[0].Keys()

	var buf bytes.Buffer
	for i, col := range header {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(col)
	}
	buf.WriteString("\r\n")

	for i, rec := range batch {
		for j, col := range header {
			if j > 0 {
				buf.WriteByte(',')
			}
			v, ok := rec.Get(col)
			if !ok {
				continue // empty cell
			}
			cell, err := event.MarshalValue(v)
			if err != nil {
				return nil, fmt.Errorf("serialize: record %d field %s: %w", i, col, err)
			}
			switch v.Kind() {
			case event.KindObject, event.KindArray:
				buf.WriteByte('"')
				buf.Write(cell)
				buf.WriteByte('"')
			default:
				buf.Write(cell)
			}
		}
		buf.WriteString("\r\n")
	}

	return buf.Bytes(), nil
}
