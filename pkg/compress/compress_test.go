package compress

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw      string
		expected Mode
		ok       bool
	}{
		{"", ModeNone, true},
		{"none", ModeNone, true},
		{"gzip", ModeGzip, true},
		{"brotli", ModeBrotli, true},
		{"br", ModeBrotli, true},
		{"zstd", "", false},
		{"GZIP", "", false},
	}

	for _, tc := range cases {
		m, err := ParseMode(tc.raw)
		if tc.ok && err != nil {
			t.Errorf("ParseMode(%q): unexpected error %v", tc.raw, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error", tc.raw)
			}
			continue
		}
		if m != tc.expected {
			t.Errorf("ParseMode(%q): expected %s, got %s", tc.raw, tc.expected, m)
		}
	}
}

func TestCompressNoneIsIdentity(t *testing.T) {
	payload := []byte(`{"event":"signup"}`)

	out, err := Compress(payload, ModeNone)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Errorf("Expected identical bytes for mode none")
	}
}

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"event":"pageview","distinct_id":"u1"}`+"\n", 200))

	for _, mode := range []Mode{ModeGzip, ModeBrotli} {
		compressed, err := Compress(payload, mode)
		if err != nil {
			t.Fatalf("%s: Compress failed: %v", mode, err)
		}
		if len(compressed) >= len(payload) {
			t.Errorf("%s: expected repetitive payload to shrink, got %d >= %d", mode, len(compressed), len(payload))
		}

		restored, err := Decompress(compressed, mode)
		if err != nil {
			t.Fatalf("%s: Decompress failed: %v", mode, err)
		}
		if !bytes.Equal(restored, payload) {
			t.Errorf("%s: round trip mismatch", mode)
		}
	}
}

func TestExtension(t *testing.T) {
	if ext := Extension(ModeNone); ext != "" {
		t.Errorf("Expected no extension for none, got %q", ext)
	}
	if ext := Extension(ModeGzip); ext != ".gz" {
		t.Errorf("Expected .gz, got %q", ext)
	}
	if ext := Extension(ModeBrotli); ext != ".br" {
		t.Errorf("Expected .br, got %q", ext)
	}
}

func TestContentEncoding(t *testing.T) {
	if enc := ContentEncoding(ModeNone); enc != "" {
		t.Errorf("Expected empty encoding for none, got %q", enc)
	}
	if enc := ContentEncoding(ModeGzip); enc != "gzip" {
		t.Errorf("Expected gzip, got %q", enc)
	}
	if enc := ContentEncoding(ModeBrotli); enc != "br" {
		t.Errorf("Expected br, got %q", enc)
	}
}
