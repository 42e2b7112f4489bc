// Package compress wraps export payloads with an optional compression
// codec.
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Mode selects the compression codec. Unknown modes are a configuration
// error caught by ParseMode at setup, never at compress time.
type Mode string

const (
	ModeNone   Mode = "none"
	ModeGzip   Mode = "gzip"
	ModeBrotli Mode = "brotli"
)

// ParseMode validates a configured compression mode. An empty string
// means no compression.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeNone):
		return ModeNone, nil
	case string(ModeGzip):
		return ModeGzip, nil
	case string(ModeBrotli), "br":
		return ModeBrotli, nil
	default:
		return "", fmt.Errorf("compress: unknown mode %q", s)
	}
}

// Extension returns the key suffix for a mode, dot included.
func Extension(m Mode) string {
	switch m {
	case ModeGzip:
		return ".gz"
	case ModeBrotli:
		return ".br"
	default:
		return ""
	}
}

// ContentEncoding returns the Content-Encoding value for a mode, empty
// when the payload is not compressed.
func ContentEncoding(m Mode) string {
	switch m {
	case ModeGzip:
		return "gzip"
	case ModeBrotli:
		return "br"
	default:
		return ""
	}
}

// Compress returns the payload wrapped with the given codec. ModeNone
// returns the input unchanged.
func Compress(data []byte, m Mode) ([]byte, error) {
	switch m {
	case ModeNone:
		return data, nil
	case ModeGzip:
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return nil, fmt.Errorf("compress: gzip write: %w", err)
		}
		if err := gw.Close(); err != nil {
			return nil, fmt.Errorf("compress: gzip close: %w", err)
		}
		return buf.Bytes(), nil
	case ModeBrotli:
		var buf bytes.Buffer
		bw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		if _, err := bw.Write(data); err != nil {
			return nil, fmt.Errorf("compress: brotli write: %w", err)
		}
		if err := bw.Close(); err != nil {
			return nil, fmt.Errorf("compress: brotli close: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("compress: unknown mode %q", m)
	}
}

// Decompress reverses Compress for the given mode.
func Decompress(data []byte, m Mode) ([]byte, error) {
	switch m {
	case ModeNone:
		return data, nil
	case ModeGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("compress: gzip reader: %w", err)
		}
		defer gr.Close()
		out, err := io.ReadAll(gr)
		if err != nil {
			return nil, fmt.Errorf("compress: gzip read: %w", err)
		}
		return out, nil
	case ModeBrotli:
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("compress: brotli read: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("compress: unknown mode %q", m)
	}
}
