// Package objectkey derives time-partitioned storage keys for export
// batches.
package objectkey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/tsouza/eventdump/pkg/compress"
	"github.com/tsouza/eventdump/pkg/serialize"
)

const (
	datePartition = "2006-01-02"     // UTC calendar date, one folder per day
	compactStamp  = "20060102150405" // date+time with separators stripped
	suffixBytes   = 8                // random bytes per unique suffix, hex encoded
)

// Builder derives one key per batch:
//
//	{prefix}{date}/{dateTimeCompact}[-{suffix}].{format}[.gz|.br]
//
// With UniqueSuffix enabled, concurrent exports landing in the same
// second get distinct keys. Without it, a later export in the same time
// bucket overwrites the earlier one.
type Builder struct {
	Prefix       string
	Format       serialize.Format
	Compression  compress.Mode
	UniqueSuffix bool
	Rand         io.Reader // defaults to crypto/rand
}

// Key derives the storage key for a batch exported at ts.
func (b *Builder) Key(ts time.Time) (string, error) {
	ts = ts.UTC()
	stem := ts.Format(compactStamp)

	if b.UniqueSuffix {
		src := b.Rand
		if src == nil {
			src = rand.Reader
		}
		var buf [suffixBytes]byte
		if _, err := io.ReadFull(src, buf[:]); err != nil {
			return "", fmt.Errorf("objectkey: random suffix: %w", err)
		}
		stem += "-" + hex.EncodeToString(buf[:])
	}

	return b.Prefix + ts.Format(datePartition) + "/" + stem +
		"." + b.Format.Extension() + compress.Extension(b.Compression), nil
}
