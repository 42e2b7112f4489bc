// Package export orchestrates one batch export: filter, serialize,
// compress, derive a key and perform exactly one upload attempt.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsouza/eventdump/pkg/compress"
	"github.com/tsouza/eventdump/pkg/event"
	"github.com/tsouza/eventdump/pkg/filter"
	"github.com/tsouza/eventdump/pkg/objectkey"
	"github.com/tsouza/eventdump/pkg/serialize"
	"github.com/tsouza/eventdump/pkg/storage"
)

const sampleNames = 5 // event names logged per successful export

// Options is the immutable per-pipeline configuration, resolved once at
// startup.
type Options struct {
	Bucket      string
	Filters     filter.Set
	Format      serialize.Format
	Compression compress.Mode
	Keys        *objectkey.Builder

	// ServerSideEncryption is "AES256", "aws:kms" or empty. KMSKeyID is
	// attached only with "aws:kms".
	ServerSideEncryption string
	KMSKeyID             string
}

// Exporter holds no mutable state across invocations; concurrent
// Export calls are independent.
type Exporter struct {
	opts  Options
	store storage.Putter
	log   *zap.Logger
	now   func() time.Time
}

func New(opts Options, store storage.Putter, log *zap.Logger) *Exporter {
	return &Exporter{opts: opts, store: store, log: log, now: time.Now}
}

// Export runs one batch through the pipeline. An empty post-filter
// batch is a successful no-op. Any upload failure comes back as a
// *RetryableError; the caller owns redelivery and backoff. Exactly one
// upload attempt is made per call.
func (e *Exporter) Export(ctx context.Context, batch []*event.Record) error {
	selected := e.opts.Filters.Select(batch)
	if len(selected) == 0 {
		e.log.Debug("nothing to export after filtering",
			zap.Int("received", len(batch)))
		return nil
	}

	payload, err := serialize.Serialize(selected, e.opts.Format)
	if err != nil {
		return fmt.Errorf("export: serialize: %w", err)
	}

	body, err := compress.Compress(payload, e.opts.Compression)
	if err != nil {
		return fmt.Errorf("export: compress: %w", err)
	}

	key, err := e.opts.Keys.Key(e.now())
	if err != nil {
		return fmt.Errorf("export: derive key: %w", err)
	}

	kmsKey := ""
	if e.opts.ServerSideEncryption == "aws:kms" {
		kmsKey = e.opts.KMSKeyID
	}
	up := storage.UploadDescriptor{
		Bucket:               e.opts.Bucket,
		Key:                  key,
		Body:                 body,
		ContentEncoding:      compress.ContentEncoding(e.opts.Compression),
		ServerSideEncryption: e.opts.ServerSideEncryption,
		KMSKeyID:             kmsKey,
	}

	if err := e.store.Put(ctx, up); err != nil {
		return &RetryableError{Key: key, Err: err}
	}

	e.log.Info("batch exported",
		zap.String("export_id", uuid.NewString()),
		zap.Int("events", len(selected)),
		zap.String("bucket", e.opts.Bucket),
		zap.String("key", key),
		zap.Int("payload_bytes", len(payload)),
		zap.Int("upload_bytes", len(body)),
		zap.Uint64("payload_xxh64", xxhash.Sum64(payload)),
		zap.Strings("event_sample", sample(selected)),
	)
	return nil
}

// sample returns the first few exported event names. Bounded so large
// batches cannot blow up log size.
func sample(batch []*event.Record) []string {
	n := min(len(batch), sampleNames)
	names := make([]string, 0, n)
	for _, rec := range batch[:n] {
		names = append(names, rec.Name())
	}
	return names
}
