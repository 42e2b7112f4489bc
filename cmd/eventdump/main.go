package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsouza/eventdump/pkg/batcher"
	"github.com/tsouza/eventdump/pkg/compress"
	"github.com/tsouza/eventdump/pkg/config"
	"github.com/tsouza/eventdump/pkg/export"
	"github.com/tsouza/eventdump/pkg/filter"
	"github.com/tsouza/eventdump/pkg/kafka"
	"github.com/tsouza/eventdump/pkg/logger"
	"github.com/tsouza/eventdump/pkg/objectkey"
	"github.com/tsouza/eventdump/pkg/serialize"
	"github.com/tsouza/eventdump/pkg/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[eventdump] %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("[eventdump] failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("exporter terminated", zap.Error(err))
	}
	zl.Info("exporter stopped")
}

func run(ctx context.Context, cfg config.AppConfig, zl *zap.Logger) error {
	store, err := storage.NewS3Client(ctx, cfg.S3)
	if err != nil {
		return err
	}

	// All parse calls below were validated by config.Load already.
	format, err := serialize.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}
	mode, err := compress.ParseMode(cfg.Export.Compression)
	if err != nil {
		return err
	}
	filters, err := filter.Parse(cfg.Export.EventsToIgnore, cfg.Export.EventsToExport)
	if err != nil {
		return err
	}

	sse := cfg.S3.SSE
	if sse == config.SSENone {
		sse = ""
	}

	exporter := export.New(export.Options{
		Bucket:      cfg.S3.Bucket,
		Filters:     filters,
		Format:      format,
		Compression: mode,
		Keys: &objectkey.Builder{
			Prefix:       cfg.S3.Prefix,
			Format:       format,
			Compression:  mode,
			UniqueSuffix: cfg.Export.UniqueKeys,
		},
		ServerSideEncryption: sse,
		KMSKeyID:             cfg.S3.KMSKeyID,
	}, store, zl.Named("export"))

	b := batcher.New(batcher.Config{
		MaxBatchSize:  cfg.Export.MaxBatchSize,
		FlushInterval: cfg.Export.FlushInterval,
		MaxAttempts:   cfg.Retry.MaxAttempts,
		BaseDelay:     cfg.Retry.BaseDelay,
		MaxDelay:      cfg.Retry.MaxDelay,
	}, exporter.Export, zl.Named("batcher"))

	consumer := kafka.NewConsumer(cfg.Kafka, zl.Named("kafka"))
	defer func() { _ = consumer.Close() }()

	zl.Info("exporter started",
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("bucket", cfg.S3.Bucket),
		zap.String("format", cfg.Export.Format),
		zap.String("compression", cfg.Export.Compression))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(gctx) })
	g.Go(func() error { return consumer.Run(gctx, b.Add) })
	return g.Wait()
}
