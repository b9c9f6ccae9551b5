package audit

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/liflo-ai/liflo/internal/config"
	"github.com/liflo-ai/liflo/internal/storage"
)

// NewSink creates the audit sink selected by LOG_SINK.
// A sink that cannot be initialized is an error; there is no silent fallback.
func NewSink(ctx context.Context, cfg *config.Config) (Sink, error) {
	switch cfg.LogSink {
	case "", "console":
		return NewConsoleSink(os.Stdout), nil

	case "none":
		return NopSink{}, nil

	case "sheets":
		sc := SheetsConfig{
			SpreadsheetID:       cfg.SheetsSpreadsheetID,
			TabPrefix:           cfg.SheetsTabPrefix,
			ServiceAccountEmail: cfg.GoogleServiceAccountEmail,
			PrivateKey:          cfg.GoogleServiceAccountKey,
		}
		if cfg.GoogleCredentialsJSONBase64 != "" {
			raw, err := base64.StdEncoding.DecodeString(cfg.GoogleCredentialsJSONBase64)
			if err != nil {
				return nil, fmt.Errorf("GOOGLE_CREDENTIALS_JSON_BASE64 is not valid base64: %w", err)
			}
			sc.CredentialsJSON = raw
		}
		return NewSheetsSink(ctx, sc)

	case "s3":
		store, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewObjectSink(store, cfg.S3Prefix), nil

	case "redis":
		return NewRedisSink(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisAuditStream,
			MaxLen:   cfg.RedisAuditMaxLen,
		})

	default:
		return nil, fmt.Errorf("unknown log sink: %s (supported: console, sheets, s3, redis, none)", cfg.LogSink)
	}
}

// NewQueueFromConfig wraps sink in a queue using the audit settings.
func NewQueueFromConfig(sink Sink, cfg *config.Config) (*Queue, error) {
	return NewQueue(sink, QueueOptions{
		BatchSize:     cfg.AuditBatchSize,
		FlushInterval: cfg.AuditFlushInterval,
		FlushTimeout:  cfg.AuditFlushTimeout,
	})
}
