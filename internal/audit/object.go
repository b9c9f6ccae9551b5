package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/liflo-ai/liflo/internal/storage"
)

// ObjectSink stores every batch as one JSON-lines object under
// {prefix}YYYY/MM/DD/{unix-nanos}-{uuid}.jsonl, dated by the first event.
type ObjectSink struct {
	store  storage.Storage
	prefix string
}

func NewObjectSink(store storage.Storage, prefix string) *ObjectSink {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ObjectSink{store: store, prefix: prefix}
}

func (s *ObjectSink) Name() string { return "s3" }

// Key returns the object key for a batch.
func (s *ObjectSink) Key(events []Event) string {
	ts := events[0].Timestamp.UTC()
	return fmt.Sprintf("%s%s/%d-%s.jsonl", s.prefix, ts.Format("2006/01/02"), ts.UnixNano(), uuid.NewString())
}

func (s *ObjectSink) AppendBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode audit event: %w", err)
		}
	}

	if err := s.store.Save(ctx, s.Key(events), "application/x-ndjson", &buf); err != nil {
		return fmt.Errorf("failed to store audit batch: %w", err)
	}
	return nil
}
