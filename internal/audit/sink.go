package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// SinkName returns the sink's Name() when it has one.
func SinkName(s Sink) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

// ConsoleSink writes each event as one JSON line.
type ConsoleSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{enc: json.NewEncoder(w)}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) AppendBatch(ctx context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.enc.Encode(e); err != nil {
			return fmt.Errorf("failed to write audit event: %w", err)
		}
	}
	return nil
}

// NopSink discards every batch.
type NopSink struct{}

func (NopSink) Name() string { return "none" }

func (NopSink) AppendBatch(context.Context, []Event) error { return nil }
