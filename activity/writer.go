package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is one quick order activity record as written to the sinks
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Owner       string    `json:"owner"`
	UserID      string    `json:"user_id,omitempty"`
	Tab         string    `json:"tab,omitempty"`
	Lines       int       `json:"lines"`
	Found       int       `json:"found,omitempty"`
	Missing     int       `json:"missing,omitempty"`
	Obsolete    int       `json:"obsolete,omitempty"`
	Added       int       `json:"added,omitempty"`
	Skipped     int       `json:"skipped,omitempty"`
	QuoteNumber string    `json:"quote_number,omitempty"`
	At          time.Time `json:"at"`
}

type Writer interface {
	Append(ctx context.Context, e Event) error
	Close() error
}

// MultiWriter fans out writes to multiple underlying writers.
type MultiWriter struct {
	writers []Writer
}

func NewMultiWriter(ws ...Writer) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Append writes to every writer and joins their errors
func (m *MultiWriter) Append(ctx context.Context, e Event) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopWriter discards events
type NopWriter struct{}

func (NopWriter) Append(ctx context.Context, e Event) error { return nil }
func (NopWriter) Close() error                              { return nil }

// FileWriter appends events as JSON lines
type FileWriter struct {
	mu   sync.Mutex
	path string
}

func NewFileWriter(dir string, filename string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &FileWriter{path: filepath.Join(dir, filename)}, nil
}

func (w *FileWriter) Append(ctx context.Context, e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	if err := enc.Encode(&e); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func (w *FileWriter) Close() error { return nil }

// KafkaWriter publishes events to a Kafka topic, keyed by session owner.
type KafkaWriter struct {
	writer kafkaMessageWriter
}

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter creates a Kafka writer.
// bootstrap can be a comma-separated list of host:port.
func NewKafkaWriter(bootstrap string, topic string) *KafkaWriter {
	var brokers []string
	for _, a := range strings.Split(bootstrap, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			brokers = append(brokers, a)
		}
	}
	return &KafkaWriter{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}}
}

// NewKafkaWriterWith is only for tests to inject a fake writer.
func NewKafkaWriterWith(w kafkaMessageWriter) *KafkaWriter {
	return &KafkaWriter{writer: w}
}

func (k *KafkaWriter) Append(ctx context.Context, e Event) error {
	b, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return k.writer.WriteMessages(ctx,
		kafka.Message{
			Key:     []byte(e.Owner),
			Value:   b,
			Headers: []kafka.Header{{Key: "type", Value: []byte(e.Type)}},
		},
	)
}

func (k *KafkaWriter) Close() error { return k.writer.Close() }
