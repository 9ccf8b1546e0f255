package activity

import (
	"fmt"

	"autoparts-storefront/config"
)

// ActivityFile is the JSON lines file written by the file sink
const ActivityFile = "quick-order.jsonl"

// NewWriter builds the writer for the configured sink
func NewWriter(cfg config.ActivityConfig) (Writer, error) {
	switch cfg.Sink {
	case "", config.SinkNone:
		return NopWriter{}, nil
	case config.SinkFile:
		return NewFileWriter(cfg.Dir, ActivityFile)
	case config.SinkKafka:
		return NewKafkaWriter(cfg.KafkaBootstrap, cfg.Topic), nil
	case config.SinkBoth:
		fw, err := NewFileWriter(cfg.Dir, ActivityFile)
		if err != nil {
			return nil, err
		}
		return NewMultiWriter(fw, NewKafkaWriter(cfg.KafkaBootstrap, cfg.Topic)), nil
	}
	return nil, fmt.Errorf("unknown activity sink %q", cfg.Sink)
}
