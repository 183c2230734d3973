package event_bus

import (
	"encoding/json"
	"fmt"
	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// TopicCapture carries a capture.Summary for every payload the receiver stored.
const TopicCapture = "capture"

// Bus is a typed view over an asynchronous EventBus. Arguments travel as JSON
// so publishers and subscribers never share mutable state.
type Bus[InputType any, OutputType any] interface {
	Subscribe(topic string, handler func(input InputType) error, transactional bool) error
	Publish(topic string, arg OutputType) error
	// WaitAsync blocks until every asynchronous handler has returned.
	WaitAsync()
}

type BusImpl[InputType any, OutputType any] struct {
	eventBus EventBus.Bus
	logger   *zap.Logger
}

func NewBusImpl[InputType any, OutputType any](
	eventBus EventBus.Bus,
	logger *zap.Logger,
) *BusImpl[InputType, OutputType] {
	return &BusImpl[InputType, OutputType]{
		eventBus: eventBus,
		logger:   logger,
	}
}

func (b *BusImpl[InputType, OutputType]) Subscribe(
	topic string,
	handler func(input InputType) error,
	transactional bool,
) error {
	err := b.eventBus.SubscribeAsync(
		topic,
		func(arg string) {
			var input InputType
			if err := json.Unmarshal([]byte(arg), &input); err != nil {
				b.logger.Error("Failed to unmarshal event",
					zap.String("topic", topic),
					zap.Error(err),
				)
				return
			}
			if err := handler(input); err != nil {
				b.logger.Error("Failed to handle event",
					zap.String("topic", topic),
					zap.Error(err),
				)
			}
		},
		transactional,
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	return nil
}

func (b *BusImpl[InputType, OutputType]) Publish(topic string, arg OutputType) error {
	argBytes, err := json.Marshal(arg)
	if err != nil {
		return fmt.Errorf("failed to marshal event for topic %s: %w", topic, err)
	}
	b.eventBus.Publish(topic, string(argBytes))
	return nil
}

func (b *BusImpl[InputType, OutputType]) WaitAsync() {
	b.eventBus.WaitAsync()
}
