package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// KafkaPublisher writes events as JSON to one topic, keyed by event type.
type KafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	log      zerolog.Logger
	done     chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, topic, log), nil
}

func newKafkaPublisher(producer sarama.AsyncProducer, topic string, log zerolog.Logger) *KafkaPublisher {
	k := &KafkaPublisher{producer: producer, topic: topic, log: log, done: make(chan struct{})}
	go k.drainErrors()
	return k
}

func (k *KafkaPublisher) drainErrors() {
	defer close(k.done)
	for perr := range k.producer.Errors() {
		k.log.Error().Err(perr.Err).Str("topic", k.topic).Msg("kafka publish failed")
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		k.log.Error().Err(err).Str("event", evt.Type).Msg("encode event")
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(evt.Type),
		Value: sarama.ByteEncoder(payload),
	}
	select {
	case k.producer.Input() <- msg:
	case <-ctx.Done():
		k.log.Warn().Str("event", evt.Type).Msg("kafka publish dropped: context done")
	}
}

// Close flushes pending messages and stops the error drain.
func (k *KafkaPublisher) Close() error {
	err := k.producer.Close()
	<-k.done
	return err
}
