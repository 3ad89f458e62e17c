package queue

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Queue names shared by the store and delivery services. Both are durable
// point-to-point queues owned by the external broker.
const (
	OrderQueue    = "OrderQueue"
	DeliveryQueue = "DeliveryQueue"
)

// Message is one delivered queue message. The body is the UTF-8 JSON
// encoding of an Order or DeliveryRecord; the correlation ID ties log
// lines across the HTTP/queue boundary so no state is shared between the
// producing handler and the consuming one.
type Message struct {
	Queue         string
	CorrelationID string
	Body          []byte
}

// Handler is invoked once per delivered message. The message is
// considered handled whatever the handler returns; a non-nil error is
// logged and the consumer moves on to the next message.
type Handler func(msg Message) error

// Publisher enqueues one message per call, fire-and-forget from the
// caller's perspective. A publish failure is surfaced synchronously; the
// publisher itself never retries.
type Publisher interface {
	Publish(queue string, body []byte) error
	Close() error
}

// Consumer subscribes to a single named queue and dispatches deliveries
// to its handler until the context is cancelled.
type Consumer interface {
	Start(ctx context.Context) error
	Close() error
}

// Broker kinds accepted by the factory functions.
const (
	BrokerKafka = "kafka"
	BrokerAMQP  = "amqp"
)

// NewPublisher builds a publisher for the configured broker kind. addr is
// the Kafka broker list or the AMQP URL depending on the kind.
func NewPublisher(broker, addr string, logger *logrus.Logger) (Publisher, error) {
	switch broker {
	case BrokerKafka:
		return NewKafkaPublisher(addr, logger)
	case BrokerAMQP:
		return NewAMQPPublisher(addr, logger)
	default:
		return nil, fmt.Errorf("unknown message broker %q", broker)
	}
}

// NewConsumer builds a consumer for the configured broker kind. groupID
// is only meaningful for Kafka; AMQP queues are point-to-point already.
func NewConsumer(broker, addr, groupID, queueName string, handler Handler, logger *logrus.Logger) (Consumer, error) {
	switch broker {
	case BrokerKafka:
		return NewKafkaConsumer(addr, groupID, queueName, handler, logger)
	case BrokerAMQP:
		return NewAMQPConsumer(addr, queueName, handler, logger)
	default:
		return nil, fmt.Errorf("unknown message broker %q", broker)
	}
}
