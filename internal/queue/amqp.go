package queue

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// amqpChannel is the slice of *amqp.Channel the publisher uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	conn    *amqp.Connection
	channel amqpChannel
	logger  *logrus.Logger
}

func NewAMQPPublisher(url string, logger *logrus.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Both queues are declared once here; Publish itself costs a single
	// broker round trip per message.
	for _, name := range []string{OrderQueue, DeliveryQueue} {
		if err := declareQueue(channel, name); err != nil {
			channel.Close()
			conn.Close()
			return nil, err
		}
	}

	return &AMQPPublisher{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

func (p *AMQPPublisher) Publish(queue string, body []byte) error {
	correlationID := uuid.New().String()

	err := p.channel.Publish(
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: correlationID,
			Body:          body,
		})
	if err != nil {
		p.logger.WithError(err).WithField("queue", queue).Error("Failed to publish message")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"queue":          queue,
		"correlation_id": correlationID,
	}).Info("Message published")

	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type AMQPConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	handler   Handler
	logger    *logrus.Logger
}

func NewAMQPConsumer(url, queueName string, handler Handler, logger *logrus.Logger) (*AMQPConsumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := declareQueue(channel, queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	// One unacknowledged message at a time; the handler blocks on the
	// downstream round trip anyway.
	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPConsumer{
		conn:      conn,
		channel:   channel,
		queueName: queueName,
		handler:   handler,
		logger:    logger,
	}, nil
}

func (c *AMQPConsumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.WithField("queue", c.queueName).Info("Consumer context cancelled")
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.WithField("queue", c.queueName).Info("Delivery channel closed")
				return nil
			}

			c.logger.WithFields(logrus.Fields{
				"queue":          c.queueName,
				"correlation_id": delivery.CorrelationId,
			}).Info("Received message")

			if err := c.handler(Message{
				Queue:         c.queueName,
				CorrelationID: delivery.CorrelationId,
				Body:          delivery.Body,
			}); err != nil {
				c.logger.WithError(err).WithFields(logrus.Fields{
					"queue":          c.queueName,
					"correlation_id": delivery.CorrelationId,
				}).Error("Failed to handle message")
			}

			// Acknowledged whatever the handler returned; failures never
			// trigger redelivery.
			if err := delivery.Ack(false); err != nil {
				c.logger.WithError(err).Error("Failed to acknowledge message")
			}
		}
	}
}

func (c *AMQPConsumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	return c.conn.Close()
}

func declareQueue(channel amqpChannel, name string) error {
	_, err := channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	return err
}
