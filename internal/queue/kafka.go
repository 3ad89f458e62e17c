package queue

import (
	"context"
	"strings"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type KafkaPublisher struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewKafkaPublisher(brokers string, logger *logrus.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), config)
	if err != nil {
		return nil, err
	}

	return &KafkaPublisher{
		producer: producer,
		logger:   logger,
	}, nil
}

func (p *KafkaPublisher) Publish(queue string, body []byte) error {
	correlationID := uuid.New().String()

	msg := &sarama.ProducerMessage{
		Topic: queue,
		Key:   sarama.StringEncoder(correlationID),
		Value: sarama.ByteEncoder(body),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithField("queue", queue).Error("Failed to publish message")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"queue":          queue,
		"partition":      partition,
		"offset":         offset,
		"correlation_id": correlationID,
	}).Info("Message published")

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

type KafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	queueName     string
	handler       Handler
	logger        *logrus.Logger
}

func NewKafkaConsumer(brokers, groupID, queueName string, handler Handler, logger *logrus.Logger) (*KafkaConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Version = sarama.V2_6_0_0

	consumerGroup, err := sarama.NewConsumerGroup(strings.Split(brokers, ","), groupID, config)
	if err != nil {
		return nil, err
	}

	return &KafkaConsumer{
		consumerGroup: consumerGroup,
		queueName:     queueName,
		handler:       handler,
		logger:        logger,
	}, nil
}

func (c *KafkaConsumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{
		handler: c.handler,
		logger:  c.logger,
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.WithField("queue", c.queueName).Info("Consumer context cancelled")
			return nil
		default:
			if err := c.consumerGroup.Consume(ctx, []string{c.queueName}, handler); err != nil {
				c.logger.WithError(err).WithField("queue", c.queueName).Error("Error consuming from queue")
				return err
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.consumerGroup.Close()
}

type consumerGroupHandler struct {
	handler Handler
	logger  *logrus.Logger
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Consumer group session setup")
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Consumer group session cleanup")
	return nil
}

// ConsumeClaim starts a consumer loop of ConsumerGroupClaim's Messages()
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			h.logger.WithFields(logrus.Fields{
				"queue":          message.Topic,
				"partition":      message.Partition,
				"offset":         message.Offset,
				"correlation_id": string(message.Key),
			}).Info("Received message")

			if err := h.handler(Message{
				Queue:         message.Topic,
				CorrelationID: string(message.Key),
				Body:          message.Value,
			}); err != nil {
				h.logger.WithError(err).WithFields(logrus.Fields{
					"queue":          message.Topic,
					"correlation_id": string(message.Key),
				}).Error("Failed to handle message")
			}

			// The message counts as consumed whatever the handler returned;
			// failures never trigger redelivery.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			h.logger.Info("Consumer group session context cancelled")
			return nil
		}
	}
}
