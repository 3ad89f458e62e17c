package store

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/SavithriNandadasa/message-construction-patterns/internal/forwarding"
	"github.com/SavithriNandadasa/message-construction-patterns/internal/queue"
	"github.com/SavithriNandadasa/message-construction-patterns/pkg/models"
)

// NewOrderDispatcher builds the OrderQueue handler. Each consumed order
// is forwarded synchronously to the delivery service; a forward failure
// is returned for logging but the message stays consumed either way.
func NewOrderDispatcher(client *forwarding.Client, logger *logrus.Logger) queue.Handler {
	return func(msg queue.Message) error {
		var order models.Order
		if err := json.Unmarshal(msg.Body, &order); err != nil {
			// Undecodable messages never reach the forwarding path.
			logger.WithError(err).WithField("correlation_id", msg.CorrelationID).Error("Failed to unmarshal order message")
			return nil
		}

		if _, err := client.Forward(order); err != nil {
			return fmt.Errorf("failed to forward order to delivery service: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"customer":       order.CustomerName,
			"item":           order.ItemName,
			"correlation_id": msg.CorrelationID,
		}).Info("Order forwarded to delivery service")

		return nil
	}
}
