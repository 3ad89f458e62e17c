package delivery

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/SavithriNandadasa/message-construction-patterns/internal/queue"
	"github.com/SavithriNandadasa/message-construction-patterns/pkg/models"
)

// Feed receives confirmed deliveries for live watchers.
type Feed interface {
	BroadcastDelivery(record models.DeliveryRecord)
}

// NewTerminalHandler builds the DeliveryQueue handler, the last hop of
// the pipeline: log the confirmed delivery and push it to the live feed.
// It never fails the consumer loop.
func NewTerminalHandler(feed Feed, logger *logrus.Logger) queue.Handler {
	return func(msg queue.Message) error {
		var record models.DeliveryRecord
		if err := json.Unmarshal(msg.Body, &record); err != nil {
			logger.WithError(err).WithField("correlation_id", msg.CorrelationID).Error("Failed to unmarshal delivery record")
			return nil
		}

		logger.WithFields(logrus.Fields{
			"customer":       record.CustomerName,
			"address":        record.Address,
			"contact":        record.ContactNumber,
			"item":           record.ItemName,
			"correlation_id": msg.CorrelationID,
		}).Info("Delivery confirmed")

		if feed != nil {
			feed.BroadcastDelivery(record)
		}

		return nil
	}
}
