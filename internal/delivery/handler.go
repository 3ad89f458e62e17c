package delivery

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/SavithriNandadasa/message-construction-patterns/internal/catalog"
	"github.com/SavithriNandadasa/message-construction-patterns/internal/queue"
	"github.com/SavithriNandadasa/message-construction-patterns/internal/validation"
	"github.com/SavithriNandadasa/message-construction-patterns/pkg/models"
)

const (
	dispatchedMessage  = "Your delivery request is successfully dispatched. Delivery details will be sent to given contact number via sms"
	unavailableMessage = "Requested phone not available"
	badRequestMessage  = "Bad Request - Invalid payload"
	publishFailMessage = "Failed to dispatch the delivery, please try again later"
)

// Handler serves the delivery-side HTTP surface. The forwarded payload is
// re-validated against the same catalog before the delivery record is
// enqueued; the store and delivery services share no state beyond the
// message bodies themselves.
type Handler struct {
	catalog   *catalog.Catalog
	publisher queue.Publisher
	logger    *logrus.Logger
}

func NewHandler(cat *catalog.Catalog, publisher queue.Publisher, logger *logrus.Logger) *Handler {
	return &Handler{
		catalog:   cat,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *Handler) SendDelivery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read delivery request body")
		h.respondWithMessage(w, http.StatusBadRequest, badRequestMessage)
		return
	}

	order, err := validation.ParseOrder(body)
	if err != nil {
		var rej *validation.RejectionError
		if errors.As(err, &rej) {
			h.logger.WithFields(logrus.Fields{
				"kind":  rej.Kind.String(),
				"field": rej.Field,
			}).Info("Rejected delivery payload")
		}
		h.respondWithMessage(w, http.StatusBadRequest, badRequestMessage)
		return
	}

	if !h.catalog.Available(order.ItemName) {
		h.logger.WithField("item", order.ItemName).Info("Requested phone not in catalog")
		h.respondWithMessage(w, http.StatusOK, unavailableMessage)
		return
	}

	record := models.RecordFromOrder(order)

	message, err := json.Marshal(record)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal delivery record")
		h.respondWithMessage(w, http.StatusInternalServerError, publishFailMessage)
		return
	}

	if err := h.publisher.Publish(queue.DeliveryQueue, message); err != nil {
		h.logger.WithError(err).Error("Failed to publish delivery record")
		h.respondWithMessage(w, http.StatusInternalServerError, publishFailMessage)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"customer": record.CustomerName,
		"item":     record.ItemName,
	}).Info("Delivery dispatched")

	h.respondWithMessage(w, http.StatusOK, dispatchedMessage)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "delivery-service",
	})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondWithMessage(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, models.OrderResponse{Message: message})
}
