package store

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
	orderPlacedMessage = "Your order is successfully placed. Order details will be sent to given contact number via sms"
	unavailableMessage = "Requested phone not available"
	badRequestMessage  = "Bad Request - Invalid payload"
	publishFailMessage = "Failed to place the order, please try again later"
)

// Handler serves the phone store HTTP surface. Each request is handled
// with fully local state; the catalog is read-only and shared without
// locking. The response is written only after the publish call has
// returned, and never waits on the downstream consumer.
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

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read order request body")
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
			}).Info("Rejected order payload")
		}
		h.respondWithMessage(w, http.StatusBadRequest, badRequestMessage)
		return
	}

	if !h.catalog.Available(order.ItemName) {
		h.logger.WithField("item", order.ItemName).Info("Requested phone not in catalog")
		h.respondWithMessage(w, http.StatusOK, unavailableMessage)
		return
	}

	message, err := json.Marshal(order)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal order")
		h.respondWithMessage(w, http.StatusInternalServerError, publishFailMessage)
		return
	}

	if err := h.publisher.Publish(queue.OrderQueue, message); err != nil {
		h.logger.WithError(err).Error("Failed to publish order")
		h.respondWithMessage(w, http.StatusInternalServerError, publishFailMessage)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"customer": order.CustomerName,
		"item":     order.ItemName,
	}).Info("Order placed")

	h.respondWithMessage(w, http.StatusOK, orderPlacedMessage)
}

func (h *Handler) GetPhoneList(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.catalog.Display())
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "phone-store-service",
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
