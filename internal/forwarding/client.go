package forwarding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SavithriNandadasa/message-construction-patterns/internal/circuitbreaker"
	"github.com/SavithriNandadasa/message-construction-patterns/pkg/models"
)

const (
	defaultTimeout    = 30 * time.Second
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 30 * time.Second
)

type Config struct {
	// BaseURL of the delivery service.
	BaseURL string
	// MaxAttempts bounds the forward retries. 1 means no retry, which is
	// the default behavior.
	MaxAttempts int
	// RetryDelay is the initial backoff between attempts, doubled per
	// attempt and capped at MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	Breaker       circuitbreaker.Config
}

// Client turns a consumed queue message back into a blocking HTTP call.
// Its timeout domain is independent of the broker's delivery timeouts and
// of the original HTTP caller, which has already been answered.
type Client struct {
	baseURL       string
	maxAttempts   int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	httpClient    *http.Client
	breaker       *circuitbreaker.CircuitBreaker
	logger        *logrus.Logger
}

func NewClient(config Config, logger *logrus.Logger) *Client {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = initialRetryDelay
	}
	if config.MaxRetryDelay <= 0 {
		config.MaxRetryDelay = maxRetryDelay
	}
	if config.Breaker.Name == "" {
		config.Breaker.Name = "delivery-forward"
	}

	return &Client{
		baseURL:       config.BaseURL,
		maxAttempts:   config.MaxAttempts,
		retryDelay:    config.RetryDelay,
		maxRetryDelay: config.MaxRetryDelay,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		breaker: circuitbreaker.New(config.Breaker, logger),
		logger:  logger,
	}
}

// Forward sends the order to the delivery service and blocks until the
// call completes, fails, or times out.
func (c *Client) Forward(order models.Order) (*models.OrderResponse, error) {
	retryDelay := c.retryDelay

	var resp *models.OrderResponse
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.WithFields(logrus.Fields{
				"item":    order.ItemName,
				"attempt": attempt,
				"delay":   retryDelay,
			}).Info("Retrying delivery forward")

			time.Sleep(retryDelay)
			retryDelay *= 2
			if retryDelay > c.maxRetryDelay {
				retryDelay = c.maxRetryDelay
			}
		}

		err = c.breaker.Execute(func() error {
			resp, err = c.send(order)
			return err
		})
		if err == nil {
			return resp, nil
		}
	}

	return nil, err
}

func (c *Client) send(order models.Order) (*models.OrderResponse, error) {
	jsonData, err := json.Marshal(models.RequestFromOrder(order))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/deliveryDetails/sendDelivery", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to delivery service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("delivery service returned error status: %d", resp.StatusCode)
	}

	var orderResp models.OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("failed to decode delivery service response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"item":    order.ItemName,
		"status":  resp.StatusCode,
		"message": orderResp.Message,
	}).Info("Received response from delivery service")

	return &orderResp, nil
}
