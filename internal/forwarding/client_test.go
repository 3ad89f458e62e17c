package forwarding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SavithriNandadasa/message-construction-patterns/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

var testOrder = models.Order{
	CustomerName:  "John",
	Address:       "20, Palm Grove",
	ContactNumber: "+94718930874",
	ItemName:      "Apple:190000",
}

func TestForwardSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deliveryDetails/sendDelivery" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req models.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode forwarded payload: %v", err)
		}
		if req.Name != "John" || req.PhoneName != "Apple:190000" {
			t.Errorf("forwarded payload = %+v", req)
		}

		json.NewEncoder(w).Encode(models.OrderResponse{Message: "dispatched"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())

	resp, err := client.Forward(testOrder)
	if err != nil {
		t.Fatalf("Forward returned error: %v", err)
	}
	if resp.Message != "dispatched" {
		t.Errorf("Message = %q, want %q", resp.Message, "dispatched")
	}
}

func TestForwardNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())

	if _, err := client.Forward(testOrder); err == nil {
		t.Fatal("Forward did not return an error for a 500 response")
	}
}

func TestForwardTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Nothing listening anymore.

	client := NewClient(Config{BaseURL: server.URL}, testLogger())

	if _, err := client.Forward(testOrder); err == nil {
		t.Fatal("Forward did not return an error for a refused connection")
	}
}

func TestForwardRetriesUntilSuccess(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "not yet", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(models.OrderResponse{Message: "dispatched"})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:     server.URL,
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
	}, testLogger())

	resp, err := client.Forward(testOrder)
	if err != nil {
		t.Fatalf("Forward returned error after retries: %v", err)
	}
	if resp.Message != "dispatched" {
		t.Errorf("Message = %q, want %q", resp.Message, "dispatched")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("downstream called %d times, want 3", got)
	}
}

func TestForwardDefaultIsSingleAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())

	if _, err := client.Forward(testOrder); err == nil {
		t.Fatal("Forward did not return an error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("downstream called %d times, want 1", got)
	}
}
