package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
)

// stubSession records which messages ConsumeClaim marks as consumed.
type stubSession struct {
	ctx    context.Context
	marked []*sarama.ConsumerMessage
}

func (s *stubSession) Claims() map[string][]int32               { return nil }
func (s *stubSession) MemberID() string                         { return "" }
func (s *stubSession) GenerationID() int32                      { return 0 }
func (s *stubSession) MarkOffset(string, int32, int64, string)  {}
func (s *stubSession) Commit()                                  {}
func (s *stubSession) ResetOffset(string, int32, int64, string) {}
func (s *stubSession) Context() context.Context                 { return s.ctx }

func (s *stubSession) MarkMessage(msg *sarama.ConsumerMessage, metadata string) {
	s.marked = append(s.marked, msg)
}

type stubClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *stubClaim) Topic() string                            { return OrderQueue }
func (c *stubClaim) Partition() int32                         { return 0 }
func (c *stubClaim) InitialOffset() int64                     { return 0 }
func (c *stubClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *stubClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func deliverMessages(msgs ...*sarama.ConsumerMessage) *stubClaim {
	claim := &stubClaim{messages: make(chan *sarama.ConsumerMessage, len(msgs))}
	for _, msg := range msgs {
		claim.messages <- msg
	}
	close(claim.messages)
	return claim
}

func TestConsumeClaimMarksMessagesOnHandlerFailure(t *testing.T) {
	var invocations []string
	h := &consumerGroupHandler{
		handler: func(msg Message) error {
			invocations = append(invocations, msg.CorrelationID)
			return errors.New("downstream unavailable")
		},
		logger: testLogger(),
	}

	first := &sarama.ConsumerMessage{Topic: OrderQueue, Key: []byte("c-1"), Value: []byte(`{}`), Offset: 1}
	second := &sarama.ConsumerMessage{Topic: OrderQueue, Key: []byte("c-2"), Value: []byte(`{}`), Offset: 2}

	session := &stubSession{ctx: context.Background()}

	if err := h.ConsumeClaim(session, deliverMessages(first, second)); err != nil {
		t.Fatalf("ConsumeClaim returned error: %v", err)
	}

	// The handler sees each delivery exactly once, and a handler failure
	// never holds a message back from acknowledgement.
	if len(invocations) != 2 {
		t.Fatalf("handler invoked %d times, want 2", len(invocations))
	}
	if invocations[0] != "c-1" || invocations[1] != "c-2" {
		t.Errorf("handler invocations = %v", invocations)
	}
	if len(session.marked) != 2 {
		t.Fatalf("marked %d messages, want 2", len(session.marked))
	}
	if session.marked[0] != first || session.marked[1] != second {
		t.Error("marked messages do not match the delivered ones")
	}
}

func TestConsumeClaimMarksMessagesOnSuccess(t *testing.T) {
	var invocations int
	h := &consumerGroupHandler{
		handler: func(msg Message) error {
			invocations++
			return nil
		},
		logger: testLogger(),
	}

	msg := &sarama.ConsumerMessage{Topic: OrderQueue, Key: []byte("c-3"), Value: []byte(`{}`), Offset: 3}
	session := &stubSession{ctx: context.Background()}

	if err := h.ConsumeClaim(session, deliverMessages(msg)); err != nil {
		t.Fatalf("ConsumeClaim returned error: %v", err)
	}

	if invocations != 1 {
		t.Errorf("handler invoked %d times, want 1", invocations)
	}
	if len(session.marked) != 1 {
		t.Errorf("marked %d messages, want 1", len(session.marked))
	}
}

func TestConsumeClaimStopsOnSessionCancel(t *testing.T) {
	h := &consumerGroupHandler{
		handler: func(Message) error { return nil },
		logger:  testLogger(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No messages buffered; the cancelled session context must end the loop.
	claim := &stubClaim{messages: make(chan *sarama.ConsumerMessage)}
	session := &stubSession{ctx: ctx}

	if err := h.ConsumeClaim(session, claim); err != nil {
		t.Fatalf("ConsumeClaim returned error: %v", err)
	}
}
