package validation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/SavithriNandadasa/message-construction-patterns/pkg/models"
)

// RejectionKind classifies why a payload was rejected. Both kinds map to
// HTTP 400; ItemUnavailable is deliberately not part of this taxonomy
// because an unknown phone is an expected business outcome, not a
// malformed request.
type RejectionKind int

const (
	MalformedPayload RejectionKind = iota
	MissingField
)

func (k RejectionKind) String() string {
	switch k {
	case MalformedPayload:
		return "malformed payload"
	case MissingField:
		return "missing field"
	default:
		return "unknown"
	}
}

// RejectionError is returned when an inbound payload cannot become an
// Order. Field is set for MissingField rejections.
type RejectionError struct {
	Kind  RejectionKind
	Field string
}

func (e *RejectionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return e.Kind.String()
}

var requiredFields = []string{"Name", "Address", "ContactNumber", "PhoneName"}

// ParseOrder validates a raw placeOrder/sendDelivery body and builds the
// Order it describes. Parsing and field presence are checked here;
// catalog membership is the caller's concern. Scalar values submitted as
// numbers or booleans are normalized to their string form.
func ParseOrder(body []byte) (models.Order, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Order{}, &RejectionError{Kind: MalformedPayload}
	}
	if payload == nil {
		return models.Order{}, &RejectionError{Kind: MalformedPayload}
	}

	fields := make(map[string]string, len(requiredFields))
	for _, name := range requiredFields {
		value, ok := payload[name]
		if !ok || value == nil {
			return models.Order{}, &RejectionError{Kind: MissingField, Field: name}
		}
		text, ok := stringify(value)
		if !ok {
			return models.Order{}, &RejectionError{Kind: MalformedPayload}
		}
		fields[name] = text
	}

	return models.Order{
		CustomerName:  fields["Name"],
		Address:       fields["Address"],
		ContactNumber: fields["ContactNumber"],
		ItemName:      fields["PhoneName"],
	}, nil
}

// stringify normalizes a decoded JSON scalar to string form. Objects and
// arrays are not valid field values.
func stringify(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
