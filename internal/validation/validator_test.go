package validation

import (
	"errors"
	"testing"
)

func TestParseOrderValid(t *testing.T) {
	body := []byte(`{"Name":"John","Address":"20, Palm Grove","ContactNumber":"+94718930874","PhoneName":"Apple:190000"}`)

	order, err := ParseOrder(body)
	if err != nil {
		t.Fatalf("ParseOrder returned error: %v", err)
	}

	if order.CustomerName != "John" {
		t.Errorf("CustomerName = %q, want %q", order.CustomerName, "John")
	}
	if order.Address != "20, Palm Grove" {
		t.Errorf("Address = %q, want %q", order.Address, "20, Palm Grove")
	}
	if order.ContactNumber != "+94718930874" {
		t.Errorf("ContactNumber = %q, want %q", order.ContactNumber, "+94718930874")
	}
	if order.ItemName != "Apple:190000" {
		t.Errorf("ItemName = %q, want %q", order.ItemName, "Apple:190000")
	}
}

func TestParseOrderMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing Name", `{"Address":"a","ContactNumber":"c","PhoneName":"p"}`, "Name"},
		{"missing Address", `{"Name":"n","ContactNumber":"c","PhoneName":"p"}`, "Address"},
		{"missing ContactNumber", `{"Name":"n","Address":"a","PhoneName":"p"}`, "ContactNumber"},
		{"missing PhoneName", `{"Name":"n","Address":"a","ContactNumber":"c"}`, "PhoneName"},
		{"null field", `{"Name":null,"Address":"a","ContactNumber":"c","PhoneName":"p"}`, "Name"},
		{"empty object", `{}`, "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOrder([]byte(tt.body))
			var rej *RejectionError
			if !errors.As(err, &rej) {
				t.Fatalf("ParseOrder error = %v, want RejectionError", err)
			}
			if rej.Kind != MissingField {
				t.Errorf("Kind = %v, want MissingField", rej.Kind)
			}
			if rej.Field != tt.want {
				t.Errorf("Field = %q, want %q", rej.Field, tt.want)
			}
		})
	}
}

func TestParseOrderMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `this is not json`},
		{"truncated", `{"Name":"John"`},
		{"json array", `["Name","Address"]`},
		{"json null", `null`},
		{"empty body", ``},
		{"object field value", `{"Name":{"first":"John"},"Address":"a","ContactNumber":"c","PhoneName":"p"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOrder([]byte(tt.body))
			var rej *RejectionError
			if !errors.As(err, &rej) {
				t.Fatalf("ParseOrder error = %v, want RejectionError", err)
			}
			if rej.Kind != MalformedPayload {
				t.Errorf("Kind = %v, want MalformedPayload", rej.Kind)
			}
		})
	}
}

func TestParseOrderNormalizesScalars(t *testing.T) {
	body := []byte(`{"Name":"John","Address":42,"ContactNumber":94718930874,"PhoneName":"Apple:190000"}`)

	order, err := ParseOrder(body)
	if err != nil {
		t.Fatalf("ParseOrder returned error: %v", err)
	}

	if order.Address != "42" {
		t.Errorf("Address = %q, want %q", order.Address, "42")
	}
	if order.ContactNumber != "94718930874" {
		t.Errorf("ContactNumber = %q, want %q", order.ContactNumber, "94718930874")
	}
}
