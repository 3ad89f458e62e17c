package models

// Order is the command message carried on OrderQueue. It is created from
// a validated placeOrder payload and never mutated afterwards.
type Order struct {
	CustomerName  string `json:"customerName"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	ItemName      string `json:"orderedPhoneName"`
}

// DeliveryRecord is the document message carried on DeliveryQueue once the
// downstream call has confirmed the order. Same shape as Order; no
// transactional link exists between the two.
type DeliveryRecord struct {
	CustomerName  string `json:"customerName"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	ItemName      string `json:"deliveryPhoneName"`
}

// RecordFromOrder builds the delivery-side view of a confirmed order.
func RecordFromOrder(order Order) DeliveryRecord {
	return DeliveryRecord{
		CustomerName:  order.CustomerName,
		Address:       order.Address,
		ContactNumber: order.ContactNumber,
		ItemName:      order.ItemName,
	}
}

// OrderRequest is the inbound HTTP payload shape shared by
// /phonestore/placeOrder and /deliveryDetails/sendDelivery.
type OrderRequest struct {
	Name          string `json:"Name"`
	Address       string `json:"Address"`
	ContactNumber string `json:"ContactNumber"`
	PhoneName     string `json:"PhoneName"`
}

// RequestFromOrder renders an Order back into the inbound payload shape
// for the store -> delivery forward call.
func RequestFromOrder(order Order) OrderRequest {
	return OrderRequest{
		Name:          order.CustomerName,
		Address:       order.Address,
		ContactNumber: order.ContactNumber,
		PhoneName:     order.ItemName,
	}
}

type OrderResponse struct {
	Message string `json:"Message"`
}

// InventoryEntry is one phone in the static catalog, loaded once at
// process start and read-only afterwards.
type InventoryEntry struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}
