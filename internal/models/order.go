package models

// OrderLine is a single purchased line item inside an order-placed event.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

// OrderPlaced is the payload of the event published by the order system once
// a checkout completes. The catalog consumes it to decrement stock and bump
// the sold counters of the purchased products.
type OrderPlaced struct {
	OrderID  string      `json:"order_id"`
	Products []OrderLine `json:"products"`
}
