package http

// Error is the JSON error body returned by every failing endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OrderLineRequest is one line item of an incoming order.
type OrderLineRequest struct {
	SKU         string `json:"sku"`
	BinLocation string `json:"binLocation"`
	ZoneID      string `json:"zoneId"`
	Quantity    int    `json:"quantity"`
}

// CreateOrderRequest is the body for POST /api/v1/orders.
type CreateOrderRequest struct {
	Lines []OrderLineRequest `json:"lines"`
}

// CreateOrderResponse returns the identifier of the created order.
type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

// ClaimOrderRequest is the body for POST /api/v1/orders/:orderId/claim.
type ClaimOrderRequest struct {
	PickerID   string `json:"pickerId"`
	PickerName string `json:"pickerName"`
}

// RecordPickRequest is the body for recording pick progress on a task.
// PickedQuantity is the running total, not a delta.
type RecordPickRequest struct {
	PickedQuantity int `json:"pickedQuantity"`
}

// CancelOrderRequest is the body for POST /api/v1/orders/:orderId/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ActiveOrder is one row of GET /api/v1/orders/active.
type ActiveOrder struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	PickerID  string `json:"pickerId,omitempty"`
	TaskCount int    `json:"taskCount"`
}

// ZoneSummary is one row of GET /api/v1/zones/summary.
type ZoneSummary struct {
	ZoneID      string `json:"zoneId"`
	TaskCount   int    `json:"taskCount"`
	PickerCount int    `json:"pickerCount"`
}
