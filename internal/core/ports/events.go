package ports

// Event names form the fixed wire catalogue delivered to connected worker
// clients. Payload shapes are the typed structs below; adding a new event
// kind must not change delivery semantics.
const (
	EventOrderClaimed     = "order:claimed"
	EventOrderCompleted   = "order:completed"
	EventOrderCancelled   = "order:cancelled"
	EventPickUpdated      = "pick:updated"
	EventPickCompleted    = "pick:completed"
	EventZoneUpdated      = "zone:updated"
	EventZoneAssignment   = "zone:assignment"
	EventInventoryUpdated = "inventory:updated"
	EventInventoryLow     = "inventory:low"
	EventNotificationNew  = "notification:new"
	EventConnected        = "connected"
)

// EventScope selects which subscriber channel an event fans out to.
// Zone-scoped events are never broadcast globally.
type EventScope int

const (
	// ScopeOrders targets every connection subscribed to the global
	// orders channel.
	ScopeOrders EventScope = iota

	// ScopeZone targets connections subscribed to one zone; the zone ID
	// travels on the Event.
	ScopeZone

	// ScopeInventory targets connections subscribed to inventory changes.
	ScopeInventory
)

// Event is a domain event published by the application layer after a
// successful commit and fanned out by the broadcaster. Delivery is
// at-most-once and best-effort: disconnected clients receive nothing and
// are not backfilled on reconnect.
type Event struct {
	Name    string
	Scope   EventScope
	ZoneID  string // set only for ScopeZone
	Payload any
}

// EventPublisher is the outbound port command handlers use to announce
// committed state changes. Implementations must not block the caller on
// slow subscribers.
type EventPublisher interface {
	Publish(event Event)
}

// OrderClaimedPayload announces that a picker took ownership of an order.
type OrderClaimedPayload struct {
	OrderID    string `json:"orderId"`
	PickerID   string `json:"pickerId"`
	PickerName string `json:"pickerName"`
}

// OrderCompletedPayload announces that an order finished picking.
type OrderCompletedPayload struct {
	OrderID  string `json:"orderId"`
	PickerID string `json:"pickerId"`
}

// OrderCancelledPayload announces an order cancellation.
type OrderCancelledPayload struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

// PickUpdatedPayload announces a picked-quantity change on one task.
type PickUpdatedPayload struct {
	OrderID        string `json:"orderId"`
	OrderItemID    string `json:"orderItemId"`
	PickedQuantity int    `json:"pickedQuantity"`
}

// PickCompletedPayload announces that one pick task reached a terminal state.
type PickCompletedPayload struct {
	OrderID     string `json:"orderId"`
	OrderItemID string `json:"orderItemId"`
}

// ZoneUpdatedPayload announces changed workload numbers for one zone.
type ZoneUpdatedPayload struct {
	ZoneID      string `json:"zoneId"`
	TaskCount   int    `json:"taskCount"`
	PickerCount int    `json:"pickerCount"`
}

// ZoneAssignmentPayload announces a picker being assigned to or removed
// from a zone.
type ZoneAssignmentPayload struct {
	ZoneID   string `json:"zoneId"`
	PickerID string `json:"pickerId"`
	Assigned bool   `json:"assigned"`
}

// InventoryUpdatedPayload announces a bin quantity change.
type InventoryUpdatedPayload struct {
	SKU         string `json:"sku"`
	BinLocation string `json:"binLocation"`
	Quantity    int    `json:"quantity"`
}

// InventoryLowPayload announces stock falling under its minimum threshold.
type InventoryLowPayload struct {
	SKU          string `json:"sku"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"minThreshold"`
}

// NotificationNewPayload carries an operator notification.
type NotificationNewPayload struct {
	NotificationID string `json:"notificationId"`
	Title          string `json:"title"`
	Message        string `json:"message"`
}

// ConnectedPayload is sent to a client right after its subscription handshake.
type ConnectedPayload struct {
	Message string `json:"message"`
}
