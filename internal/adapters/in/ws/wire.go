package ws

import (
	"encoding/json"

	"warehouse/internal/core/ports"
)

// Channel names a client can subscribe to. Zone channels are derived per
// zone id; orders and inventory are fixed.
const (
	ChannelOrders    = "orders"
	ChannelInventory = "inventory"
	zoneChannelPfx   = "zone:"
)

// ZoneChannel returns the channel name for one zone.
func ZoneChannel(zoneID string) string {
	return zoneChannelPfx + zoneID
}

// channelForEvent maps an event's scope to the channel its subscribers
// listen on.
func channelForEvent(event ports.Event) string {
	switch event.Scope {
	case ports.ScopeZone:
		return ZoneChannel(event.ZoneID)
	case ports.ScopeInventory:
		return ChannelInventory
	case ports.ScopeOrders:
		return ChannelOrders
	default:
		return ChannelOrders
	}
}

// envelope is the outbound wire format: the event name plus its payload.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encodeEvent(event ports.Event) ([]byte, error) {
	return json.Marshal(envelope{
		Event: event.Name,
		Data:  event.Payload,
	})
}

// Control actions accepted from clients.
const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
	actionHeartbeat   = "heartbeat"
)

// controlMessage is the inbound wire format for subscription changes and
// activity heartbeats.
type controlMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel,omitempty"`
}
