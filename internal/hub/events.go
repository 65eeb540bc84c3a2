package hub

import (
	"encoding/json"
	"time"

	"bus-tracker-backend/internal/registry"
)

// Inbound event names. Names follow the wire protocol the dashboards
// already speak: a role prefix plus the action.
const (
	EventUpdateLocation = "driver:updateLocation"
	EventStartTrip      = "driver:startTrip"
	EventEndTrip        = "driver:endTrip"
	EventChildBoarded   = "driver:childBoarded"
	EventChildAlighted  = "driver:childAlighted"
	EventSubscribeBus   = "parent:subscribeBus"
	EventUnsubscribeBus = "parent:unsubscribeBus"
	EventEmergency      = "emergency"
)

// Outbound event names.
const (
	EventLocationUpdate = "bus:locationUpdate"
	EventTripStarted    = "bus:tripStarted"
	EventTripEnded      = "bus:tripEnded"
	EventBoarded        = "child:boarded"
	EventAlighted       = "child:alighted"
	EventEmergencyAlert = "emergency:alert"
)

// Envelope is the frame exchanged over the websocket in both
// directions: an event name plus an event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// encodeEvent marshals an outbound frame.
func encodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// Inbound payloads. The hub destructures only the fields each handler
// needs; anything absent is the zero value.

type updateLocationPayload struct {
	BusID     int64   `json:"busId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
}

type tripPayload struct {
	BusID int64 `json:"busId"`
}

type boardingPayload struct {
	ChildID int64 `json:"childId"`
	BusID   int64 `json:"busId"`
}

type busPayload struct {
	BusID int64 `json:"busId"`
}

type emergencyPayload struct {
	BusID   int64  `json:"busId"`
	Message string `json:"message"`
}

// Outbound payloads. Every event carries a server-generated timestamp.

type tripStartedEvent struct {
	BusID     int64     `json:"busId"`
	StartTime time.Time `json:"startTime"`
}

type tripEndedEvent struct {
	BusID   int64     `json:"busId"`
	EndTime time.Time `json:"endTime"`
}

type childEvent struct {
	ChildID   int64     `json:"childId"`
	BusID     int64     `json:"busId"`
	ParentID  int64     `json:"parentId"`
	ChildName string    `json:"childName"`
	Time      time.Time `json:"time"`
}

type emergencyAlertEvent struct {
	BusID    int64            `json:"busId"`
	Message  string           `json:"message"`
	Time     time.Time        `json:"time"`
	Location *registry.Sample `json:"location,omitempty"`
}
