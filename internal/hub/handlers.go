package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bus-tracker-backend/internal/model"
	"bus-tracker-backend/internal/registry"
	"bus-tracker-backend/internal/store"
)

// route parses an inbound frame and dispatches it. All handler errors
// end here: they are logged and swallowed so a failing event can never
// close the connection.
func (h *Hub) route(ctx context.Context, c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.logger.Printf("malformed frame from user %d: %v", c.UserID, err)
		return
	}
	if err := h.dispatch(ctx, c, env); err != nil {
		h.logger.Printf("event %s from user %d failed: %v", env.Event, c.UserID, err)
	}
}

// dispatch gates each event on the sender's role and invokes its
// handler. A role mismatch is dropped silently: nothing is persisted,
// nothing is emitted, and the sender is not told.
func (h *Hub) dispatch(ctx context.Context, c *Client, env Envelope) error {
	switch env.Event {
	case EventUpdateLocation:
		if c.Role != model.RoleDriver {
			h.dropForRole(c, env.Event)
			return nil
		}
		return h.handleUpdateLocation(ctx, c, env.Data)
	case EventStartTrip:
		if c.Role != model.RoleDriver {
			h.dropForRole(c, env.Event)
			return nil
		}
		return h.handleStartTrip(ctx, env.Data)
	case EventEndTrip:
		if c.Role != model.RoleDriver {
			h.dropForRole(c, env.Event)
			return nil
		}
		return h.handleEndTrip(ctx, env.Data)
	case EventChildBoarded:
		if c.Role != model.RoleDriver {
			h.dropForRole(c, env.Event)
			return nil
		}
		return h.handleBoarding(ctx, env.Data, model.BoardingTypeBoard)
	case EventChildAlighted:
		if c.Role != model.RoleDriver {
			h.dropForRole(c, env.Event)
			return nil
		}
		return h.handleBoarding(ctx, env.Data, model.BoardingTypeAlight)
	case EventSubscribeBus:
		if c.Role != model.RoleParent {
			h.dropForRole(c, env.Event)
			return nil
		}
		return h.handleSubscribeBus(c, env.Data)
	case EventUnsubscribeBus:
		return h.handleUnsubscribeBus(c, env.Data)
	case EventEmergency:
		// Any authenticated role may report an emergency.
		return h.handleEmergency(ctx, c, env.Data)
	default:
		h.logger.Printf("unknown event %q from user %d", env.Event, c.UserID)
		return nil
	}
}

func (h *Hub) dropForRole(c *Client, event string) {
	h.logger.Printf("dropping %s from user %d: role %s not allowed", event, c.UserID, c.Role)
}

// handleUpdateLocation caches the fix and broadcasts it to the bus
// channel. The history write is best-effort: telemetry durability
// must not block live tracking.
func (h *Hub) handleUpdateLocation(ctx context.Context, c *Client, data json.RawMessage) error {
	var p updateLocationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad updateLocation payload: %w", err)
	}

	sample := registry.Sample{
		BusID:      p.BusID,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		SpeedKmh:   p.Speed,
		CapturedAt: time.Now().UTC(),
	}
	h.registry.Set(sample)

	if err := h.gateway.RecordLocationHistory(ctx, p.BusID, p.Latitude, p.Longitude, p.Speed); err != nil {
		h.logger.Printf("failed to record location history for bus %d: %v", p.BusID, err)
	}

	h.Broadcast(BusChannel(p.BusID), EventLocationUpdate, sample)
	return nil
}

func (h *Hub) handleStartTrip(ctx context.Context, data json.RawMessage) error {
	var p tripPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad startTrip payload: %w", err)
	}

	start := time.Now().UTC()
	if err := h.gateway.SetTripState(ctx, p.BusID, model.TripStatusRunning, &start); err != nil {
		return err
	}

	h.Broadcast(BusChannel(p.BusID), EventTripStarted, tripStartedEvent{BusID: p.BusID, StartTime: start})
	return nil
}

func (h *Hub) handleEndTrip(ctx context.Context, data json.RawMessage) error {
	var p tripPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad endTrip payload: %w", err)
	}

	if err := h.gateway.SetTripState(ctx, p.BusID, model.TripStatusWaiting, nil); err != nil {
		return err
	}
	h.registry.Clear(p.BusID)

	h.Broadcast(BusChannel(p.BusID), EventTripEnded, tripEndedEvent{BusID: p.BusID, EndTime: time.Now().UTC()})
	return nil
}

// handleBoarding records a board/alight event and notifies the child's
// parent on their personal channel only. Other parents subscribed to
// the same bus never see another child's boarding event.
func (h *Hub) handleBoarding(ctx context.Context, data json.RawMessage, typ string) error {
	var p boardingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad boarding payload: %w", err)
	}

	// The append comes first and stands on its own: the log survives
	// even when the roster lookup below fails.
	if err := h.gateway.AppendBoardingLog(ctx, p.ChildID, p.BusID, typ); err != nil {
		return err
	}

	cp, err := h.gateway.LookupChildParent(ctx, p.ChildID)
	if errors.Is(err, store.ErrNotFound) {
		h.logger.Printf("child %d not found, skipping notification", p.ChildID)
		return nil
	}
	if err != nil {
		return err
	}

	notif := boardingNotification(cp, p, typ)
	if err := h.gateway.CreateNotification(ctx, notif); err != nil {
		return err
	}
	if h.notifier != nil {
		h.notifier.Dispatch(notif.ID)
	}

	event := EventBoarded
	if typ == model.BoardingTypeAlight {
		event = EventAlighted
	}
	h.Broadcast(UserChannel(cp.ParentID), event, childEvent{
		ChildID:   p.ChildID,
		BusID:     p.BusID,
		ParentID:  cp.ParentID,
		ChildName: cp.ChildName,
		Time:      time.Now().UTC(),
	})
	return nil
}

func boardingNotification(cp store.ChildParent, p boardingPayload, typ string) *model.Notification {
	childID, busID := p.ChildID, p.BusID
	n := &model.Notification{
		UserID:  cp.ParentID,
		ChildID: &childID,
		BusID:   &busID,
	}
	if typ == model.BoardingTypeAlight {
		n.Type = model.NotificationKindAlight
		n.Title = "Alighting alert"
		n.Message = fmt.Sprintf("%s got off the bus.", cp.ChildName)
	} else {
		n.Type = model.NotificationKindBoard
		n.Title = "Boarding alert"
		n.Message = fmt.Sprintf("%s boarded the bus.", cp.ChildName)
	}
	return n
}

// handleSubscribeBus joins the parent to the bus channel and, when a
// location sample already exists, replays it to the subscriber only.
func (h *Hub) handleSubscribeBus(c *Client, data json.RawMessage) error {
	var p busPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad subscribeBus payload: %w", err)
	}

	h.Join(c, BusChannel(p.BusID))

	if sample, ok := h.registry.Get(p.BusID); ok {
		h.sendTo(c, EventLocationUpdate, sample)
	}
	return nil
}

func (h *Hub) handleUnsubscribeBus(c *Client, data json.RawMessage) error {
	var p busPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad unsubscribeBus payload: %w", err)
	}

	h.Leave(c, BusChannel(p.BusID))
	return nil
}

// handleEmergency logs the report and alerts everyone watching the
// bus, attaching the current location sample when one exists.
func (h *Hub) handleEmergency(ctx context.Context, c *Client, data json.RawMessage) error {
	var p emergencyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad emergency payload: %w", err)
	}

	if err := h.gateway.AppendEmergencyLog(ctx, p.BusID, c.UserID, p.Message); err != nil {
		return err
	}

	alert := emergencyAlertEvent{
		BusID:   p.BusID,
		Message: p.Message,
		Time:    time.Now().UTC(),
	}
	if sample, ok := h.registry.Get(p.BusID); ok {
		alert.Location = &sample
	}
	h.Broadcast(BusChannel(p.BusID), EventEmergencyAlert, alert)
	return nil
}
