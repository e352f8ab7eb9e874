package normalize

import (
	"strings"

	"labbooking/internal/domain"
)

// NormalizeEvent converts one raw backend record into the canonical Event.
// It never fails: missing or malformed fields resolve to their defaults.
func NormalizeEvent(raw map[string]any) domain.Event {
	e := domain.Event{
		ID:           str(raw, "id", "eventId"),
		Title:        str(raw, "title", "name"),
		Description:  str(raw, "description"),
		RoomName:     str(raw, "roomName"),
		LabName:      str(raw, "labName"),
		StartDate:    timeField(raw, "startDate", "startTime"),
		EndDate:      timeField(raw, "endDate", "endTime"),
		Status:       eventStatus(raw),
		Visibility:   boolOf(raw, "visibility", true),
		Capacity:     optInt(raw, "capacity", "maxParticipants"),
		BookingCount: bookingCount(raw),
		RoomSlots:    roomSlots(raw),
		CreatedBy:    createdBy(raw),
		CreatedAt:    timeField(raw, "createdAt"),
	}
	if e.Title == "" {
		e.Title = domain.DefaultEventTitle
	}
	e.Location = resolveLocation(raw, &e)
	return e
}

// NormalizeEvents normalizes each record, preserving order.
func NormalizeEvents(raws []map[string]any) []domain.Event {
	out := make([]domain.Event, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeEvent(r))
	}
	return out
}

// resolveLocation picks location, roomName, labName, then the first slot's room name.
func resolveLocation(raw map[string]any, e *domain.Event) string {
	if loc := str(raw, "location"); loc != "" {
		return loc
	}
	if e.RoomName != "" {
		return e.RoomName
	}
	if e.LabName != "" {
		return e.LabName
	}
	if len(e.RoomSlots) > 0 && e.RoomSlots[0].RoomName != "" {
		return e.RoomSlots[0].RoomName
	}
	return domain.UnknownLocation
}

func eventStatus(raw map[string]any) domain.EventStatus {
	v, ok := lookup(raw, "status")
	if !ok {
		return domain.EventStatusPending
	}
	if s, ok := v.(string); ok {
		if st, ok := domain.ParseEventStatus(s); ok {
			return st
		}
	}
	if n, ok := intOf(v); ok && domain.EventStatus(n).Valid() {
		return domain.EventStatus(n)
	}
	return domain.EventStatusPending
}

func bookingCount(raw map[string]any) int {
	if n := optInt(raw, "bookingCount", "registeredCount", "participantCount"); n != nil && *n > 0 {
		return *n
	}
	return 0
}

func roomSlots(raw map[string]any) []domain.RoomSlot {
	v, _ := lookupAny(raw, "roomSlots", "rooms")
	items := list(v)
	slots := make([]domain.RoomSlot, 0, len(items))
	for _, item := range items {
		m, ok := object(item)
		if !ok {
			continue
		}
		slot := domain.RoomSlot{
			RoomID:   str(m, "roomId", "roomID"),
			RoomName: str(m, "roomName"),
			Capacity: optInt(m, "capacity"),
		}
		// Some endpoints nest the room instead of flattening it onto the slot.
		if nested, ok := lookup(m, "room"); ok {
			if room, ok := object(nested); ok {
				if slot.RoomID == "" {
					slot.RoomID = str(room, "id", "roomId")
				}
				if slot.RoomName == "" {
					slot.RoomName = str(room, "name", "roomName")
				}
				if slot.Capacity == nil {
					slot.Capacity = optInt(room, "capacity")
				}
			}
		}
		if slot.RoomID == "" && slot.RoomName == "" {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

func createdBy(raw map[string]any) string {
	if v, ok := lookup(raw, "createdBy"); ok {
		if m, ok := object(v); ok {
			return str(m, "fullName", "name", "email", "id")
		}
		if s, ok := stringOf(v); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return str(raw, "createdByName", "creatorName")
}

// EventToRaw renders e as a camelCase backend record.
// NormalizeEvent(EventToRaw(e)) == e for any e produced by NormalizeEvent.
func EventToRaw(e domain.Event) map[string]any {
	slots := make([]any, 0, len(e.RoomSlots))
	for _, s := range e.RoomSlots {
		slot := map[string]any{"roomId": s.RoomID, "roomName": s.RoomName}
		if s.Capacity != nil {
			slot["capacity"] = *s.Capacity
		}
		slots = append(slots, slot)
	}
	raw := map[string]any{
		"id":           e.ID,
		"title":        e.Title,
		"description":  e.Description,
		"location":     e.Location,
		"roomName":     e.RoomName,
		"labName":      e.LabName,
		"startDate":    formatTime(e.StartDate),
		"endDate":      formatTime(e.EndDate),
		"status":       e.Status.String(),
		"visibility":   e.Visibility,
		"bookingCount": e.BookingCount,
		"roomSlots":    slots,
		"createdBy":    e.CreatedBy,
		"createdAt":    formatTime(e.CreatedAt),
	}
	if e.Capacity != nil {
		raw["capacity"] = *e.Capacity
	}
	return raw
}
