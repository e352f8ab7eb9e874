package services

import (
	"strings"

	"labbooking/internal/domain"
)

// RegistrationTarget is the outcome of resolving an event's room slots.
type RegistrationTarget struct {
	Allowed bool
	// Reason is set when Allowed is false.
	Reason error
	// Rooms are the unique rooms a booking may bind to, in slot order.
	Rooms []domain.RoomSlot
	// Selected is the auto-selected room ID for single-room events; empty otherwise.
	Selected string
}

// RequiresSelection reports whether the user must pick a room before confirming.
func (t RegistrationTarget) RequiresSelection() bool {
	return t.Allowed && len(t.Rooms) > 1
}

// ResolveRegistrationTarget decides whether an event can be registered for and which room a booking binds to.
// An event without room slots is not configured and cannot be registered for.
func ResolveRegistrationTarget(event domain.Event) RegistrationTarget {
	rooms := uniqueRooms(event.RoomSlots)
	if len(rooms) == 0 {
		return RegistrationTarget{Allowed: false, Reason: domain.ErrNotConfigured, Rooms: rooms}
	}
	target := RegistrationTarget{Allowed: true, Rooms: rooms}
	if len(rooms) == 1 {
		target.Selected = rooms[0].RoomID
	}
	return target
}

// uniqueRooms dedupes slots by room ID (case-insensitive, first occurrence wins).
func uniqueRooms(slots []domain.RoomSlot) []domain.RoomSlot {
	seen := make(map[string]struct{}, len(slots))
	rooms := make([]domain.RoomSlot, 0, len(slots))
	for _, s := range slots {
		id := strings.TrimSpace(s.RoomID)
		if id == "" {
			continue
		}
		key := strings.ToLower(id)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rooms = append(rooms, s)
	}
	return rooms
}

// findRoom returns the room in rooms matching roomID, case-insensitively.
func findRoom(rooms []domain.RoomSlot, roomID string) (domain.RoomSlot, bool) {
	for _, r := range rooms {
		if strings.EqualFold(strings.TrimSpace(r.RoomID), strings.TrimSpace(roomID)) {
			return r, true
		}
	}
	return domain.RoomSlot{}, false
}
