package normalize

import "labbooking/internal/domain"

// NormalizeBooking converts one raw backend booking into the canonical Booking.
func NormalizeBooking(raw map[string]any) domain.Booking {
	b := domain.Booking{
		ID:        str(raw, "id", "bookingId"),
		EventID:   str(raw, "eventId", "eventID"),
		RoomID:    str(raw, "roomId", "roomID"),
		RoomName:  str(raw, "roomName"),
		UserID:    str(raw, "userId", "userID"),
		UserName:  str(raw, "userName", "fullName"),
		Status:    bookingStatus(raw),
		StartTime: timeField(raw, "startTime", "startDate"),
		EndTime:   timeField(raw, "endTime", "endDate"),
		Note:      str(raw, "note", "notes"),
		CreatedAt: timeField(raw, "createdAt"),
	}
	if v, ok := lookup(raw, "room"); ok {
		if room, ok := object(v); ok {
			if b.RoomID == "" {
				b.RoomID = str(room, "id")
			}
			if b.RoomName == "" {
				b.RoomName = str(room, "name", "roomName")
			}
		}
	}
	if v, ok := lookup(raw, "user"); ok {
		if user, ok := object(v); ok {
			if b.UserID == "" {
				b.UserID = str(user, "id")
			}
			if b.UserName == "" {
				b.UserName = str(user, "fullName", "name", "email")
			}
		}
	}
	return b
}

// NormalizeBookings normalizes each record, preserving order.
func NormalizeBookings(raws []map[string]any) []domain.Booking {
	out := make([]domain.Booking, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeBooking(r))
	}
	return out
}

func bookingStatus(raw map[string]any) domain.BookingStatus {
	v, ok := lookup(raw, "status")
	if !ok {
		return domain.BookingStatusPending
	}
	if s, ok := v.(string); ok {
		if st, ok := domain.ParseBookingStatus(s); ok {
			return st
		}
	}
	if n, ok := intOf(v); ok && n >= int(domain.BookingStatusPending) && n <= int(domain.BookingStatusCompleted) {
		return domain.BookingStatus(n)
	}
	return domain.BookingStatusPending
}
