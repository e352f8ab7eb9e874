package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labbooking/internal/domain"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestNormalizeEvent_Defaults(t *testing.T) {
	e := NormalizeEvent(map[string]any{})

	assert.Equal(t, domain.DefaultEventTitle, e.Title)
	assert.Equal(t, domain.UnknownLocation, e.Location)
	assert.Equal(t, 0, e.BookingCount)
	assert.NotNil(t, e.RoomSlots)
	assert.Empty(t, e.RoomSlots)
	assert.Equal(t, domain.EventStatusPending, e.Status)
	assert.Nil(t, e.Capacity)
}

func TestNormalizeEvent_NilInput(t *testing.T) {
	assert.NotPanics(t, func() {
		e := NormalizeEvent(nil)
		assert.Equal(t, domain.DefaultEventTitle, e.Title)
	})
}

func TestNormalizeEvent_MixedCasing(t *testing.T) {
	raw := decode(t, `{
		"Id": "E1",
		"title": "Robotics Workshop",
		"Title": "ignored",
		"Status": "Active",
		"StartDate": "2026-03-01T09:00:00",
		"endDate": "2026-03-01T11:30:00Z",
		"Capacity": 30,
		"BookingCount": 4,
		"CreatedBy": {"FullName": "Dr. Tran"},
		"RoomSlots": [{"RoomId": "R1", "RoomName": "Lab A101", "Capacity": 20}]
	}`)

	e := NormalizeEvent(raw)

	assert.Equal(t, "E1", e.ID)
	assert.Equal(t, "Robotics Workshop", e.Title, "camelCase wins over PascalCase")
	assert.Equal(t, domain.EventStatusActive, e.Status)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), e.StartDate)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 30, 0, 0, time.UTC), e.EndDate)
	require.NotNil(t, e.Capacity)
	assert.Equal(t, 30, *e.Capacity)
	assert.Equal(t, 4, e.BookingCount)
	assert.Equal(t, "Dr. Tran", e.CreatedBy)
	require.Len(t, e.RoomSlots, 1)
	assert.Equal(t, "R1", e.RoomSlots[0].RoomID)
	assert.Equal(t, "Lab A101", e.Location)
}

func TestNormalizeEvent_StatusCodesAndIDs(t *testing.T) {
	raw := decode(t, `{"id": 42, "status": 3, "createdAt": 1767225600000}`)

	e := NormalizeEvent(raw)

	assert.Equal(t, "42", e.ID)
	assert.Equal(t, domain.EventStatusCancelled, e.Status)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), e.CreatedAt)
}

func TestNormalizeEvent_LocationFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"explicit location", `{"location": "Hall B", "roomName": "R", "labName": "L", "roomSlots": [{"roomName": "S"}]}`, "Hall B"},
		{"room name", `{"roomName": "R", "labName": "L", "roomSlots": [{"roomName": "S"}]}`, "R"},
		{"lab name", `{"labName": "L", "roomSlots": [{"roomName": "S"}]}`, "L"},
		{"first slot only", `{"roomSlots": [{"roomName": "Lab A101"}]}`, "Lab A101"},
		{"blank location skipped", `{"location": "  ", "labName": "L"}`, "L"},
		{"nothing", `{}`, domain.UnknownLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEvent(decode(t, tt.raw)).Location)
		})
	}
}

func TestNormalizeEvent_NestedRoomSlots(t *testing.T) {
	raw := decode(t, `{"roomSlots": [
		{"room": {"id": "R7", "name": "Chem Lab", "capacity": 12}},
		{"roomId": "R8", "room": {"id": "other", "name": "Bio Lab"}},
		"garbage",
		{}
	]}`)

	e := NormalizeEvent(raw)

	require.Len(t, e.RoomSlots, 2)
	assert.Equal(t, domain.RoomSlot{RoomID: "R7", RoomName: "Chem Lab", Capacity: intPtr(12)}, e.RoomSlots[0])
	assert.Equal(t, "R8", e.RoomSlots[1].RoomID, "flat field wins over nested room")
	assert.Equal(t, "Bio Lab", e.RoomSlots[1].RoomName)
}

func TestNormalizeEvent_Idempotent(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"id": "E1", "Title": "Chem", "status": 1, "capacity": 2, "bookingCount": 1, "roomSlots": [{"roomId": "R1"}]}`,
		`{"Id": 9, "StartDate": "2026-05-01T08:00:00.123", "EndDate": "2026-05-01T10:00:00+07:00", "labName": "Lab C"}`,
		`{"title": "x", "roomSlots": [{"roomName": "Lab A101"}], "createdBy": "admin", "visibility": false}`,
		`{"status": "bogus", "bookingCount": -3, "capacity": "12"}`,
	}
	for _, in := range inputs {
		first := NormalizeEvent(decode(t, in))
		second := NormalizeEvent(EventToRaw(first))
		assert.Equal(t, first, second, "input %s", in)
	}
}

func TestNormalizeEvent_DoesNotMutateInput(t *testing.T) {
	raw := decode(t, `{"status": "Active", "roomSlots": [{"roomName": "Lab A101"}]}`)
	before := decode(t, `{"status": "Active", "roomSlots": [{"roomName": "Lab A101"}]}`)

	_ = NormalizeEvent(raw)
	_ = NormalizeEvent(raw)

	assert.Equal(t, before, raw)
}

func TestNormalizeBooking(t *testing.T) {
	raw := decode(t, `{
		"Id": "B1",
		"EventId": "E1",
		"room": {"id": "R2", "name": "Lab B"},
		"user": {"id": "U1", "fullName": "Nguyen Van A"},
		"Status": 1,
		"StartTime": "2026-03-01T09:00:00Z",
		"EndTime": "2026-03-01T11:00:00Z"
	}`)

	b := NormalizeBooking(raw)

	assert.Equal(t, "B1", b.ID)
	assert.Equal(t, "E1", b.EventID)
	assert.Equal(t, "R2", b.RoomID)
	assert.Equal(t, "Lab B", b.RoomName)
	assert.Equal(t, "U1", b.UserID)
	assert.Equal(t, "Nguyen Van A", b.UserName)
	assert.Equal(t, domain.BookingStatusApproved, b.Status)
	assert.True(t, b.EndTime.After(b.StartTime))
}

func TestNormalizeBooking_StatusByName(t *testing.T) {
	assert.Equal(t, domain.BookingStatusRejected, NormalizeBooking(map[string]any{"status": "rejected"}).Status)
	assert.Equal(t, domain.BookingStatusPending, NormalizeBooking(map[string]any{"status": 99}).Status)
}

func intPtr(n int) *int { return &n }
