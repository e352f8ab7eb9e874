package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"labbooking/internal/domain"
)

func TestResolveRegistrationTarget(t *testing.T) {
	tests := []struct {
		name          string
		slots         []domain.RoomSlot
		wantAllowed   bool
		wantRooms     []string
		wantSelected  string
		wantSelection bool
	}{
		{
			name:        "no slots",
			slots:       nil,
			wantAllowed: false,
		},
		{
			name:        "slots without ids are ignored",
			slots:       []domain.RoomSlot{{RoomName: "Lab A"}, {RoomID: "  "}},
			wantAllowed: false,
		},
		{
			name:         "single room auto-selected",
			slots:        []domain.RoomSlot{{RoomID: "R1", RoomName: "Lab A"}},
			wantAllowed:  true,
			wantRooms:    []string{"R1"},
			wantSelected: "R1",
		},
		{
			name:         "duplicates collapse to one room",
			slots:        []domain.RoomSlot{{RoomID: "R1"}, {RoomID: "r1"}},
			wantAllowed:  true,
			wantRooms:    []string{"R1"},
			wantSelected: "R1",
		},
		{
			name:          "multiple rooms need a choice",
			slots:         []domain.RoomSlot{{RoomID: "R2"}, {RoomName: "orphan"}, {RoomID: "R1"}, {RoomID: "R2"}},
			wantAllowed:   true,
			wantRooms:     []string{"R2", "R1"},
			wantSelection: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := ResolveRegistrationTarget(domain.Event{ID: "E1", RoomSlots: tt.slots})

			assert.Equal(t, tt.wantAllowed, target.Allowed)
			if !tt.wantAllowed {
				assert.ErrorIs(t, target.Reason, domain.ErrNotConfigured)
				assert.False(t, target.RequiresSelection())
				return
			}
			assert.NoError(t, target.Reason)
			ids := make([]string, 0, len(target.Rooms))
			for _, r := range target.Rooms {
				ids = append(ids, r.RoomID)
			}
			assert.Equal(t, tt.wantRooms, ids)
			assert.Equal(t, tt.wantSelected, target.Selected)
			assert.Equal(t, tt.wantSelection, target.RequiresSelection())
		})
	}
}
