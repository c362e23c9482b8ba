package core

import (
	"slices"
	"strings"

	"github.com/dkeye/Speaker/internal/domain"
)

// roomManager is built once from configuration and is read-only afterwards,
// so lookups need no locking.
type roomManager struct {
	rooms map[domain.RoomID]RoomService
	order []domain.RoomID
}

func NewRoomManager(rooms []domain.Room) RoomManager {
	m := &roomManager{rooms: make(map[domain.RoomID]RoomService, len(rooms))}
	for i := range rooms {
		room := rooms[i]
		if _, dup := m.rooms[room.ID]; dup {
			continue
		}
		m.rooms[room.ID] = NewRoomService(&room)
		m.order = append(m.order, room.ID)
	}
	slices.SortFunc(m.order, func(a, b domain.RoomID) int { return strings.Compare(string(a), string(b)) })
	return m
}

func (m *roomManager) Get(id domain.RoomID) (RoomService, bool) {
	r, ok := m.rooms[id]
	return r, ok
}

func (m *roomManager) List() []RoomInfo {
	out := make([]RoomInfo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, RoomInfo{ID: id, MemberCount: m.rooms[id].MemberCount()})
	}
	return out
}
