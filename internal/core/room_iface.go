package core

import (
	"time"

	"github.com/dkeye/Speaker/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// BroadcastOptions tunes a single fan-out.
type BroadcastOptions struct {
	// SkipSender keeps the frame away from the member that produced it.
	SkipSender bool
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	SID         SessionID `json:"sid"`
	ClientToken string    `json:"client_token"`
	RemoteAddr  string    `json:"remote_addr"`
	JoinedAt    time.Time `json:"joined_at"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO
	HasMember(sid SessionID) bool

	AddMember(sid SessionID, ms MemberSession)
	RemoveMember(sid SessionID)
	Broadcast(from SessionID, data Frame, opts BroadcastOptions) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

// RoomManager holds the fixed set of rooms created at startup.
type RoomManager interface {
	Get(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
}
