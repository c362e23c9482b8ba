package domain

import "time"

// Member represents a connection's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	ClientToken string
	RemoteAddr  string
	JoinedAt    time.Time
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(clientToken, remoteAddr string) *Member {
	return &Member{
		ClientToken: clientToken,
		RemoteAddr:  remoteAddr,
		JoinedAt:    time.Now(),
	}
}
