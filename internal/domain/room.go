// Package domain contains entity without logic, just meta-data
package domain

import "errors"

var ErrRoomIDEmpty = errors.New("room id empty")

type RoomID string

// Room is the static description of a configured room.
// Secrets are owned by the config layer and never change at runtime.
type Room struct {
	ID      RoomID
	Secrets []string
}

func (id RoomID) Validate() error {
	if len(id) == 0 {
		return ErrRoomIDEmpty
	}
	return nil
}
