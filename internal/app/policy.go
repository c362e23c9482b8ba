package app

import (
	"fmt"

	"github.com/dkeye/Speaker/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// ParseBackpressureAction maps the relay.on_backpressure config value.
func ParseBackpressureAction(s string) (BackpressureAction, error) {
	switch s {
	case "", "none":
		return NoAction, nil
	case "kick":
		return KickMember, nil
	default:
		return NoAction, fmt.Errorf("unknown backpressure action %q", s)
	}
}

type Policy interface {
	OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(core.RoomService, core.MemberSession) BackpressureAction {
	return p.Action
}
