package app

import (
	"errors"

	"github.com/dkeye/Speaker/internal/core"
	"github.com/dkeye/Speaker/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownRoom    = errors.New("unknown room")
	ErrUnknownSession = errors.New("unknown session")
)

type Orchestrator struct {
	Registry *Registry
	Rooms    core.RoomManager
	Policy   Policy
	// EchoToSender delivers a token back to the member that sent it.
	EchoToSender bool
}

// Join admits a bound session into a room, leaving any room it was in before.
func (o *Orchestrator) Join(sid core.SessionID, roomID domain.RoomID) error {
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return ErrUnknownRoom
	}
	session, ok := o.Registry.GetSession(sid)
	if !ok {
		return ErrUnknownSession
	}
	if prev, _, ok := o.Registry.RoomOf(sid); ok {
		o.leave(sid)
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("from_room", string(prev)).Msg("left previous room")
	}
	room.AddMember(sid, session)
	o.Registry.UpdateRoom(sid, roomID)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("added to room")
	return nil
}

// OnFrame relays a token from sid to its room.
func (o *Orchestrator) OnFrame(sid core.SessionID, data core.Frame) core.PublishResult {
	roomID, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return core.PublishResult{}
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return core.PublishResult{}
	}

	res := room.Broadcast(sid, data, core.BroadcastOptions{SkipSender: !o.EchoToSender})
	if o.Policy == nil {
		return res
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case KickMember:
			log.Warn().Str("module", "app.orch").Str("room", string(roomID)).Str("remote", slow.Meta().RemoteAddr).Msg("kicking slow member")
			slow.Signal().Close()
		case NoAction:
		}
	}
	return res
}

// KickBySID cancels the session and closes its transport. Membership is
// dropped by the session's read loop once it observes the closed connection.
func (o *Orchestrator) KickBySID(sid core.SessionID) bool {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return false
	}
	o.Registry.Cancel(sid)
	sess.Signal().Close()
	return true
}

// OnDisconnect is the single cleanup path for a dead connection.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.leave(sid)
	o.Registry.Unbind(sid)
}

func (o *Orchestrator) leave(sid core.SessionID) {
	roomID, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	if room, ok := o.Rooms.Get(roomID); ok {
		room.RemoveMember(sid)
	}
	o.Registry.RemoveRoom(sid)
}

// EvictRoom kicks every member of a room; the room itself stays configured.
func (o *Orchestrator) EvictRoom(id domain.RoomID) int {
	snaps := o.Registry.MembersOfRoom(id)
	for _, snap := range snaps {
		o.KickBySID(snap.SID)
	}
	return len(snaps)
}
