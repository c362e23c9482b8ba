package core

import (
	"slices"
	"sync"

	"github.com/dkeye/Speaker/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomMember struct {
	sid SessionID
	ms  MemberSession
}

// roomImpl is a threadsafe in-memory room.
// Members are kept in join order; broadcast walks them in that order.
// It never closes adapter-owned resources.
type roomImpl struct {
	room    *domain.Room
	mu      sync.RWMutex
	members []roomMember
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{room: room}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) HasMember(sid SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(sid) >= 0
}

// AddMember appends without a duplicate check; callers admit a session once.
func (r *roomImpl) AddMember(sid SessionID, ms MemberSession) {
	r.mu.Lock()
	r.members = append(r.members, roomMember{sid: sid, ms: ms})
	n := len(r.members)
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Int("members", n).Msg("member added")
}

func (r *roomImpl) RemoveMember(sid SessionID) {
	r.mu.Lock()
	i := r.indexOf(sid)
	if i >= 0 {
		r.members = slices.Delete(r.members, i, i+1)
	}
	n := len(r.members)
	r.mu.Unlock()
	if i < 0 {
		return
	}
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Int("members", n).Msg("member removed")
}

// Broadcast sends data to every member in join order, one after another.
// A failed send is reported in Dropped and does not stop the fan-out;
// removing the failed member is left to its own read loop.
func (r *roomImpl) Broadcast(from SessionID, data Frame, opts BroadcastOptions) PublishResult {
	r.mu.RLock()
	snapshot := slices.Clone(r.members)
	r.mu.RUnlock()

	res := PublishResult{}
	for _, m := range snapshot {
		if opts.SkipSender && m.sid == from {
			continue
		}
		if err := m.ms.Signal().TrySend(data); err != nil {
			log.Debug().Err(err).Str("module", "core.room").Str("sid", string(m.sid)).Msg("send failed")
			res.Dropped = append(res.Dropped, m.ms)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.members))
	for _, m := range r.members {
		meta := m.ms.Meta()
		out = append(out, MemberDTO{
			SID:         m.sid,
			ClientToken: meta.ClientToken,
			RemoteAddr:  meta.RemoteAddr,
			JoinedAt:    meta.JoinedAt,
		})
	}
	return out
}

// indexOf must be called with r.mu held.
func (r *roomImpl) indexOf(sid SessionID) int {
	return slices.IndexFunc(r.members, func(m roomMember) bool { return m.sid == sid })
}
