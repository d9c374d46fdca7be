package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManagerImpl is the in-memory membership table. Both directions of the
// room <-> connection mapping change under one lock.
type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*core.Room
	bySID map[core.SessionID]map[domain.RoomID]struct{}
}

func NewRoomManager() *RoomManagerImpl {
	return &RoomManagerImpl{
		rooms: make(map[domain.RoomID]*core.Room),
		bySID: make(map[core.SessionID]map[domain.RoomID]struct{}),
	}
}

var _ core.RoomManager = (*RoomManagerImpl)(nil)

func (f *RoomManagerImpl) Join(id domain.RoomID, sid core.SessionID, user domain.UserID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[id]
	if !ok {
		room = core.NewRoom(id)
		f.rooms[id] = room
		log.Debug().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	}
	added := room.Add(sid, user)

	joined, ok := f.bySID[sid]
	if !ok {
		joined = make(map[domain.RoomID]struct{})
		f.bySID[sid] = joined
	}
	joined[id] = struct{}{}

	if added {
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("sid", string(sid)).Str("user", string(user)).Msg("member added")
	}
	return added
}

func (f *RoomManagerImpl) Leave(id domain.RoomID, sid core.SessionID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leaveLocked(id, sid)
}

func (f *RoomManagerImpl) leaveLocked(id domain.RoomID, sid core.SessionID) bool {
	room, ok := f.rooms[id]
	if !ok || !room.Remove(sid) {
		return false
	}
	if room.MemberCount() == 0 {
		delete(f.rooms, id)
		log.Debug().Str("module", "app.rooms").Str("room", string(id)).Msg("room discarded (empty)")
	}
	if joined, ok := f.bySID[sid]; ok {
		delete(joined, id)
		if len(joined) == 0 {
			delete(f.bySID, sid)
		}
	}
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("sid", string(sid)).Msg("member removed")
	return true
}

func (f *RoomManagerImpl) LeaveAll(sid core.SessionID) []domain.RoomID {
	f.mu.Lock()
	defer f.mu.Unlock()

	left := make([]domain.RoomID, 0, len(f.bySID[sid]))
	for id := range f.bySID[sid] {
		left = append(left, id)
	}
	slices.Sort(left)
	for _, id := range left {
		f.leaveLocked(id, sid)
	}
	return left
}

func (f *RoomManagerImpl) MembersOf(id domain.RoomID) []core.SessionID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil
	}
	return room.Members()
}

func (f *RoomManagerImpl) MembersSnapshot(id domain.RoomID) []core.MemberDTO {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	if !ok {
		return []core.MemberDTO{}
	}
	return room.MembersSnapshot()
}

func (f *RoomManagerImpl) RoomsOf(sid core.SessionID) []domain.RoomID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(f.bySID[sid]))
	for id := range f.bySID[sid] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for id, r := range f.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}
