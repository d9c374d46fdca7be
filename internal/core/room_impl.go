package core

import (
	"slices"

	"github.com/dkeye/Huddle/internal/domain"
)

// Room is one membership set keyed by connection.
// It is not safe for concurrent use; the owning table serializes access.
type Room struct {
	id    domain.RoomID
	bySID map[SessionID]domain.UserID
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		id:    id,
		bySID: make(map[SessionID]domain.UserID),
	}
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) MemberCount() int { return len(r.bySID) }

// Add records sid with its user label. Re-adding updates the label only.
func (r *Room) Add(sid SessionID, user domain.UserID) bool {
	_, existed := r.bySID[sid]
	r.bySID[sid] = user
	return !existed
}

func (r *Room) Remove(sid SessionID) bool {
	if _, ok := r.bySID[sid]; !ok {
		return false
	}
	delete(r.bySID, sid)
	return true
}

func (r *Room) Has(sid SessionID) bool {
	_, ok := r.bySID[sid]
	return ok
}

// Members returns member ids in a stable order.
func (r *Room) Members() []SessionID {
	out := make([]SessionID, 0, len(r.bySID))
	for sid := range r.bySID {
		out = append(out, sid)
	}
	slices.Sort(out)
	return out
}

func (r *Room) MembersSnapshot() []MemberDTO {
	out := make([]MemberDTO, 0, len(r.bySID))
	for _, sid := range r.Members() {
		out = append(out, MemberDTO{SID: sid, User: r.bySID[sid]})
	}
	return out
}
