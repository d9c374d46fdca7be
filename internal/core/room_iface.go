package core

import (
	"github.com/dkeye/Huddle/internal/domain"
)

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	SID  SessionID     `json:"sid"`
	User domain.UserID `json:"user"`
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

// RoomManager is the room membership table. It keeps room -> connections and
// connection -> rooms consistent; every method is atomic on its own.
type RoomManager interface {
	// Join adds sid to room, creating the room if needed, and records user as
	// its label. It reports whether sid was not a member before.
	Join(room domain.RoomID, sid SessionID, user domain.UserID) bool
	// Leave removes sid from room. It reports whether sid was a member.
	Leave(room domain.RoomID, sid SessionID) bool
	// LeaveAll removes sid from every room and returns the rooms it left.
	LeaveAll(sid SessionID) []domain.RoomID

	MembersOf(room domain.RoomID) []SessionID
	MembersSnapshot(room domain.RoomID) []MemberDTO
	RoomsOf(sid SessionID) []domain.RoomID
	List() []RoomInfo
}
