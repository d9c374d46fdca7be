package domain

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Room RoomID
	User UserID
}

// Validate reports which identifier of a room-scoped event is missing, if any.
func (m Member) Validate() error {
	if m.Room == "" {
		return ErrMissingRoomID
	}
	if m.User == "" {
		return ErrMissingUserID
	}
	return nil
}
