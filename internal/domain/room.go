package domain

// RoomID is a caller-supplied room name. Rooms exist only while they have members.
type RoomID string
