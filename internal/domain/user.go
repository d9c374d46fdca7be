// Package domain contains entity without logic, just meta-data
package domain

import "errors"

var (
	ErrMissingRoomID = errors.New("room id missing")
	ErrMissingUserID = errors.New("user id missing")
)

// UserID is an application-level label broadcast to peers. It is never used for routing
// and its uniqueness is not checked.
type UserID string
