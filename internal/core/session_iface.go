package core

// SessionID is the opaque server-assigned identity of one live connection.
// It is stable for the lifetime of the connection and never reused.
type SessionID string
