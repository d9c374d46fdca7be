//go:generate mockgen -source=signal_iface.go -destination=mocks/mock_signal.go -package=mocks

package core

import "errors"

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Frame is a raw encoded event.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues f without blocking. It returns ErrBackpressure when the
	// outbound queue is full and ErrConnClosed after Close.
	TrySend(f Frame) error
	Close()
}
