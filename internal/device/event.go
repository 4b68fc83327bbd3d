package device

import (
	"github.com/atinyakov/PassLock/internal/models"
	"github.com/atinyakov/PassLock/internal/service"
)

// EventKind identifies what a tick did.
type EventKind uint8

const (
	// EventIdle means no input edge was seen.
	EventIdle EventKind = iota
	// EventResetHeld means the reset button is down and outputs are blanked.
	EventResetHeld
	// EventReset means the reset button was released and the device was reset.
	EventReset
	// EventMode means the mode button was pressed.
	EventMode
	// EventDigit means a keypad digit was pressed.
	EventDigit
)

// String returns a human-readable event name.
func (k EventKind) String() string {
	switch k {
	case EventResetHeld:
		return "reset-held"
	case EventReset:
		return "reset"
	case EventMode:
		return "mode"
	case EventDigit:
		return "digit"
	default:
		return "idle"
	}
}

// Event is the outcome of one tick.
type Event struct {
	Kind EventKind
	// Mode is the mode after the tick.
	Mode models.Mode
	// Digit is the keypad digit for EventDigit.
	Digit models.Digit
	// Appended reports whether the digit was taken by the entry buffer.
	Appended bool
	// Entered is the number of digits in the buffer after the tick.
	Entered int
	// Evaluated reports whether the tick completed an entry.
	Evaluated bool
	// Verdict and Effect are set when Evaluated is true.
	Verdict models.Verdict
	Effect  service.Effect
	// Stored is the store size after the tick.
	Stored int
}
