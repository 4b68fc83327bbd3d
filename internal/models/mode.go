package models

// Mode is the operating mode of the device.
type Mode uint8

const (
	// ModeCheck validates an entered passcode against the master and the store.
	ModeCheck Mode = iota + 1
	// ModeSet registers a new passcode in the store.
	ModeSet
	// ModeRemove revokes a stored passcode.
	ModeRemove
)

// DefaultMode is the mode at startup and after a reset.
const DefaultMode = ModeCheck

// Next returns the mode that follows m in the toggle cycle
// Check -> Set -> Remove -> Check. Unknown values fall back to DefaultMode.
func (m Mode) Next() Mode {
	switch m {
	case ModeCheck:
		return ModeSet
	case ModeSet:
		return ModeRemove
	case ModeRemove:
		return ModeCheck
	default:
		return DefaultMode
	}
}

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeCheck:
		return "check"
	case ModeSet:
		return "set"
	case ModeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of evaluating a completed entry.
type Verdict uint8

const (
	// VerdictNone means no evaluation took place.
	VerdictNone Verdict = iota
	// VerdictAccept means the entry was valid for the current mode.
	VerdictAccept
	// VerdictReject means the entry was refused.
	VerdictReject
)

// String returns a human-readable verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "accept"
	case VerdictReject:
		return "reject"
	default:
		return "none"
	}
}

// ParseVerdict maps "accept", "reject" and "none" (or "") to a Verdict.
func ParseVerdict(s string) (Verdict, bool) {
	switch s {
	case "accept":
		return VerdictAccept, true
	case "reject":
		return VerdictReject, true
	case "", "none":
		return VerdictNone, true
	default:
		return VerdictNone, false
	}
}
