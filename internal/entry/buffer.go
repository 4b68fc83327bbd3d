// Package entry accumulates keypad digits into a passcode candidate.
package entry

import (
	"fmt"

	"github.com/atinyakov/PassLock/internal/models"
)

// OverflowPolicy decides what happens when a digit arrives on a complete buffer.
type OverflowPolicy uint8

const (
	// OverflowReject drops the digit and leaves the buffer unchanged.
	OverflowReject OverflowPolicy = iota
	// OverflowRestart discards the complete entry and starts a new one with the digit.
	OverflowRestart
)

// ParseOverflowPolicy maps "reject" (or "") and "restart" to a policy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "reject":
		return OverflowReject, nil
	case "restart":
		return OverflowRestart, nil
	default:
		return OverflowReject, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// String returns the configuration name of the policy.
func (p OverflowPolicy) String() string {
	if p == OverflowRestart {
		return "restart"
	}
	return "reject"
}

// Buffer is the passcode under construction. Positions at or after the
// fill index are always Blank.
type Buffer struct {
	code   models.Passcode
	n      int
	policy OverflowPolicy
}

// NewBuffer returns an empty buffer using the given overflow policy.
func NewBuffer(policy OverflowPolicy) *Buffer {
	return &Buffer{code: models.BlankPasscode, policy: policy}
}

// Append writes d at the fill index. It returns false without changing the
// buffer when d is not a keypad digit, or when the buffer is complete and
// the policy is OverflowReject.
func (b *Buffer) Append(d models.Digit) bool {
	if !d.Valid() {
		return false
	}
	if b.IsComplete() {
		if b.policy != OverflowRestart {
			return false
		}
		b.Reset()
	}
	b.code[b.n] = d
	b.n++
	return true
}

// IsComplete reports whether all positions are filled.
func (b *Buffer) IsComplete() bool {
	return b.n == models.PasscodeLength
}

// Len returns the number of digits entered so far.
func (b *Buffer) Len() int {
	return b.n
}

// Reset blanks every position and rewinds the fill index.
func (b *Buffer) Reset() {
	b.code = models.BlankPasscode
	b.n = 0
}

// Snapshot returns a copy of the current contents.
func (b *Buffer) Snapshot() models.Passcode {
	return b.code
}

// Policy returns the overflow policy.
func (b *Buffer) Policy() OverflowPolicy {
	return b.policy
}
