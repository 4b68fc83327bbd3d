// Package models defines the core value types of the passcode device:
// digits, passcodes, operating modes and verdicts.
package models

import (
	"errors"
	"strings"
)

// PasscodeLength is the number of digits in every passcode.
const PasscodeLength = 4

// Digit is a single keypad digit in [0,9].
type Digit uint8

// Blank marks an empty passcode slot. It is never a valid keypad value.
const Blank Digit = 0xF

// Valid reports whether d is a keypad digit (0-9).
func (d Digit) Valid() bool {
	return d <= 9
}

var (
	// ErrInvalidLength is returned when a passcode string is not PasscodeLength digits long.
	ErrInvalidLength = errors.New("passcode must have exactly 4 digits")

	// ErrInvalidDigit is returned when a passcode string contains a non-digit character.
	ErrInvalidDigit = errors.New("passcode contains a non-digit character")
)

// Passcode is a fixed-length sequence of digits. Position 0 is the
// left-most (most significant) digit on the display.
type Passcode [PasscodeLength]Digit

// BlankPasscode has every position set to Blank.
var BlankPasscode = Passcode{Blank, Blank, Blank, Blank}

// MasterPasscode is always accepted in Check mode and can never be stored or removed.
var MasterPasscode = Passcode{0, 0, 0, 0}

// ParsePasscode converts a string such as "1234" into a Passcode.
func ParsePasscode(s string) (Passcode, error) {
	var p Passcode
	if len(s) != PasscodeLength {
		return BlankPasscode, ErrInvalidLength
	}
	for i := 0; i < PasscodeLength; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return BlankPasscode, ErrInvalidDigit
		}
		p[i] = Digit(c - '0')
	}
	return p, nil
}

// IsComplete reports whether no position holds Blank.
func (p Passcode) IsComplete() bool {
	for _, d := range p {
		if d == Blank {
			return false
		}
	}
	return true
}

// IsMaster reports whether p equals MasterPasscode.
func (p Passcode) IsMaster() bool {
	return p == MasterPasscode
}

// String renders the passcode with blank slots as '-'.
func (p Passcode) String() string {
	var b strings.Builder
	b.Grow(PasscodeLength)
	for _, d := range p {
		if d.Valid() {
			b.WriteByte('0' + byte(d))
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
