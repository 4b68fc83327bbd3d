package panel

import (
	"time"

	"github.com/atinyakov/PassLock/internal/models"
)

// EncodeRegister packs a passcode into the 16-bit value written to the
// seven-segment display peripheral: one nibble per digit, position 0 in the
// high nibble, 0xF for a blank digit.
func EncodeRegister(code models.Passcode) uint16 {
	var v uint16
	for _, d := range code {
		n := uint16(d)
		if !d.Valid() {
			n = uint16(models.Blank)
		}
		v = v<<4 | n
	}
	return v
}

// DecodeRegister is the inverse of EncodeRegister. Nibbles above 9 decode
// to models.Blank.
func DecodeRegister(v uint16) models.Passcode {
	var code models.Passcode
	for i := models.PasscodeLength - 1; i >= 0; i-- {
		d := models.Digit(v & 0xF)
		if !d.Valid() {
			d = models.Blank
		}
		code[i] = d
		v >>= 4
	}
	return code
}

// Blinks is the number of on/off cycles in a status flash.
const Blinks = 2

// FlashOn reports whether the status light is lit at elapsed time into a
// flash whose on and off phases each last half.
func FlashOn(elapsed, half time.Duration) bool {
	if elapsed < 0 || half <= 0 || elapsed >= 2*Blinks*half {
		return false
	}
	return (elapsed/half)%2 == 0
}

// Flashing reports whether a flash started at FlashedAt is still running at now.
func (s State) Flashing(now time.Time, half time.Duration) bool {
	if s.Verdict == models.VerdictNone || s.FlashedAt.IsZero() {
		return false
	}
	elapsed := now.Sub(s.FlashedAt)
	return elapsed >= 0 && elapsed < 2*Blinks*half
}
