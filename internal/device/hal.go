package device

import (
	"context"
	"time"

	"github.com/atinyakov/PassLock/internal/models"
)

// Sample is the raw state of the three inputs at one instant.
type Sample struct {
	Reset bool         // reset button held
	Mode  bool         // mode button held
	Key   models.Digit // digit held on the keypad, models.Blank when none
}

// IdleSample has nothing pressed.
var IdleSample = Sample{Key: models.Blank}

// Inputs is sampled once per tick.
type Inputs interface {
	Poll() Sample
}

// Display renders four digits. models.BlankPasscode turns every digit off.
type Display interface {
	Show(code models.Passcode)
}

// Indicator is the mode and status light.
type Indicator interface {
	// SetMode shows the steady colour for mode.
	SetMode(mode models.Mode)
	// Flash blinks accept or reject feedback over the mode colour.
	Flash(mode models.Mode, verdict models.Verdict)
	// Off turns every light off.
	Off()
}

// Sleeper blocks for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper sleeps on a time.Timer.
type TimerSleeper struct{}

// Sleep implements Sleeper.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
