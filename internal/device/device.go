// Package device runs the passcode device control loop. A Device owns the
// entry buffer, the passcode store and the mode controller, samples the
// inputs once per tick and drives the display and indicator.
package device

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/PassLock/internal/entry"
	"github.com/atinyakov/PassLock/internal/models"
	"github.com/atinyakov/PassLock/internal/repository"
	"github.com/atinyakov/PassLock/internal/service"
)

// Timing holds the delays applied by Run after each kind of event.
type Timing struct {
	Poll       time.Duration // between idle ticks
	ResetDelay time.Duration // after a reset
	ModeDelay  time.Duration // after a mode change
	KeyDelay   time.Duration // after a keypad digit
}

// DefaultTiming holds the debounce delays of the physical panel.
var DefaultTiming = Timing{
	Poll:       5 * time.Millisecond,
	ResetDelay: 250 * time.Millisecond,
	ModeDelay:  500 * time.Millisecond,
	KeyDelay:   450 * time.Millisecond,
}

// Config parameterises a Device.
type Config struct {
	Capacity int
	Timing   Timing
}

// Status is a read-only view of the device state.
type Status struct {
	ID       string
	Mode     models.Mode
	Entry    models.Passcode
	Entered  int
	Stored   int
	Capacity int
}

// Device is the control loop context. It is not safe for concurrent use;
// a single goroutine must call Tick or Run.
type Device struct {
	id     string
	timing Timing

	in        Inputs
	display   Display
	indicator Indicator

	buf   *entry.Buffer
	store *repository.MemoryPasscodeRepository
	modes *service.ModeController
	auth  *service.AuthService

	// prev is the sample from the previous tick, used for edge detection.
	prev Sample

	log *zap.Logger
}

// New builds a Device in its power-on state: empty store, empty entry,
// check mode, blank display.
func New(cfg Config, in Inputs, display Display, indicator Indicator, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	// A complete entry is evaluated and cleared on the tick that fills it,
	// so the buffer never sees a fifth digit.
	buf := entry.NewBuffer(entry.OverflowReject)
	store := repository.NewMemoryPasscodeRepository(cfg.Capacity)
	d := &Device{
		id:        uuid.NewString(),
		timing:    cfg.Timing,
		in:        in,
		display:   display,
		indicator: indicator,
		buf:       buf,
		store:     store,
		modes:     service.NewModeController(buf),
		auth:      service.NewAuthService(store),
		prev:      IdleSample,
	}
	d.log = log.With(zap.String("session", d.id))
	d.reset()
	return d
}

// ID returns the session identifier attached to every log line.
func (d *Device) ID() string {
	return d.id
}

// Status returns a snapshot of the device state.
func (d *Device) Status() Status {
	return Status{
		ID:       d.id,
		Mode:     d.modes.Mode(),
		Entry:    d.buf.Snapshot(),
		Entered:  d.buf.Len(),
		Stored:   d.store.Len(),
		Capacity: d.store.Cap(),
	}
}

// Tick samples the inputs once and handles at most one event, with reset
// taking priority over the mode button and the mode button over the keypad.
func (d *Device) Tick() Event {
	cur := d.in.Poll()
	prev := d.prev
	d.prev = cur

	var ev Event
	switch {
	case cur.Reset:
		if !prev.Reset {
			d.log.Debug("reset held, outputs cleared")
		}
		d.display.Show(models.BlankPasscode)
		d.indicator.Off()
		ev.Kind = EventResetHeld
	case prev.Reset:
		d.reset()
		d.indicator.Flash(d.modes.Mode(), models.VerdictAccept)
		d.log.Info("device reset")
		ev.Kind = EventReset
	case cur.Mode && !prev.Mode:
		mode := d.modes.Toggle()
		d.display.Show(d.buf.Snapshot())
		d.indicator.SetMode(mode)
		d.log.Info("mode changed", zap.Stringer("mode", mode))
		ev.Kind = EventMode
	case cur.Key.Valid() && cur.Key != prev.Key:
		ev = d.digit(cur.Key)
	}

	ev.Mode = d.modes.Mode()
	ev.Entered = d.buf.Len()
	ev.Stored = d.store.Len()
	return ev
}

func (d *Device) digit(key models.Digit) Event {
	ev := Event{Kind: EventDigit, Digit: key}
	ev.Appended = d.buf.Append(key)
	d.display.Show(d.buf.Snapshot())
	d.log.Debug("digit entered",
		zap.Bool("appended", ev.Appended),
		zap.Int("entered", d.buf.Len()),
	)

	mode := d.modes.Mode()
	dec, ok := d.auth.Evaluate(d.buf, mode)
	if !ok {
		return ev
	}
	ev.Evaluated = true
	ev.Verdict = dec.Verdict
	ev.Effect = dec.Effect

	d.indicator.Flash(mode, dec.Verdict)
	d.display.Show(d.buf.Snapshot())
	d.log.Info("entry evaluated",
		zap.Stringer("mode", mode),
		zap.Stringer("verdict", dec.Verdict),
		zap.Stringer("effect", dec.Effect),
		zap.Int("stored", d.store.Len()),
	)
	return ev
}

// reset clears the store, forces check mode and blanks the entry.
func (d *Device) reset() {
	d.store.Clear()
	d.modes.Reset()
	d.display.Show(d.buf.Snapshot())
	d.indicator.SetMode(d.modes.Mode())
}

// Run ticks until ctx is done, sleeping between ticks for the delay that
// follows each event. It returns ctx.Err().
func (d *Device) Run(ctx context.Context, sleeper Sleeper) error {
	d.log.Info("device loop started", zap.Int("capacity", d.store.Cap()))
	defer d.log.Info("device loop stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := d.Tick()
		if err := sleeper.Sleep(ctx, d.delayAfter(ev.Kind)); err != nil {
			return err
		}
	}
}

func (d *Device) delayAfter(k EventKind) time.Duration {
	switch k {
	case EventReset:
		return d.timing.ResetDelay
	case EventMode:
		return d.timing.ModeDelay
	case EventDigit:
		return d.timing.KeyDelay
	default:
		return d.timing.Poll
	}
}
