// Package panel is a software front panel for the passcode device. It feeds
// queued button and keypad presses to the control loop and latches what the
// loop writes to the display and indicator, so a terminal UI, a console or
// a scenario runner can stand in for the hardware.
package panel

import (
	"sync"
	"time"

	"github.com/atinyakov/PassLock/internal/device"
	"github.com/atinyakov/PassLock/internal/models"
)

// State is a snapshot of the panel outputs.
type State struct {
	// Display is the passcode currently shown.
	Display models.Passcode
	// Register is Display packed as the seven-segment register value.
	Register uint16
	// Lit is false while the indicator is switched off.
	Lit bool
	// Mode is the mode colour shown by the indicator.
	Mode models.Mode
	// Verdict is the most recent flash, VerdictNone if none happened yet.
	Verdict models.Verdict
	// FlashedAt is when Verdict was flashed.
	FlashedAt time.Time
	// FlashedCode is what the display showed when the flash started.
	FlashedCode models.Passcode
	// Flashes counts every flash since the panel was created.
	Flashes int
	// Pending is the number of queued input samples.
	Pending int
}

// Panel implements device.Inputs, device.Display and device.Indicator.
// It is safe for concurrent use: inputs are usually queued from a UI
// goroutine while the device loop polls from another.
type Panel struct {
	mu    sync.Mutex
	queue []device.Sample
	state State
	now   func() time.Time
}

// New returns an idle panel with a blank display.
func New() *Panel {
	return &Panel{
		state: State{
			Display:     models.BlankPasscode,
			Register:    EncodeRegister(models.BlankPasscode),
			FlashedCode: models.BlankPasscode,
		},
		now: time.Now,
	}
}

// PressKey queues a keypad press and release of d. Non-digits are ignored.
func (p *Panel) PressKey(d models.Digit) {
	if !d.Valid() {
		return
	}
	p.push(device.Sample{Key: d})
}

// PressMode queues a press and release of the mode button.
func (p *Panel) PressMode() {
	p.push(device.Sample{Mode: true, Key: models.Blank})
}

// PressReset queues a press and release of the reset button.
func (p *Panel) PressReset() {
	p.push(device.Sample{Reset: true, Key: models.Blank})
}

func (p *Panel) push(s device.Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, s, device.IdleSample)
}

// Pending returns the number of queued samples.
func (p *Panel) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Poll implements device.Inputs. It returns the next queued sample, or an
// idle sample when nothing is queued.
func (p *Panel) Poll() device.Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return device.IdleSample
	}
	s := p.queue[0]
	p.queue = p.queue[1:]
	return s
}

// Show implements device.Display.
func (p *Panel) Show(code models.Passcode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Display = code
	p.state.Register = EncodeRegister(code)
}

// SetMode implements device.Indicator.
func (p *Panel) SetMode(mode models.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Mode = mode
	p.state.Lit = true
}

// Flash implements device.Indicator.
func (p *Panel) Flash(mode models.Mode, verdict models.Verdict) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Mode = mode
	p.state.Lit = true
	p.state.Verdict = verdict
	p.state.FlashedAt = p.now()
	p.state.FlashedCode = p.state.Display
	p.state.Flashes++
}

// Off implements device.Indicator.
func (p *Panel) Off() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Lit = false
}

// State returns a snapshot of the outputs.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state
	st.Pending = len(p.queue)
	return st
}

// Compile-time checks.
var (
	_ device.Inputs    = (*Panel)(nil)
	_ device.Display   = (*Panel)(nil)
	_ device.Indicator = (*Panel)(nil)
)
