package service

import (
	"github.com/atinyakov/PassLock/internal/models"
)

// Resetter is anything cleared on a mode transition.
type Resetter interface {
	Reset()
}

// ModeController is the Check -> Set -> Remove state machine. Every
// transition, whether toggled or forced by a reset, clears the entry buffer.
type ModeController struct {
	mode  models.Mode
	entry Resetter
}

// NewModeController starts in models.DefaultMode and clears entry on every
// transition.
func NewModeController(entry Resetter) *ModeController {
	return &ModeController{mode: models.DefaultMode, entry: entry}
}

// Mode returns the current mode.
func (c *ModeController) Mode() models.Mode {
	return c.mode
}

// Toggle advances to the next mode in the cycle and returns it.
func (c *ModeController) Toggle() models.Mode {
	c.set(c.mode.Next())
	return c.mode
}

// Reset forces the controller back to models.DefaultMode.
func (c *ModeController) Reset() {
	c.set(models.DefaultMode)
}

func (c *ModeController) set(m models.Mode) {
	c.mode = m
	c.entry.Reset()
}
