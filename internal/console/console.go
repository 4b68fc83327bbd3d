// Package console is a line-oriented shell for driving the passcode device
// from a plain terminal or a pipe.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/PassLock/internal/device"
	"github.com/atinyakov/PassLock/internal/models"
	"github.com/atinyakov/PassLock/internal/panel"
)

const prompt = "passlock> "

const helpText = `Available commands:
  <digits>  type digits on the keypad, e.g. 1234
  mode      press the mode button
  reset     press and release the reset button
  show      print display, mode and store usage
  help      print this help
  exit      leave the shell`

// Shell feeds commands to a device through a panel.
type Shell struct {
	dev *device.Device
	p   *panel.Panel
	out io.Writer
}

// New returns a shell for dev. p must be the panel dev was built with.
func New(dev *device.Device, p *panel.Panel, out io.Writer) *Shell {
	return &Shell{dev: dev, p: p, out: out}
}

// Run reads commands from in until "exit" or end of input.
func (s *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Fprintln(s.out, helpText)
		case "mode":
			s.p.PressMode()
			s.drain()
		case "reset":
			s.p.PressReset()
			s.drain()
		case "show":
			s.show()
		case "exit", "quit":
			fmt.Fprintln(s.out, "Bye")
			return nil
		default:
			if !isDigits(args[0]) {
				fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
				continue
			}
			for _, c := range args[0] {
				s.p.PressKey(models.Digit(c - '0'))
			}
			s.drain()
		}
	}
}

// drain ticks the device until every queued input is consumed and reports
// what happened.
func (s *Shell) drain() {
	for s.p.Pending() > 0 {
		ev := s.dev.Tick()
		switch {
		case ev.Kind == device.EventReset:
			fmt.Fprintln(s.out, "Device reset, store cleared")
		case ev.Kind == device.EventMode:
			fmt.Fprintf(s.out, "Mode: %s\n", ev.Mode)
		case ev.Evaluated:
			fmt.Fprintf(s.out, "%s: %s (stored %d)\n", ev.Mode, strings.ToUpper(ev.Verdict.String()), ev.Stored)
		}
	}
	fmt.Fprintf(s.out, "Display: [%s]\n", s.p.State().Display)
}

func (s *Shell) show() {
	st := s.dev.Status()
	fmt.Fprintf(s.out, "Display: [%s]\nMode: %s\nStored: %d/%d\n",
		s.p.State().Display, st.Mode, st.Stored, st.Capacity)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
