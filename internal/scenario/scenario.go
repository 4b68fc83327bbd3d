// Package scenario replays scripted panel interactions against a device and
// checks the verdicts it produces.
//
// A scenario is a YAML document:
//
//	name: set then check
//	capacity: 100        # optional, store capacity
//	steps:
//	  - mode: 1           # press the mode button once
//	  - keys: "1234"
//	    expect: accept    # verdict of the last evaluation in this step
//	    stored: 1         # store size after the step
//	  - reset: true
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/atinyakov/PassLock/internal/device"
	"github.com/atinyakov/PassLock/internal/models"
	"github.com/atinyakov/PassLock/internal/panel"
	"github.com/atinyakov/PassLock/internal/repository"
)

var (
	// ErrMismatch is returned when a step's outcome differs from its expectation.
	ErrMismatch = errors.New("scenario expectation not met")

	// ErrInvalidStep is returned for a step with no action or a bad field.
	ErrInvalidStep = errors.New("invalid scenario step")
)

// Scenario is a named list of steps.
type Scenario struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity,omitempty"`
	Steps    []Step `yaml:"steps"`
}

// Step performs exactly one of Keys, Mode or Reset, then checks the optional
// expectations.
type Step struct {
	Keys  string `yaml:"keys,omitempty"`
	Mode  int    `yaml:"mode,omitempty"`
	Reset bool   `yaml:"reset,omitempty"`

	// Expect is "accept", "reject" or "none". Empty skips the check.
	Expect string `yaml:"expect,omitempty"`
	// Stored is the expected store size. Nil skips the check.
	Stored *int `yaml:"stored,omitempty"`
}

// Result is the outcome of one step.
type Result struct {
	Index   int
	Step    Step
	Mode    models.Mode
	Verdict models.Verdict
	Stored  int
	Entered int
	Display models.Passcode
}

// String formats r as a trace line. Key presses are masked.
func (r Result) String() string {
	action := "keys " + strings.Repeat("*", len(r.Step.Keys))
	switch {
	case r.Step.Reset:
		action = "reset"
	case r.Step.Mode > 0:
		action = fmt.Sprintf("mode x%d", r.Step.Mode)
	}
	return fmt.Sprintf("#%d %-12s mode=%-6s verdict=%-6s stored=%d entered=%d",
		r.Index, action, r.Mode, r.Verdict, r.Stored, r.Entered)
}

// Parse decodes a scenario document.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Validate checks that every step has exactly one action and valid fields.
func (s *Scenario) Validate() error {
	if s.Capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrInvalidStep, s.Capacity)
	}
	for i, st := range s.Steps {
		actions := 0
		if st.Keys != "" {
			actions++
			for _, c := range st.Keys {
				if c < '0' || c > '9' {
					return fmt.Errorf("%w %d: key %q is not a digit", ErrInvalidStep, i, c)
				}
			}
		}
		if st.Mode < 0 {
			return fmt.Errorf("%w %d: negative mode count", ErrInvalidStep, i)
		}
		if st.Mode > 0 {
			actions++
		}
		if st.Reset {
			actions++
		}
		if actions != 1 {
			return fmt.Errorf("%w %d: want exactly one of keys, mode, reset", ErrInvalidStep, i)
		}
		if _, ok := models.ParseVerdict(st.Expect); !ok {
			return fmt.Errorf("%w %d: unknown verdict %q", ErrInvalidStep, i, st.Expect)
		}
	}
	return nil
}

// Run replays s on a fresh device and returns one Result per step. It stops
// at the first failed expectation, returning the results so far and an
// error wrapping ErrMismatch.
func Run(s *Scenario, log *zap.Logger) ([]Result, error) {
	capacity := s.Capacity
	if capacity == 0 {
		capacity = repository.DefaultCapacity
	}
	p := panel.New()
	dev := device.New(device.Config{Capacity: capacity}, p, p, p, log)

	results := make([]Result, 0, len(s.Steps))
	for i, st := range s.Steps {
		switch {
		case st.Reset:
			p.PressReset()
		case st.Mode > 0:
			for n := 0; n < st.Mode; n++ {
				p.PressMode()
			}
		default:
			for _, c := range st.Keys {
				p.PressKey(models.Digit(c - '0'))
			}
		}

		verdict := models.VerdictNone
		for p.Pending() > 0 {
			if ev := dev.Tick(); ev.Evaluated {
				verdict = ev.Verdict
			}
		}

		status := dev.Status()
		res := Result{
			Index:   i,
			Step:    st,
			Mode:    status.Mode,
			Verdict: verdict,
			Stored:  status.Stored,
			Entered: status.Entered,
			Display: p.State().Display,
		}
		results = append(results, res)

		if err := check(st, res); err != nil {
			return results, fmt.Errorf("%s: step %d: %w", s.Name, i, err)
		}
	}
	return results, nil
}

func check(st Step, res Result) error {
	if st.Expect != "" {
		want, _ := models.ParseVerdict(st.Expect)
		if res.Verdict != want {
			return fmt.Errorf("%w: verdict %s, want %s", ErrMismatch, res.Verdict, want)
		}
	}
	if st.Stored != nil && res.Stored != *st.Stored {
		return fmt.Errorf("%w: stored %d, want %d", ErrMismatch, res.Stored, *st.Stored)
	}
	return nil
}
