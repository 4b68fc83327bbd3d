// Package service provides the passcode authentication business logic,
// delegating storage to a PasscodeRepository.
package service

import (
	"github.com/atinyakov/PassLock/internal/models"
)

// PasscodeRepository defines the store operations required by the
// authentication service.
type PasscodeRepository interface {
	// Contains returns true if code is stored.
	Contains(code models.Passcode) bool
	// IsFull returns true if no more passcodes can be added.
	IsFull() bool
	// Add stores code. Returns false if nothing was added.
	Add(code models.Passcode) bool
	// Remove deletes code. Returns false if nothing was removed.
	Remove(code models.Passcode) bool
}

// EntryBuffer is the digit accumulator evaluated by the service.
type EntryBuffer interface {
	IsComplete() bool
	Snapshot() models.Passcode
	Reset()
}

// Effect is the store mutation that follows an accepted entry.
type Effect uint8

const (
	// EffectNone leaves the store untouched.
	EffectNone Effect = iota
	// EffectStore adds the entry to the store.
	EffectStore
	// EffectRemove deletes the entry from the store.
	EffectRemove
)

// String returns a human-readable effect name.
func (e Effect) String() string {
	switch e {
	case EffectStore:
		return "store"
	case EffectRemove:
		return "remove"
	default:
		return "none"
	}
}

// Decision is the result of evaluating one completed entry.
type Decision struct {
	// Code is the evaluated passcode.
	Code models.Passcode
	// Mode is the mode the entry was evaluated in.
	Mode models.Mode
	// Verdict is Accept or Reject.
	Verdict models.Verdict
	// Effect is the store mutation to apply. Always EffectNone on Reject.
	Effect Effect
}

// AuthService evaluates completed entries against the master passcode and
// the passcode store.
type AuthService struct {
	// repo is the passcode store.
	repo PasscodeRepository
}

// NewAuthService constructs an AuthService over the provided repository.
func NewAuthService(repo PasscodeRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Decide computes the verdict and effect for code in mode without mutating
// the store.
//
//	Check:  accept if code is the master or is stored
//	Set:    accept if code is not the master, not stored, and the store is not full
//	Remove: accept if code is not the master and is stored
func (s *AuthService) Decide(code models.Passcode, mode models.Mode) Decision {
	d := Decision{Code: code, Mode: mode, Verdict: models.VerdictReject}

	switch mode {
	case models.ModeCheck:
		if code.IsMaster() || s.repo.Contains(code) {
			d.Verdict = models.VerdictAccept
		}
	case models.ModeSet:
		if !code.IsMaster() && !s.repo.Contains(code) && !s.repo.IsFull() {
			d.Verdict = models.VerdictAccept
			d.Effect = EffectStore
		}
	case models.ModeRemove:
		if !code.IsMaster() && s.repo.Contains(code) {
			d.Verdict = models.VerdictAccept
			d.Effect = EffectRemove
		}
	}
	return d
}

// Apply performs the store mutation carried by d and reports whether the
// store changed.
func (s *AuthService) Apply(d Decision) bool {
	switch d.Effect {
	case EffectStore:
		return s.repo.Add(d.Code)
	case EffectRemove:
		return s.repo.Remove(d.Code)
	default:
		return false
	}
}

// Evaluate runs one authentication cycle. If buf is not complete it does
// nothing and returns false. Otherwise it decides, applies the effect,
// resets buf regardless of the verdict, and returns the decision.
func (s *AuthService) Evaluate(buf EntryBuffer, mode models.Mode) (Decision, bool) {
	if !buf.IsComplete() {
		return Decision{}, false
	}
	d := s.Decide(buf.Snapshot(), mode)
	s.Apply(d)
	buf.Reset()
	return d, true
}
