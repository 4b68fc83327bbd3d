// Package repository provides the bounded, in-memory passcode store used by
// the authentication service. Contents are volatile and are lost on reset.
package repository

import (
	"github.com/atinyakov/PassLock/internal/models"
)

// DefaultCapacity is the number of passcodes the device can hold.
const DefaultCapacity = 100

// MemoryPasscodeRepository is an ordered, fixed-capacity collection of
// registered passcodes. Occupied slots are always contiguous from index 0,
// no two entries are equal, and the master passcode is never stored.
type MemoryPasscodeRepository struct {
	// slots holds every entry; slots[count:] are BlankPasscode.
	slots []models.Passcode
	// count is the number of occupied slots.
	count int
}

// NewMemoryPasscodeRepository creates an empty store holding up to capacity
// passcodes. A capacity below 1 falls back to DefaultCapacity.
func NewMemoryPasscodeRepository(capacity int) *MemoryPasscodeRepository {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	r := &MemoryPasscodeRepository{slots: make([]models.Passcode, capacity)}
	r.Clear()
	return r
}

// Contains reports whether code matches an occupied slot.
func (r *MemoryPasscodeRepository) Contains(code models.Passcode) bool {
	return r.indexOf(code) >= 0
}

// IsFull reports whether every slot is occupied.
func (r *MemoryPasscodeRepository) IsFull() bool {
	return r.count == len(r.slots)
}

// Add appends code to the end of the store.
//
// It returns false, leaving the store unchanged, when the store is full,
// code is already stored, code is the master passcode, or code is incomplete.
func (r *MemoryPasscodeRepository) Add(code models.Passcode) bool {
	if r.IsFull() || !code.IsComplete() || code.IsMaster() || r.Contains(code) {
		return false
	}
	r.slots[r.count] = code
	r.count++
	return true
}

// Remove deletes the first entry equal to code, shifting every later entry
// one slot left and blanking the vacated trailing slot. It returns false
// when code is not stored.
func (r *MemoryPasscodeRepository) Remove(code models.Passcode) bool {
	i := r.indexOf(code)
	if i < 0 {
		return false
	}
	copy(r.slots[i:r.count-1], r.slots[i+1:r.count])
	r.count--
	r.slots[r.count] = models.BlankPasscode
	return true
}

// Clear blanks every slot and empties the store.
func (r *MemoryPasscodeRepository) Clear() {
	for i := range r.slots {
		r.slots[i] = models.BlankPasscode
	}
	r.count = 0
}

// Len returns the number of stored passcodes.
func (r *MemoryPasscodeRepository) Len() int {
	return r.count
}

// Cap returns the store capacity.
func (r *MemoryPasscodeRepository) Cap() int {
	return len(r.slots)
}

// Entries returns a copy of the stored passcodes in insertion order.
func (r *MemoryPasscodeRepository) Entries() []models.Passcode {
	out := make([]models.Passcode, r.count)
	copy(out, r.slots[:r.count])
	return out
}

func (r *MemoryPasscodeRepository) indexOf(code models.Passcode) int {
	for i := 0; i < r.count; i++ {
		if r.slots[i] == code {
			return i
		}
	}
	return -1
}
