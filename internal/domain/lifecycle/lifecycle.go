// Package lifecycle models the soft-delete state shared by users and tasks.
//
// A record starts Active and can move to Deleted exactly once. Nothing moves a
// record back, so callers go through Delete rather than assigning the state.
package lifecycle

import (
	"encoding/json"
	"errors"
)

type State uint8

const (
	Active State = iota
	Deleted
)

var ErrAlreadyDeleted = errors.New("record already deleted")

func (s State) IsActive() bool {
	return s == Active
}

func (s State) IsDeleted() bool {
	return s == Deleted
}

// Delete returns the state after a soft delete. Deleting twice is an error.
func (s State) Delete() (State, error) {
	if s == Deleted {
		return s, ErrAlreadyDeleted
	}
	return Deleted, nil
}

func (s State) String() string {
	if s == Deleted {
		return "deleted"
	}
	return "active"
}

// FromFlag maps the stored deleted_flag column onto a State.
func FromFlag(deleted bool) State {
	if deleted {
		return Deleted
	}
	return Active
}

// Flag is the inverse of FromFlag.
func (s State) Flag() bool {
	return s == Deleted
}

// on the wire the state keeps its historical shape: deleted_flag true/false
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Flag())
}

func (s *State) UnmarshalJSON(b []byte) error {
	var flag bool
	if err := json.Unmarshal(b, &flag); err != nil {
		return err
	}
	*s = FromFlag(flag)
	return nil
}
