package taskcore

import (
	"fmt"
	"strings"
)

// Status marks local mutation relative to the last save or sync point. The
// ordinals are persisted as-is and must never be renumbered.
type Status int

const (
	StatusNone    Status = 0
	StatusNew     Status = 1
	StatusChanged Status = 2
	StatusDeleted Status = 3
)

var statusNames = map[Status]string{
	StatusNone:    "none",
	StatusNew:     "new",
	StatusChanged: "changed",
	StatusDeleted: "deleted",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is one of the four known states.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus resolves a status name, case-insensitively.
func ParseStatus(name string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for status, candidate := range statusNames {
		if candidate == normalized {
			return status, nil
		}
	}
	return StatusNone, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// Synchronized holds the sync status machine. It is embedded in Object; the
// transitions that notify observers are exposed on Object and Composite.
type Synchronized struct {
	status Status
}

// Status returns the current sync status.
func (s *Synchronized) Status() Status {
	return s.status
}

func (s *Synchronized) IsNew() bool      { return s.status == StatusNew }
func (s *Synchronized) IsModified() bool { return s.status == StatusChanged }
func (s *Synchronized) IsDeleted() bool  { return s.status == StatusDeleted }

// The transition helpers report whether a notification is due.

func (s *Synchronized) setDeleted() bool {
	s.status = StatusDeleted
	return true
}

func (s *Synchronized) setNew() bool {
	s.status = StatusNew
	return true
}

func (s *Synchronized) setDirty(force bool) bool {
	if s.status == StatusNone {
		s.status = StatusChanged
	}
	return force
}

func (s *Synchronized) setClean() bool {
	previous := s.status
	s.status = StatusNone
	return previous == StatusDeleted
}
