package taskcore

import "errors"

var (
	// ErrObjectNotFound is returned by Collection lookups for unknown ids,
	// whether or not the collection is empty.
	ErrObjectNotFound = errors.New("taskcore: object not found")
	// ErrNotMember is returned when removing an item the collection does not hold.
	ErrNotMember = errors.New("taskcore: item is not a member of the collection")
	// ErrDuplicateID is returned when a different item with the same id is
	// already in the collection.
	ErrDuplicateID = errors.New("taskcore: duplicate id")
	// ErrCompositeCycle is returned when adding a composite under itself or
	// one of its descendants.
	ErrCompositeCycle = errors.New("taskcore: composite cycle")
	// ErrNotChild is returned when removing a composite that is not a child.
	ErrNotChild = errors.New("taskcore: not a child")

	ErrUnknownStatus = errors.New("taskcore: unknown status")
	ErrInvalidState  = errors.New("taskcore: invalid state")
)
