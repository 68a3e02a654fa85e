package core

import (
	"fmt"
	"sync"
)

// Identifier hands out small integer ids bound to an owner. Released ids are
// reused before the table grows.
type Identifier struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifier(capacity int) *Identifier {
	return &Identifier{
		owners: make([]interface{}, 0, capacity),
	}
}

func (id *Identifier) AquireNewID(owner interface{}) uint32 {
	id.mu.Lock()
	defer id.mu.Unlock()

	for i := range id.owners {
		// Existing free spot. Take it.
		if id.owners[i] == nil {
			id.owners[i] = owner
			return uint32(i)
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	id.owners = append(id.owners, owner)
	return uint32(len(id.owners) - 1)
}

func (id *Identifier) ReleaseID(value uint32) error {
	id.mu.Lock()
	defer id.mu.Unlock()

	length := uint32(len(id.owners))
	if value >= length {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d): %w", value, length, ErrInvalidID)
	}
	if id.owners[value] == nil {
		return fmt.Errorf("identifier release: id '%d' is not in use: %w", value, ErrInvalidID)
	}

	// Just zero out the entry, making it available for use.
	id.owners[value] = nil
	return nil
}
