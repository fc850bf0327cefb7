package taskcore

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator hands out object identifiers. Implementations must never
// return the same id twice.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string {
	return f()
}

// UUIDGenerator issues random version 4 UUIDs.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// ULIDGenerator issues lexicographically sortable ULIDs. Ids generated within
// the same millisecond stay ordered.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	clock   Clock
}

// NewULIDGenerator returns a generator using monotonic entropy.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		clock:   time.Now,
	}
}

// NewID implements IDGenerator.
func (g *ULIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.clock()), g.entropy).String()
}

// Clock returns the current time. Objects use it for creation timestamps.
type Clock func() time.Time
