package util

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid"
)

var (
	entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	m       sync.Mutex
)

// NewULID returns a lower-case ULID. ULIDs sort by creation time, which keeps
// temporary files created by one process ordered in directory listings.
func NewULID() string {
	m.Lock()
	defer m.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Now(), entropy).String())
}

// NewInvocationId returns a random id used to correlate the log lines of one process.
func NewInvocationId() string {
	return uuid.NewString()
}
