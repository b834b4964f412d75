package fairrw

import (
	"fmt"
	"strings"
)

// Policy selects how an RWLock orders readers against writers.
type Policy uint8

const (
	// WriterPreferred closes the read path as soon as one writer announces
	// itself and reopens it only after the last announced writer finishes.
	// Readers already admitted finish their reads; no new read group forms
	// ahead of a waiting writer. A continuous stream of writers can delay
	// readers.
	WriterPreferred Policy = iota

	// ArrivalOrder serves readers and writers in the order they arrive.
	// Consecutive readers still share the lock; a reader arriving after a
	// queued writer waits for that writer.
	ArrivalOrder
)

func (p Policy) String() string {
	switch p {
	case WriterPreferred:
		return "writer-preferred"
	case ArrivalOrder:
		return "arrival-order"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy converts the String form of a Policy back to its value.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "writer-preferred", "writer":
		return WriterPreferred, nil
	case "arrival-order", "fifo":
		return ArrivalOrder, nil
	}
	return 0, fmt.Errorf("fairrw: unknown policy %q", s)
}

// RWLockConfig holds the options accepted by NewRWLock.
type RWLockConfig struct {
	// policy decides whether writers cut ahead of newly arriving readers.
	policy Policy
}

// WithPolicy sets the reader/writer ordering policy.
// The default is WriterPreferred.
func WithPolicy(p Policy) func(*RWLockConfig) {
	return func(c *RWLockConfig) {
		c.policy = p
	}
}
