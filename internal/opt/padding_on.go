//go:build !fairrw_disable_padding

package opt

import "golang.org/x/sys/cpu"

// Pad_ separates fields written by different sides of a lock so that
// readers and writers do not bounce the same cache line.
// Disable with: go build -tags=fairrw_disable_padding
type Pad_ = cpu.CacheLinePad
