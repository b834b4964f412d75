package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize_ is the cache line size of the target architecture as
// reported by golang.org/x/sys/cpu.
const CacheLineSize_ = unsafe.Sizeof(cpu.CacheLinePad{})
