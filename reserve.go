package twenty6

import "unsafe"

// Reserve is producer-only. It checks whether size bytes can fit between
// the private local head and the last observed tail and, if so, advances
// the private cursor and returns a pointer into the mirrored data region.
// Because of the mirror, the returned slice is contiguous even when the
// logical range wraps past the end of the ring.
//
// Reserve returns ok=false — a normal, retryable "not available now"
// signal, never an error — when size is zero, exceeds the ring's
// capacity, or does not currently fit.
func (e *Endpoint) Reserve(size int) (buf []byte, ok bool) {
	if e.state == Detached || size <= 0 {
		return nil, false
	}
	n := uint64(size)
	if n > e.capacity {
		return nil, false
	}

	tail := e.hdr.loadTail()
	lh := e.localHead

	if lh >= tail {
		if lh+n >= tail+e.capacity {
			return nil, false
		}
	} else {
		if lh+n >= tail {
			return nil, false
		}
	}

	ptr := unsafe.Add(e.data, lh)
	e.localHead = (lh + n) % e.capacity
	return unsafe.Slice((*byte)(ptr), size), true
}
