package twenty6

import "unsafe"

// Peek is consumer-only. It checks whether size bytes of published data
// are available starting at the private local tail and, if so, returns a
// pointer into the mirrored data region without advancing any cursor.
//
// Peek is idempotent under concurrent producer progress: repeated calls
// with no intervening Read/Consume return the same range, since only this
// consumer moves the shared tail and more data can only become available,
// never less.
func (e *Endpoint) Peek(size int) (buf []byte, ok bool) {
	if e.state == Detached || size <= 0 {
		return nil, false
	}
	n := uint64(size)
	if n > e.capacity {
		return nil, false
	}

	head := e.hdr.loadHead()
	lt := e.localTail

	if lt <= head {
		if lt+n > head {
			return nil, false
		}
	} else {
		if lt+n > head+e.capacity {
			return nil, false
		}
	}

	ptr := unsafe.Add(e.data, lt)
	return unsafe.Slice((*byte)(ptr), size), true
}
