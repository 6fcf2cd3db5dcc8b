package twenty6

// Consume is consumer-only. It stores the private local tail into the
// shared tail cursor with release ordering, freeing every byte read since
// the previous Consume for the producer to reserve again.
//
// Pointers previously returned by Read or Peek must not be dereferenced
// after Consume: the producer is now free to overwrite that memory.
//
// Consume never fails on a live endpoint; it returns an error only when
// called on a Detached one.
func (e *Endpoint) Consume() error {
	if e.state == Detached {
		return ErrDetached
	}
	e.hdr.storeTail(e.localTail)
	return nil
}
