package twenty6

// Publish is producer-only. It stores the private local head into the
// shared head cursor with release ordering, atomically making every byte
// reserved since the previous Publish visible to a consumer doing an
// acquiring load of head. This is the producer's single commit point.
//
// Publish never fails on a live endpoint; it returns an error only when
// called on a Detached one.
//
// If a high watermark has been configured via SetWatermark and the
// post-publish fill exceeds it, the configured callback runs synchronously
// on the caller's goroutine before Publish returns. A reentrant call back
// into the ring from within the callback is not supported.
func (e *Endpoint) Publish() error {
	if e.state == Detached {
		return ErrDetached
	}

	e.hdr.storeHead(e.localHead)

	if e.watermark != 0 {
		tail := e.hdr.loadTail()
		fill := (e.localHead + e.capacity - tail) % e.capacity
		if fill > e.watermark {
			e.watermarkCB(e.watermarkPayload)
		}
	}

	return nil
}
