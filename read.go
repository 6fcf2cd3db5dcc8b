package twenty6

// Read is consumer-only. It behaves like a successful Peek(size) followed
// by advancing the private local tail by size modulo capacity. On failure
// the local tail is left unchanged.
func (e *Endpoint) Read(size int) (buf []byte, ok bool) {
	buf, ok = e.Peek(size)
	if !ok {
		return nil, false
	}
	e.localTail = (e.localTail + uint64(size)) % e.capacity
	return buf, true
}
