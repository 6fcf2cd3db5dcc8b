package twenty6

// SetWatermark configures or clears the producer-side high-watermark hook.
// A threshold of zero disables the hook; a non-zero threshold without a
// callback is rejected with ErrInvalidConfiguration, since there would be
// nothing to invoke when it fires.
//
// cb runs synchronously on the caller's goroutine at Publish time,
// whenever the post-publish fill exceeds threshold. payload is passed
// through unchanged; it exists so a single callback function can serve
// multiple rings without a closure per ring.
func (e *Endpoint) SetWatermark(threshold uint64, cb func(payload any), payload any) error {
	if threshold != 0 && cb == nil {
		return newErr(ErrKindInvalidConfiguration, "non-zero watermark requires a callback", nil)
	}
	e.watermark = threshold
	e.watermarkCB = cb
	e.watermarkPayload = payload
	return nil
}
