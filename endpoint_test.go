package twenty6

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func mustCreate(t *testing.T, pages uint64) *Endpoint {
	t.Helper()
	ep, err := Create(pages)
	if err != nil {
		t.Fatalf("Create(%d): %v", pages, err)
	}
	t.Cleanup(func() { ep.Close() })
	return ep
}

// S1 — create/empty-read.
func TestCreateEmptyRead(t *testing.T) {
	ep := mustCreate(t, 1)
	if _, ok := ep.Read(4); ok {
		t.Fatalf("Read on an empty ring should fail")
	}
}

// S2 — single record.
func TestSingleRecordRoundTrips(t *testing.T) {
	ep := mustCreate(t, 1)

	buf, ok := ep.Reserve(8)
	if !ok {
		t.Fatalf("Reserve(8) failed on an empty ring")
	}
	for i := range buf {
		buf[i] = 0x2A
	}
	if err := ep.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got, ok := ep.Read(8)
	if !ok {
		t.Fatalf("Read(8) failed after Publish")
	}
	for i, b := range got {
		if b != 0x2A {
			t.Fatalf("byte %d = %#x, want 0x2a", i, b)
		}
	}
}

// S3 — exactly-capacity rejection.
func TestReserveCapacityBoundary(t *testing.T) {
	ep := mustCreate(t, 1)
	cap := int(ep.Size())

	if _, ok := ep.Reserve(cap); ok {
		t.Fatalf("Reserve(capacity) should fail: one byte is reserved as a sentinel")
	}
	if _, ok := ep.Reserve(cap - 1); !ok {
		t.Fatalf("Reserve(capacity-1) should succeed against an empty ring")
	}
}

// S4 — wrap.
func TestWrapAround(t *testing.T) {
	ep := mustCreate(t, 1)
	cap := int(ep.Size())

	first := int(float64(cap) * 0.8)
	buf, ok := ep.Reserve(first)
	if !ok {
		t.Fatalf("Reserve(%d) failed", first)
	}
	for i := range buf {
		buf[i] = byte(i)
	}
	if err := ep.Publish(); err != nil {
		t.Fatal(err)
	}
	if _, ok := ep.Read(first); !ok {
		t.Fatalf("Read(%d) failed", first)
	}
	if err := ep.Consume(); err != nil {
		t.Fatal(err)
	}

	second := 2048
	if second > cap-1 {
		second = cap - 1
	}
	buf, ok = ep.Reserve(second)
	if !ok {
		t.Fatalf("Reserve(%d) failed after wraparound", second)
	}
	binary.LittleEndian.PutUint64(buf[len(buf)-8:], 42)
	if err := ep.Publish(); err != nil {
		t.Fatal(err)
	}

	got, ok := ep.Read(second)
	if !ok {
		t.Fatalf("Read(%d) failed after wraparound", second)
	}
	if v := binary.LittleEndian.Uint64(got[len(got)-8:]); v != 42 {
		t.Fatalf("trailing sentinel = %d, want 42", v)
	}
}

// S6 — watermark fires once per publish that leaves the fill above the
// threshold, including a publish when the fill was already above it.
func TestWatermarkFires(t *testing.T) {
	ep := mustCreate(t, 1)
	cap := int(ep.Size())

	var calls int
	if err := ep.SetWatermark(uint64(cap/2), func(payload any) {
		calls++
	}, nil); err != nil {
		t.Fatalf("SetWatermark: %v", err)
	}

	size := int(float64(cap) * 0.6)
	buf, ok := ep.Reserve(size)
	if !ok {
		t.Fatalf("Reserve(%d) failed", size)
	}
	_ = buf
	if err := ep.Publish(); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("watermark callback fired %d times, want 1", calls)
	}

	buf, ok = ep.Reserve(1)
	if !ok {
		t.Fatalf("Reserve(1) failed")
	}
	_ = buf
	if err := ep.Publish(); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("watermark callback fired %d times total, want 2", calls)
	}
}

func TestSetWatermarkRejectsMissingCallback(t *testing.T) {
	ep := mustCreate(t, 1)
	err := ep.SetWatermark(1, nil, nil)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("SetWatermark(1, nil, nil) = %v, want ErrInvalidConfiguration", err)
	}
}

func TestReserveRejectsZeroAndOversize(t *testing.T) {
	ep := mustCreate(t, 1)
	if _, ok := ep.Reserve(0); ok {
		t.Fatalf("Reserve(0) should fail")
	}
	if _, ok := ep.Reserve(int(ep.Size()) + 1); ok {
		t.Fatalf("Reserve(capacity+1) should fail")
	}
}

func TestPeekIsIdempotent(t *testing.T) {
	ep := mustCreate(t, 1)

	buf, ok := ep.Reserve(16)
	if !ok {
		t.Fatal("Reserve failed")
	}
	copy(buf, bytes.Repeat([]byte{7}, 16))
	if err := ep.Publish(); err != nil {
		t.Fatal(err)
	}

	first, ok := ep.Peek(16)
	if !ok {
		t.Fatal("Peek failed")
	}
	second, ok := ep.Peek(16)
	if !ok {
		t.Fatal("second Peek failed")
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("Peek is not idempotent: %v != %v", first, second)
	}
}

func TestMirrorAliasing(t *testing.T) {
	ep := mustCreate(t, 1)
	cap := ep.Size()

	for i := uint64(0); i < cap; i++ {
		ep.data0()[i] = byte(i)
	}
	for i := uint64(0); i < cap; i++ {
		mirrored := ep.data0()[cap+i]
		if mirrored != byte(i) {
			t.Fatalf("mirror byte at offset %d = %d, want %d", i, mirrored, byte(i))
		}
	}
}

func TestCloseIsIdempotentAndDetaches(t *testing.T) {
	ep := mustCreate(t, 1)
	if ep.State() != Attached {
		t.Fatalf("fresh endpoint should be Attached")
	}
	if err := ep.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ep.State() != Detached {
		t.Fatalf("closed endpoint should be Detached")
	}
	if err := ep.Close(); err != nil {
		t.Fatalf("second Close should be a no-op: %v", err)
	}
	if err := ep.Publish(); !errors.Is(err, ErrDetached) {
		t.Fatalf("Publish on detached endpoint = %v, want ErrDetached", err)
	}
	if err := ep.Consume(); !errors.Is(err, ErrDetached) {
		t.Fatalf("Consume on detached endpoint = %v, want ErrDetached", err)
	}
	if _, ok := ep.Reserve(1); ok {
		t.Fatalf("Reserve on detached endpoint should fail")
	}
}

// S5 — attach after create, in the same process: a second endpoint
// attached to the first's handle observes what the first publishes, and
// the first continues to operate normally (including across a wrap)
// after handing its handle to a peer.
func TestAttachAfterCreate(t *testing.T) {
	a := mustCreate(t, 1)
	capacity := int(a.Size())

	b, err := Attach(a.Handle())
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	pattern := bytes.Repeat([]byte{0xC0, 0xDE}, 8) // 16 bytes
	buf, ok := a.Reserve(len(pattern))
	if !ok {
		t.Fatalf("Reserve(%d) failed", len(pattern))
	}
	copy(buf, pattern)
	if err := a.Publish(); err != nil {
		t.Fatal(err)
	}

	got, ok := b.Read(len(pattern))
	if !ok {
		t.Fatalf("Read(%d) failed on the attached endpoint", len(pattern))
	}
	if !bytes.Equal(got, pattern) {
		t.Fatalf("attached endpoint read %v, want %v", got, pattern)
	}
	if err := b.Consume(); err != nil {
		t.Fatal(err)
	}

	// A keeps reserving past the end of the ring and wrapping; B keeps
	// reading what A publishes, proving the cross-attach doesn't disturb
	// either side's private cursors.
	first := int(float64(capacity) * 0.8)
	buf, ok = a.Reserve(first)
	if !ok {
		t.Fatalf("Reserve(%d) failed", first)
	}
	for i := range buf {
		buf[i] = byte(i)
	}
	if err := a.Publish(); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Read(first); !ok {
		t.Fatalf("Read(%d) failed", first)
	}
	if err := b.Consume(); err != nil {
		t.Fatal(err)
	}

	second := 2048
	if second > capacity-1 {
		second = capacity - 1
	}
	buf, ok = a.Reserve(second)
	if !ok {
		t.Fatalf("Reserve(%d) failed after wraparound", second)
	}
	binary.LittleEndian.PutUint64(buf[len(buf)-8:], 42)
	if err := a.Publish(); err != nil {
		t.Fatal(err)
	}

	got, ok = b.Read(second)
	if !ok {
		t.Fatalf("Read(%d) failed after wraparound", second)
	}
	if v := binary.LittleEndian.Uint64(got[len(got)-8:]); v != 42 {
		t.Fatalf("trailing sentinel = %d, want 42", v)
	}
}

func TestWithStrictVersionRejectsMismatch(t *testing.T) {
	a := mustCreate(t, 1)

	// Corrupt the on-disk version field (the first 8 bytes of the shared
	// object) directly through the handle, bypassing the mapping, the way
	// a peer running a different build might leave it.
	bad := make([]byte, 8)
	binary.LittleEndian.PutUint64(bad, FormatVersion+1)
	if _, err := unix.Pwrite(a.Handle(), bad, 0); err != nil {
		t.Fatalf("Pwrite: %v", err)
	}

	if _, err := Attach(a.Handle(), WithStrictVersion()); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("Attach(strict) = %v, want ErrVersionMismatch", err)
	}

	// The permissive default still attaches despite the mismatch.
	b, err := Attach(a.Handle())
	if err != nil {
		t.Fatalf("Attach(default): %v", err)
	}
	b.Close()
}

func TestCreateRejectsOversizedPages(t *testing.T) {
	// 1<<60 pages times any page size of 16 bytes or more overflows
	// uint64 in the capacity multiplication.
	huge := uint64(1) << 60
	if _, err := Create(huge); err == nil {
		t.Fatalf("Create(%d) should fail: capacity would overflow", huge)
	} else if !errors.Is(err, ErrSizingFailed) {
		t.Fatalf("Create(%d) = %v, want ErrSizingFailed", huge, err)
	}
}
