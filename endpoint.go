// {{{ Copyright (c) Paul R. Tagliamonte <paultag@gmail.com> 2020-2021
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package twenty6

import (
	"io"
	"unsafe"

	"github.com/cvonelm/twenty6/internal/diagnostics"
)

// State describes where an Endpoint sits in its lifecycle. An Endpoint is
// always used through its pointer, so there is no separate moved-from
// value to track; once the mapping is torn down the endpoint is simply
// Detached.
type State int

const (
	// Detached means Close has been called (or construction failed);
	// operations are undefined and every public method reports it. It is
	// the zero value, so an Endpoint not built by Create or Attach is
	// Detached.
	Detached State = iota
	// Attached means the endpoint owns a live mapping and may perform
	// Reserve/Publish/Peek/Read/Consume.
	Attached
)

func (s State) String() string {
	if s == Attached {
		return "attached"
	}
	return "detached"
}

// Endpoint is one side (or both, for the common single-process test case)
// of a ring buffer. It is not safe for concurrent use by multiple
// goroutines; the caller must externally serialize calls the way the
// underlying protocol assumes a single producer thread and a single
// consumer thread.
type Endpoint struct {
	fd     int
	ownsFD bool

	base     unsafe.Pointer
	data     unsafe.Pointer
	mapLen   uintptr
	pageSize int
	capacity uint64

	hdr *sharedHeader

	localHead uint64
	localTail uint64

	watermark        uint64
	watermarkCB      func(payload any)
	watermarkPayload any

	state State
}

// AttachOption customizes Attach's behavior.
type AttachOption func(*attachConfig)

type attachConfig struct {
	strictVersion bool
}

// WithStrictVersion makes Attach reject a header whose version does not
// equal FormatVersion, or whose declared size does not match the derived
// data length, with ErrVersionMismatch / ErrInvalidGeometry respectively.
// It defaults to off so a freshly created, not-yet-initialized region
// still attaches cleanly and is observed as empty; callers that want the
// stricter check opt into it explicitly.
func WithStrictVersion() AttachOption {
	return func(c *attachConfig) { c.strictVersion = true }
}

// Create allocates a new anonymous shared-memory handle sized to hold
// pages pages of data, installs the double mapping, and zero-initializes
// the header. The returned Endpoint owns the handle and closes it on
// Close.
func Create(pages uint64) (*Endpoint, error) {
	pageSize := PageSize()

	total, err := sizeForPages(pages, pageSize)
	if err != nil {
		return nil, err
	}

	fd, err := createMemfd("twenty6")
	if err != nil {
		return nil, err
	}

	if err := ftruncateHandle(fd, total); err != nil {
		unixCloseBestEffort(fd)
		return nil, err
	}

	ep, err := attach(fd, true, pageSize)
	if err != nil {
		unixCloseBestEffort(fd)
		return nil, err
	}

	ep.hdr.version = FormatVersion
	ep.hdr.size = ep.capacity
	ep.hdr.storeHead(0)
	ep.hdr.storeTail(0)

	return ep, nil
}

// Attach installs the double mapping over an existing handle without
// touching the header. The returned Endpoint does not own fd; the caller
// remains responsible for closing it once every Endpoint over it has been
// closed.
func Attach(fd int, opts ...AttachOption) (*Endpoint, error) {
	cfg := attachConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	ep, err := attach(fd, false, PageSize())
	if err != nil {
		return nil, err
	}

	if cfg.strictVersion {
		if ep.hdr.Version() != FormatVersion {
			unmapDouble(ep.base, ep.mapLen)
			return nil, newErr(ErrKindVersionMismatch, "unexpected header version", nil)
		}
		if ep.hdr.Size() != ep.capacity {
			unmapDouble(ep.base, ep.mapLen)
			return nil, newErr(ErrKindInvalidGeometry, "header size does not match derived data length", nil)
		}
	}

	return ep, nil
}

func attach(fd int, ownsFD bool, pageSize int) (*Endpoint, error) {
	length, err := fstatSize(fd)
	if err != nil {
		return nil, err
	}

	geo, err := deriveGeometry(length, pageSize)
	if err != nil {
		return nil, err
	}

	base, mapLen, err := mapDouble(fd, pageSize, geo.capacity)
	if err != nil {
		return nil, err
	}

	return &Endpoint{
		fd:       fd,
		ownsFD:   ownsFD,
		base:     base,
		data:     unsafe.Add(base, pageSize),
		mapLen:   mapLen,
		pageSize: pageSize,
		capacity: geo.capacity,
		hdr:      (*sharedHeader)(base),
		state:    Attached,
	}, nil
}

// Close releases the mapping and, if this Endpoint owns the underlying
// handle, closes it. Close is idempotent; calling it on an already
// detached Endpoint is a no-op.
func (e *Endpoint) Close() error {
	if e.state == Detached {
		return nil
	}
	err := unmapDouble(e.base, e.mapLen)
	e.state = Detached
	e.base = nil
	e.data = nil
	e.hdr = nil
	if e.ownsFD {
		if cerr := unixCloseBestEffort(e.fd); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// State reports where the endpoint sits in its lifecycle.
func (e *Endpoint) State() State { return e.state }

// Handle exposes the underlying shared-memory file descriptor so it can be
// handed to another process, for instance via internal/fdpass over a
// net.UnixConn.
func (e *Endpoint) Handle() int { return e.fd }

// Size reports the ring's capacity in bytes.
func (e *Endpoint) Size() uint64 { return e.capacity }

// PrintFill writes a human-readable snapshot of the four cursors to w.
// Its output is diagnostic only, meant for humans watching a ring, and may
// change format between versions without notice.
func (e *Endpoint) PrintFill(w io.Writer) error {
	if e.state == Detached {
		return ErrDetached
	}
	return diagnostics.Render(w, e.snapshot())
}

// data0 returns the doubled data region as a byte slice of length
// 2*capacity, offset 0 being the start of the primary mapping and
// capacity..2*capacity-1 its mirror. It exists to let tests observe the
// mirror invariant directly; ring operations never need it since Reserve
// and Peek already hand back correctly-mirrored slices.
func (e *Endpoint) data0() []byte {
	return unsafe.Slice((*byte)(e.data), 2*e.capacity)
}

func (e *Endpoint) snapshot() diagnostics.Snapshot {
	return diagnostics.Snapshot{
		Capacity:  e.capacity,
		Head:      e.hdr.loadHead(),
		Tail:      e.hdr.loadTail(),
		LocalHead: e.localHead,
		LocalTail: e.localTail,
	}
}

func unixCloseBestEffort(fd int) error {
	return closeFD(fd)
}
