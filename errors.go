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

import "errors"

// ErrKind classifies the fallible constructors' failures. Data-path
// operations (Reserve, Peek, Read) never return an error; unavailability
// is signalled by a false ok return.
type ErrKind int

const (
	// ErrKindHandleAlloc covers memfd_create and similar handle allocation failures.
	ErrKindHandleAlloc ErrKind = iota
	// ErrKindSizing covers ftruncate and overflow failures while sizing a handle.
	ErrKindSizing
	// ErrKindMapping covers mmap/munmap failures.
	ErrKindMapping
	// ErrKindInvalidGeometry covers a handle whose length isn't a valid ring layout.
	ErrKindInvalidGeometry
	// ErrKindInvalidConfiguration covers rejected SetWatermark calls.
	ErrKindInvalidConfiguration
	// ErrKindVersionMismatch covers a header whose version this build won't attach to.
	ErrKindVersionMismatch
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindHandleAlloc:
		return "handle-allocation-failed"
	case ErrKindSizing:
		return "sizing-failed"
	case ErrKindMapping:
		return "mapping-failed"
	case ErrKindInvalidGeometry:
		return "invalid-geometry"
	case ErrKindInvalidConfiguration:
		return "invalid-configuration"
	case ErrKindVersionMismatch:
		return "version-mismatch"
	default:
		return "unknown"
	}
}

// RingError is the concrete error type returned by every fallible
// constructor. It carries the ErrKind so callers can branch with
// errors.Is against the Err* sentinels below without string matching,
// plus the underlying OS error, if any.
type RingError struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *RingError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *RingError) Unwrap() error { return e.Err }

func (e *RingError) Is(target error) bool {
	other, ok := target.(*RingError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newErr(kind ErrKind, msg string, cause error) *RingError {
	return &RingError{Kind: kind, Msg: msg, Err: cause}
}

// Sentinel values usable with errors.Is; only the Kind field is compared.
var (
	ErrHandleAllocFailed    = &RingError{Kind: ErrKindHandleAlloc}
	ErrSizingFailed         = &RingError{Kind: ErrKindSizing}
	ErrMappingFailed        = &RingError{Kind: ErrKindMapping}
	ErrInvalidGeometry      = &RingError{Kind: ErrKindInvalidGeometry}
	ErrInvalidConfiguration = &RingError{Kind: ErrKindInvalidConfiguration}
	ErrVersionMismatch      = &RingError{Kind: ErrKindVersionMismatch}
)

// ErrDetached is returned by Publish/Consume when called on an endpoint
// that has already been closed or was never successfully attached.
var ErrDetached = errors.New("twenty6: endpoint is detached")
