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

// Package twenty6 implements a single-producer/single-consumer,
// byte-oriented ring buffer backed by an anonymous shared-memory object.
// The data region is mapped twice into adjacent virtual pages so that any
// record up to the ring's capacity can be addressed as a contiguous byte
// range regardless of where it falls modulo capacity.
package twenty6

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// FormatVersion is the current on-disk/on-memory header layout version.
const FormatVersion uint64 = 1

// sharedHeader occupies the first page of the shared object. Its layout
// is stable across processes and across the version it declares; head and
// tail are the only fields mutated after creation, and only via
// sync/atomic so a concurrently mapped peer observes them coherently.
type sharedHeader struct {
	version uint64
	size    uint64
	head    atomic.Uint64
	tail    atomic.Uint64
}

// PageSize returns the operating system's virtual memory page size, queried
// at runtime. Capacity is always a positive multiple of this value.
func PageSize() int {
	return unix.Getpagesize()
}

func (h *sharedHeader) Version() uint64 { return h.version }
func (h *sharedHeader) Size() uint64    { return h.size }

// loadHead reads the producer-published write cursor with acquire ordering,
// as required before a consumer dereferences bytes it names.
func (h *sharedHeader) loadHead() uint64 { return h.head.Load() }

// storeHead publishes the write cursor with release ordering, making every
// byte reserved since the previous publish visible to an acquiring reader.
func (h *sharedHeader) storeHead(v uint64) { h.head.Store(v) }

// loadTail reads the consumer-committed read cursor with acquire ordering,
// as required before a producer reserves space it believes is free.
func (h *sharedHeader) loadTail() uint64 { return h.tail.Load() }

// storeTail commits the read cursor with release ordering, freeing bytes
// for the producer to reserve again.
func (h *sharedHeader) storeTail(v uint64) { h.tail.Store(v) }
