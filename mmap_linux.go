//go:build linux && (amd64 || arm64)

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
	"unsafe"

	"golang.org/x/sys/unix"
)

// createMemfd allocates an anonymous shared-memory object suitable for
// backing a ring: an unlinked file that lives in page cache. It is created
// with MFD_CLOEXEC, so the descriptor is closed across exec.
func createMemfd(name string) (int, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return -1, newErr(ErrKindHandleAlloc, "memfd_create", err)
	}
	return fd, nil
}

func ftruncateHandle(fd int, size uint64) error {
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return newErr(ErrKindSizing, "ftruncate", err)
	}
	return nil
}

// mapDouble installs the double mapping: a contiguous virtual range of
// length pageSize+2*capacity in which the data region appears twice, back
// to back, aliasing the same physical pages, so any byte range up to
// capacity in length is addressable as a contiguous slice regardless of
// where it falls modulo capacity.
//
// It reserves the full span as an anonymous PROT_NONE mapping first, then
// installs two MAP_FIXED|MAP_SHARED mappings against fd inside that
// reservation, rather than mapping the file directly at a length past its
// end: reserving the address space first means neither fixed mapping ever
// straddles an access to not-yet-remapped memory.
func mapDouble(fd int, pageSize int, capacity uint64) (base unsafe.Pointer, mapLen uintptr, err error) {
	page := uintptr(pageSize)
	cap_ := uintptr(capacity)
	headerAndFirst := page + cap_
	mapLen = page + 2*cap_

	reserve, err := unix.MmapPtr(-1, 0, nil, mapLen,
		unix.PROT_NONE, unix.MAP_ANONYMOUS|unix.MAP_PRIVATE|unix.MAP_NORESERVE)
	if err != nil {
		return nil, 0, newErr(ErrKindMapping, "reserve virtual range", err)
	}

	first, err := unix.MmapPtr(fd, 0, reserve, headerAndFirst,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED)
	if err != nil {
		unix.MunmapPtr(reserve, mapLen)
		return nil, 0, newErr(ErrKindMapping, "map header and first data copy", err)
	}
	if first != reserve {
		unix.MunmapPtr(reserve, mapLen)
		return nil, 0, newErr(ErrKindMapping, "kernel did not honor MAP_FIXED for first mapping", nil)
	}

	mirrorAddr := unsafe.Add(reserve, headerAndFirst)
	mirror, err := unix.MmapPtr(fd, int64(page), mirrorAddr, cap_,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_FIXED|unix.MAP_SHARED)
	if err != nil {
		unix.MunmapPtr(reserve, mapLen)
		return nil, 0, newErr(ErrKindMapping, "map mirror data copy", err)
	}
	if mirror != mirrorAddr {
		unix.MunmapPtr(reserve, mapLen)
		return nil, 0, newErr(ErrKindMapping, "kernel did not honor MAP_FIXED for mirror mapping", nil)
	}

	return reserve, mapLen, nil
}

func unmapDouble(base unsafe.Pointer, mapLen uintptr) error {
	if base == nil {
		return nil
	}
	if err := unix.MunmapPtr(base, mapLen); err != nil {
		return newErr(ErrKindMapping, "munmap", err)
	}
	return nil
}

func closeFD(fd int) error {
	if err := unix.Close(fd); err != nil {
		return newErr(ErrKindMapping, "close", err)
	}
	return nil
}

func fstatSize(fd int) (int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, newErr(ErrKindMapping, "fstat", err)
	}
	return st.Size, nil
}
