package twenty6

// geometry describes the derived layout of a shared object: one header
// page followed by a capacity-byte data region, where capacity is a
// positive multiple of the page size.
type geometry struct {
	pageSize int
	capacity uint64
	total    uint64
}

// deriveGeometry validates a shared object's total length: it must be a
// multiple of the page size, and it must be more than exactly one page
// (there must be a data region beyond the header).
func deriveGeometry(totalLen int64, pageSize int) (geometry, error) {
	if pageSize <= 0 {
		return geometry{}, newErr(ErrKindInvalidGeometry, "non-positive page size", nil)
	}
	if totalLen <= 0 || totalLen%int64(pageSize) != 0 {
		return geometry{}, newErr(ErrKindInvalidGeometry, "length is not a multiple of the page size", nil)
	}
	if totalLen == int64(pageSize) {
		return geometry{}, newErr(ErrKindInvalidGeometry, "no data region: length equals exactly one page", nil)
	}
	capacity := uint64(totalLen) - uint64(pageSize)
	return geometry{
		pageSize: pageSize,
		capacity: capacity,
		total:    uint64(totalLen),
	}, nil
}

// sizeForPages computes the total handle length (pages+1)*pageSize,
// guarding against the overflow a caller-controlled pages count could
// otherwise cause.
func sizeForPages(pages uint64, pageSize int) (uint64, error) {
	if pages == 0 {
		return 0, newErr(ErrKindSizing, "pages must be >= 1", nil)
	}
	pgs := uint64(pageSize)
	capacity := pages * pgs
	if pgs != 0 && capacity/pgs != pages {
		return 0, newErr(ErrKindSizing, "capacity overflows uint64", nil)
	}
	total := capacity + pgs
	if total < capacity {
		return 0, newErr(ErrKindSizing, "total size overflows uint64", nil)
	}
	return total, nil
}
