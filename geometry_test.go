package twenty6

import "testing"

func TestDeriveGeometryRejectsNonMultipleLength(t *testing.T) {
	if _, err := deriveGeometry(4097, 4096); err == nil {
		t.Fatalf("length not a multiple of the page size should be rejected")
	}
}

func TestDeriveGeometryRejectsHeaderOnlyLength(t *testing.T) {
	if _, err := deriveGeometry(4096, 4096); err == nil {
		t.Fatalf("a length of exactly one page has no data region and should be rejected")
	}
}

func TestDeriveGeometryAccepts(t *testing.T) {
	geo, err := deriveGeometry(4096*3, 4096)
	if err != nil {
		t.Fatalf("deriveGeometry: %v", err)
	}
	if geo.capacity != 4096*2 {
		t.Fatalf("capacity = %d, want %d", geo.capacity, 4096*2)
	}
}

func TestSizeForPagesRejectsZero(t *testing.T) {
	if _, err := sizeForPages(0, 4096); err == nil {
		t.Fatalf("sizeForPages(0, ...) should be rejected")
	}
}

func TestSizeForPagesOverflow(t *testing.T) {
	if _, err := sizeForPages(1<<60, 4096); err == nil {
		t.Fatalf("sizeForPages should reject a pages count that overflows capacity arithmetic")
	}
}

func TestSizeForPagesNormal(t *testing.T) {
	total, err := sizeForPages(4, 4096)
	if err != nil {
		t.Fatalf("sizeForPages: %v", err)
	}
	if want := uint64(5 * 4096); total != want {
		t.Fatalf("total = %d, want %d", total, want)
	}
}
