// Package diagnostics renders human-readable snapshots of a ring's four
// cursors. It is kept out of the core package on purpose: its output
// format is advisory only, meant for a human watching a ring, and carries
// no compatibility guarantee of its own.
package diagnostics

import (
	"fmt"
	"io"
	"sort"
)

// Snapshot is a point-in-time read of the four cursors that partition a
// ring into free / reserved / used / consumed spans.
type Snapshot struct {
	Capacity  uint64
	Head      uint64
	Tail      uint64
	LocalHead uint64
	LocalTail uint64
}

type point struct {
	kind  string
	value uint64
	// ord breaks ties between coincident cursors deterministically, in
	// the fixed order Tail, LocalTail, Head, LocalHead.
	ord int
}

// labelOf maps the cursor that ends a span to the name of that span: a
// span running up to Head was published-but-unread ("used"), up to
// LocalHead was reserved-but-unpublished ("reserved"), up to Tail
// (wrapping) was free, and up to LocalTail was read-but-not-yet-consumed
// ("consumed").
func labelOf(kind string) string {
	switch kind {
	case "head":
		return "used"
	case "local_head":
		return "reserved"
	case "tail":
		return "free"
	case "local_tail":
		return "consumed"
	}
	return "?"
}

// Render writes a single-line snapshot such as:
//
//	ring[cap=4096]: consumed=12 used=8 reserved=4 free=4072
func Render(w io.Writer, s Snapshot) error {
	pts := []point{
		{"tail", s.Tail, 0},
		{"local_tail", s.LocalTail, 1},
		{"head", s.Head, 2},
		{"local_head", s.LocalHead, 3},
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].value != pts[j].value {
			return pts[i].value < pts[j].value
		}
		return pts[i].ord < pts[j].ord
	})

	if _, err := fmt.Fprintf(w, "ring[cap=%d]:", s.Capacity); err != nil {
		return err
	}

	consumed := uint64(0)
	for _, p := range pts {
		if p.value == consumed {
			continue
		}
		if _, err := fmt.Fprintf(w, " %s=%d", labelOf(p.kind), p.value-consumed); err != nil {
			return err
		}
		consumed = p.value
	}
	if consumed != s.Capacity {
		if _, err := fmt.Fprintf(w, " %s=%d", labelOf(pts[0].kind), s.Capacity-consumed); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
