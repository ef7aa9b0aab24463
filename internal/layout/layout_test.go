package layout

import (
	"errors"
	"testing"

	"github.com/dshills/gridmux/internal/spec"
)

func parse(t *testing.T, src string) spec.Node {
	t.Helper()
	root, err := spec.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return root
}

func TestDivideEven(t *testing.T) {
	segs, err := divide(0, 80, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []segment{{0, 40}, {40, 40}}
	for i, w := range want {
		if segs[i] != w {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], w)
		}
	}
}

func TestDivideRemainder(t *testing.T) {
	segs, err := divide(5, 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []segment{{5, 3}, {8, 3}, {11, 4}}
	for i, w := range want {
		if segs[i] != w {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], w)
		}
	}
	// Last segment absorbs the remainder: l - (n-1)*floor(l/n).
	if segs[2].length != 10-2*3 {
		t.Errorf("last length = %d, want %d", segs[2].length, 4)
	}
}

func TestDivideContiguousCover(t *testing.T) {
	for _, tt := range []struct{ start, length, n int }{
		{0, 24, 2}, {3, 100, 7}, {10, 9, 9}, {0, 1, 1},
	} {
		segs, err := divide(tt.start, tt.length, tt.n)
		if err != nil {
			t.Fatalf("divide(%+v): %v", tt, err)
		}
		at := tt.start
		total := 0
		for i, s := range segs {
			if s.start != at {
				t.Errorf("divide(%+v) segment %d starts at %d, want %d", tt, i, s.start, at)
			}
			at += s.length
			total += s.length
		}
		if total != tt.length {
			t.Errorf("divide(%+v) covers %d cells, want %d", tt, total, tt.length)
		}
	}
}

func TestDivideTooSmall(t *testing.T) {
	if _, err := divide(0, 2, 3); !errors.Is(err, ErrTooSmall) {
		t.Errorf("divide(0,2,3) error = %v, want ErrTooSmall", err)
	}
}

func TestAssignHorizontalHalves(t *testing.T) {
	rects, err := Assign(parse(t, "[ A .. B ]"), Rect{X: 0, Y: 0, W: 80, H: 24})
	if err != nil {
		t.Fatal(err)
	}
	want := []Rect{{0, 0, 40, 24}, {40, 0, 40, 24}}
	if len(rects) != 2 {
		t.Fatalf("rects = %d, want 2", len(rects))
	}
	for i, w := range want {
		if rects[i] != w {
			t.Errorf("rect %d = %v, want %v", i, rects[i], w)
		}
	}
}

func TestAssignVerticalRows(t *testing.T) {
	rects, err := Assign(parse(t, "[ A : B : C ]"), Rect{X: 0, Y: 0, W: 80, H: 10})
	if err != nil {
		t.Fatal(err)
	}
	heights := []int{3, 3, 4}
	for i, h := range heights {
		if rects[i].H != h {
			t.Errorf("row %d height = %d, want %d", i, rects[i].H, h)
		}
		if rects[i].W != 80 || rects[i].X != 0 {
			t.Errorf("row %d does not span full width: %v", i, rects[i])
		}
	}
}

func TestAssignLeafVerbatim(t *testing.T) {
	outer := Rect{X: 2, Y: 3, W: 20, H: 10}
	rects, err := Assign(parse(t, "vim"), outer)
	if err != nil {
		t.Fatal(err)
	}
	if len(rects) != 1 || rects[0] != outer {
		t.Errorf("leaf rect = %v, want %v", rects, outer)
	}
}

// TestAssignPartition checks the partition invariant on a nested tree:
// leaf rectangles cover the root exactly once, no gaps, no overlaps.
func TestAssignPartition(t *testing.T) {
	outer := Rect{X: 0, Y: 0, W: 83, H: 29}
	root := parse(t, "[ a .. [ b : c : [ d .. e .. f ] ] .. g ]")
	rects, err := Assign(root, outer)
	if err != nil {
		t.Fatal(err)
	}

	covered := make([][]int, outer.H)
	for y := range covered {
		covered[y] = make([]int, outer.W)
	}
	for _, r := range rects {
		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				covered[y][x]++
			}
		}
	}
	for y := range covered {
		for x := range covered[y] {
			if covered[y][x] != 1 {
				t.Fatalf("cell (%d,%d) covered %d times", x, y, covered[y][x])
			}
		}
	}
}

func TestAssignTooSmall(t *testing.T) {
	_, err := Assign(parse(t, "[ a : b : c ]"), Rect{W: 80, H: 2})
	if !errors.Is(err, ErrTooSmall) {
		t.Errorf("error = %v, want ErrTooSmall", err)
	}
}
