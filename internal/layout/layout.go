// Package layout turns a spec tree and an outer rectangle into one
// rectangle per command leaf. Children of a split exactly partition the
// parent along one axis and inherit its full extent on the other.
package layout

import (
	"errors"
	"fmt"

	"github.com/dshills/gridmux/internal/spec"
)

// Rect is a rectangle in cell units.
type Rect struct {
	X, Y int
	W, H int
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// ErrTooSmall indicates a split requested more panes than the available
// cells can hold.
var ErrTooSmall = errors.New("screen too small")

// Assign computes the rectangle for every command leaf of root within
// outer. Results are in the same depth-first, left-to-right order as
// spec.Leaves, so rects[i] belongs to session i.
func Assign(root spec.Node, outer Rect) ([]Rect, error) {
	var rects []Rect
	if err := assign(root, outer, &rects); err != nil {
		return nil, err
	}
	return rects, nil
}

func assign(node spec.Node, r Rect, out *[]Rect) error {
	split, ok := node.(*spec.Split)
	if !ok {
		// Leaves take their rectangle verbatim.
		*out = append(*out, r)
		return nil
	}

	n := len(split.Children)
	if split.Orient == spec.Vertical {
		segs, err := divide(r.Y, r.H, n)
		if err != nil {
			return err
		}
		for i, child := range split.Children {
			cr := Rect{X: r.X, Y: segs[i].start, W: r.W, H: segs[i].length}
			if err := assign(child, cr, out); err != nil {
				return err
			}
		}
		return nil
	}

	segs, err := divide(r.X, r.W, n)
	if err != nil {
		return err
	}
	for i, child := range split.Children {
		cr := Rect{X: segs[i].start, Y: r.Y, W: segs[i].length, H: r.H}
		if err := assign(child, cr, out); err != nil {
			return err
		}
	}
	return nil
}

type segment struct {
	start  int
	length int
}

// divide cuts [start, start+length) into n contiguous segments of
// floor(length/n) cells each; the last segment absorbs the remainder.
func divide(start, length, n int) ([]segment, error) {
	k := length / n
	if k == 0 {
		return nil, fmt.Errorf("%w: %d cells for %d panes", ErrTooSmall, length, n)
	}
	segs := make([]segment, n)
	for i := 0; i < n; i++ {
		segs[i] = segment{start: start + i*k, length: k}
	}
	segs[n-1].length = length - (n-1)*k
	return segs, nil
}
