// Package spec parses the gridmux layout notation into a tree of
// split and command nodes.
//
// The notation describes how to tile the terminal into panes:
//
//	[ vim : "go test ./..." ]        two panes stacked vertically
//	[ vim .. [ make : htop ] ]       editor beside a vertical stack
//	-r -d 5 "npm run dev"            one pane, restarted 5s after exit
//
// A ':' separator stacks children top-to-bottom, '..' places them
// side-by-side. Separators may not be mixed at one bracket level.
package spec

import (
	"errors"
	"fmt"
)

// Orientation is the axis along which a split divides its rectangle.
type Orientation int

const (
	// Vertical stacks children top-to-bottom (the ':' separator).
	Vertical Orientation = iota
	// Horizontal places children side-by-side (the '..' separator).
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Node is a node in the layout tree: either a *Split or a *Command.
// The set of implementations is closed.
type Node interface {
	node()
}

// Split divides its rectangle among two or more children.
type Split struct {
	Orient   Orientation
	Children []Node
}

func (*Split) node() {}

// Command is a leaf naming one shell command and its per-pane options.
type Command struct {
	// Command is the shell command line run in the pane.
	Command string

	// Focus marks this pane as initially focused. At most one leaf
	// in a tree may set it.
	Focus bool

	// Restart respawns the command after it exits.
	Restart bool

	// Delay, when set, is the number of seconds to wait before a
	// restart. Meaningless without Restart.
	Delay *int

	// Title, when set, overrides the pane label (default: the command).
	Title *string
}

func (*Command) node() {}

// Label returns the pane label for the leaf: the title if one was
// given, otherwise the command itself.
func (c *Command) Label() string {
	if c.Title != nil {
		return *c.Title
	}
	return c.Command
}

// Leaves returns the command leaves of the tree in depth-first,
// left-to-right order. This is the session order: panes are provisioned,
// numbered, and focus-cycled in exactly this order.
func Leaves(root Node) []*Command {
	var out []*Command
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Command:
			out = append(out, n)
		case *Split:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}

// ErrMultipleFocus indicates more than one leaf set the focus option.
var ErrMultipleFocus = errors.New("more than one pane requests focus")

// Validate checks tree-wide invariants that the grammar alone cannot
// express. It must pass before any session is created.
func Validate(root Node) error {
	focused := 0
	for _, leaf := range Leaves(root) {
		if leaf.Focus {
			focused++
		}
	}
	if focused > 1 {
		return fmt.Errorf("%w (%d flagged)", ErrMultipleFocus, focused)
	}
	return nil
}

// FocusIndex returns the index of the leaf flagged for initial focus,
// or 0 when none is flagged. Call Validate first.
func FocusIndex(leaves []*Command) int {
	for i, leaf := range leaves {
		if leaf.Focus {
			return i
		}
	}
	return 0
}
