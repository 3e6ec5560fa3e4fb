package variance

import (
	"iter"

	"github.com/cottand/variance/frontend/ast"
)

// Reason is a single provenance record: the position that induced a
// polarity, the syntactic role it played, and the polarity tag that
// resulted. Immutable, per spec.md §3.
type Reason struct {
	Pos   ast.Positioner
	Descr PosDescr
	Tag   PolTag
}

// PosReason is the (position, descriptor) pair a caller supplies to flip or
// compose before the resulting tag is known; flip/compose fill in Tag.
type PosReason struct {
	Pos   ast.Positioner
	Descr PosDescr
}

// reasonNode is one link of a persistent, tail-sharing singly linked list.
// Several traversal branches routinely extend the same prefix (e.g. a tuple
// of three elements all descend from the same enclosing reason), so nodes
// are never mutated once constructed; only new heads are allocated.
type reasonNode struct {
	reason Reason
	tail   *reasonNode
}

// ReasonStack is an append-only, immutable, innermost-first chain of
// Reasons: the head is the innermost (leaf) context, and walking the tail
// moves outward to enclosing constructs. The zero value is the empty stack.
type ReasonStack struct {
	head *reasonNode
}

// SingleReason builds a one-element stack, as used by initial-from-annotation
// and by compose when an Inv result discards the prior chain (spec.md §4.1).
func SingleReason(r Reason) ReasonStack {
	return ReasonStack{}.Push(r)
}

// Push returns a new stack with r as its new innermost frame. The receiver
// is left untouched; its tail is shared with the result.
func (s ReasonStack) Push(r Reason) ReasonStack {
	return ReasonStack{head: &reasonNode{reason: r, tail: s.head}}
}

// Head returns the innermost reason and whether the stack is non-empty.
func (s ReasonStack) Head() (Reason, bool) {
	if s.head == nil {
		return Reason{}, false
	}
	return s.head.reason, true
}

// Len counts the frames in the stack.
func (s ReasonStack) Len() int {
	n := 0
	for node := s.head; node != nil; node = node.tail {
		n++
	}
	return n
}

// Empty reports whether the stack carries no frames.
func (s ReasonStack) Empty() bool { return s.head == nil }

// All iterates the stack innermost-first.
func (s ReasonStack) All() iter.Seq[Reason] {
	return func(yield func(Reason) bool) {
		for node := s.head; node != nil; node = node.tail {
			if !yield(node.reason) {
				return
			}
		}
	}
}

// WithRefinedHeadPosition rebuilds the stack's head frame at a new,
// more precise position, preserving the head's descriptor and tag. This is
// a non-destructive rebuild: a new head node is allocated, the old one (and
// the rest of the chain) is left as-is, per the Design Notes' "Position
// refinement" note and spec.md §4.4's generic-occurrence rule. A no-op on
// an empty stack.
func (s ReasonStack) WithRefinedHeadPosition(pos ast.Positioner) ReasonStack {
	if s.head == nil {
		return s
	}
	refined := s.head.reason
	refined.Pos = pos
	return ReasonStack{head: &reasonNode{reason: refined, tail: s.head.tail}}
}
