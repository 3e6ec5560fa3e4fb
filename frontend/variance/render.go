package variance

import (
	"fmt"
	"strings"

	"github.com/cottand/variance/frontend/ast"
)

// Frame is one rendered line of a reason chain: a position and the message
// to show at it.
type Frame struct {
	Pos     ast.Positioner
	Message string
}

func tagSign(t PolTag) string {
	switch t {
	case Cov:
		return "+"
	case Contra:
		return "-"
	default:
		return "I"
	}
}

func tagWord(t PolTag) string {
	switch t {
	case Cov:
		return "covariant"
	case Contra:
		return "contravariant"
	default:
		return "invariant"
	}
}

// RenderChain renders a reason stack into the frames a reporter should
// show, per spec.md §4.2: a single-entry stack renders only its leaf
// message; a multi-entry stack is prefixed with a summary at the enclosing
// (outermost) position, followed by one prefixed line per frame,
// innermost-first.
func RenderChain(stack ReasonStack) []Frame {
	frames := make([]Reason, 0, stack.Len())
	for r := range stack.All() {
		frames = append(frames, r)
	}
	if len(frames) == 0 {
		return nil
	}
	if len(frames) == 1 {
		return []Frame{{Pos: frames[0].Pos, Message: frames[0].Descr.Message()}}
	}

	signs := &strings.Builder{}
	for _, f := range frames {
		signs.WriteString(tagSign(f.Tag))
	}

	outermost := frames[len(frames)-1]
	rendered := make([]Frame, 0, len(frames)+1)
	rendered = append(rendered, Frame{
		Pos:     outermost.Pos,
		Message: fmt.Sprintf("this position is %s because it is the composition of %s", tagWord(frames[0].Tag), signs.String()),
	})
	for _, f := range frames {
		rendered = append(rendered, Frame{
			Pos:     f.Pos,
			Message: fmt.Sprintf("%s %s", tagSign(f.Tag), f.Descr.Message()),
		})
	}
	return rendered
}
