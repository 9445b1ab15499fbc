package parser

import "github.com/tacogips/dcg/internal/template/model"

// mode is the parsing mode of a context frame.
type mode int

const (
	// staticMode treats lines as literal text with inline directives.
	staticMode mode = iota
	// dynamicMode treats lines as host code.
	dynamicMode
)

// contextFrame is one entry of the context stack.
type contextFrame struct {
	mode mode
	// spaces is the indentation every line must start with while this
	// frame is on top.
	spaces string
	// opener is the node that pushed the frame (NoNode for the bottom frame).
	opener model.NodeID
	// line is the source line of the opener.
	line int
}

// contextStack tracks nesting of static and dynamic parsing modes. The
// bottom frame is static with no indentation and is never popped.
type contextStack struct {
	frames []contextFrame
}

func newContextStack() *contextStack {
	return &contextStack{
		frames: []contextFrame{{mode: staticMode, opener: model.NoNode}},
	}
}

func (s *contextStack) push(f contextFrame) {
	s.frames = append(s.frames, f)
}

// pop removes the top frame. The bottom frame is kept; pop reports false
// when only it remains.
func (s *contextStack) pop() (contextFrame, bool) {
	if len(s.frames) <= 1 {
		return contextFrame{}, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

func (s *contextStack) peek() contextFrame {
	return s.frames[len(s.frames)-1]
}

// depth returns the number of frames above the bottom one.
func (s *contextStack) depth() int {
	return len(s.frames) - 1
}

// outputFrame is one entry of the output stack.
type outputFrame struct {
	key    string
	spaces string
}

// outputStack tracks nesting of @output redirection. Empty means the
// main output.
type outputStack struct {
	frames []outputFrame
}

func (s *outputStack) push(f outputFrame) {
	s.frames = append(s.frames, f)
}

func (s *outputStack) pop() (outputFrame, bool) {
	if len(s.frames) == 0 {
		return outputFrame{}, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

func (s *outputStack) peek() (outputFrame, bool) {
	if len(s.frames) == 0 {
		return outputFrame{}, false
	}
	return s.frames[len(s.frames)-1], true
}

// key returns the active writer key.
func (s *outputStack) key() string {
	if f, ok := s.peek(); ok {
		return f.key
	}
	return model.MainOutputKey
}
