package cookiehook

import (
	"fmt"
	"runtime"
)

// DefaultTraceDepth is the number of frames captured when no depth is configured.
const DefaultTraceDepth = 32

// Frame describes one active call frame at the moment of interception.
type Frame struct {
	Function string
	File     string
	Line     int
}

// String renders the frame as "function(file:line)".
func (f Frame) String() string {
	return fmt.Sprintf("%s(%s:%d)", f.Function, f.File, f.Line)
}

// CaptureCallTrace returns up to depth frames of the current goroutine's call stack.
// skip=0 starts at the caller of CaptureCallTrace; depth=0 means DefaultTraceDepth.
func CaptureCallTrace(skip, depth int) []Frame {
	if depth <= 0 {
		depth = DefaultTraceDepth
	}

	pcs := make([]uintptr, depth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	trace := make([]Frame, 0, n)

	for {
		frame, more := frames.Next()
		trace = append(trace, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})

		if !more || len(trace) == depth {
			break
		}
	}

	return trace
}
