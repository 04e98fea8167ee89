// Package backtrace parses the output of gdb's "thread apply all bt" command.
package backtrace

import (
	"fmt"
	"strings"
)

type (
	Frame struct {
		Level      int    `json:"level"`
		Address    string `json:"address,omitempty"`
		Function   string `json:"function"`
		Parameters string `json:"parameters"`
		Filename   string `json:"filename,omitempty"`
	}

	// Thread holds the frames reported for one thread, innermost first.
	Thread struct {
		ID     string  `json:"id"`
		Frames []Frame `json:"frames"`
	}
)

func (f Frame) String() string {
	return fmt.Sprintf(
		"level: %d, address: '%s', function: '%s', parameters: '%s', filename: '%s'",
		f.Level,
		f.Address,
		f.Function,
		f.Parameters,
		f.Filename,
	)
}

func (t Thread) String() string {
	var b strings.Builder
	b.WriteString("Thread ")
	b.WriteString(t.ID)
	for _, f := range t.Frames {
		b.WriteString("\n  ")
		b.WriteString(f.String())
	}
	return b.String()
}

// Outermost returns the frame at position i counting from the thread's
// entry point. It returns false when the thread has no frame that deep.
func (t Thread) Outermost(i int) (Frame, bool) {
	if i < 0 || i >= len(t.Frames) {
		return Frame{}, false
	}
	return t.Frames[len(t.Frames)-i-1], true
}
