package backtrace

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is matched by every *FormatError.
var ErrInvalidFormat = errors.New("invalid backtrace format")

// FormatError reports a line inside a thread block that isn't a frame.
type FormatError struct {
	Line int
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("gdb output line %d: %q", e.Line, e.Text)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}
