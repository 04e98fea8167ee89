package backtrace

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

type parserState int

const (
	stateOutsideThread parserState = iota
	stateInsideThread
)

const (
	threadToken   = "Thread"
	maxLineLength = 1024 * 1024
)

// frameRegexp matches a single gdb frame line:
//
//	#<level> [<address> in ]<function> (<parameters>)[ (at|from) <filename>]
var frameRegexp = regexp.MustCompile(
	`^#(?P<level>\d+) +(?:(?P<address>0x[0-9a-fA-F]+) in )?(?P<function>.+) \((?P<parameters>.*)\)(?: (?:at|from) (?P<filename>.+))?$`,
)

var (
	levelIndex      = frameRegexp.SubexpIndex("level")
	addressIndex    = frameRegexp.SubexpIndex("address")
	functionIndex   = frameRegexp.SubexpIndex("function")
	parametersIndex = frameRegexp.SubexpIndex("parameters")
	filenameIndex   = frameRegexp.SubexpIndex("filename")
)

// Parse parses the text printed by gdb for "thread apply all bt".
func Parse(text string) ([]Thread, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader parses gdb backtrace output read from r.
//
// The parser is a two state machine. Outside of a thread block, every line
// except a thread header is ignored. Inside a thread block, a blank line ends
// the block and any other line must be a frame. A line that is neither stops
// the parse with a *FormatError and no threads are returned.
func ParseReader(r io.Reader) ([]Thread, error) {
	var (
		sc      = bufio.NewScanner(r)
		state   = stateOutsideThread
		lineNum int

		threads []Thread
		current *Thread
	)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	for sc.Scan() {
		raw := sc.Text()
		lineNum++
		line := strings.TrimSpace(raw)

		if fields := strings.Fields(line); len(fields) > 0 && fields[0] == threadToken {
			if len(fields) < 2 {
				return nil, &FormatError{Line: lineNum, Text: raw}
			}
			threads = append(threads, Thread{ID: fields[1], Frames: []Frame{}})
			current = &threads[len(threads)-1]
			state = stateInsideThread
			continue
		}

		switch state {
		case stateOutsideThread:
			continue
		case stateInsideThread:
			if line == "" {
				current = nil
				state = stateOutsideThread
				continue
			}
			f, ok := parseFrame(line)
			if !ok {
				return nil, &FormatError{Line: lineNum, Text: raw}
			}
			current.Frames = append(current.Frames, f)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if threads == nil {
		threads = []Thread{}
	}
	return threads, nil
}

func parseFrame(line string) (Frame, bool) {
	m := frameRegexp.FindStringSubmatch(line)
	if m == nil {
		return Frame{}, false
	}
	level, err := strconv.Atoi(m[levelIndex])
	if err != nil {
		return Frame{}, false
	}
	return Frame{
		Level:      level,
		Address:    m[addressIndex],
		Function:   m[functionIndex],
		Parameters: m[parametersIndex],
		Filename:   m[filenameIndex],
	}, true
}
