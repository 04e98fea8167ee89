// Package render writes parallel stacks in the formats offered by the CLI and
// the HTTP service.
package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/getsentry/parallelstacks/internal/backtrace"
	"github.com/getsentry/parallelstacks/internal/parallelstack"
)

type Format string

const (
	Text    Format = "text"
	JSON    Format = "json"
	DOT     Format = "dot"
	Threads Format = "threads"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return Text, nil
	case Text, JSON, DOT, Threads:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case DOT:
		return "text/vnd.graphviz; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Write renders the merged tree, or the parsed threads for the Threads format.
func Write(w io.Writer, f Format, threads []backtrace.Thread, tree *parallelstack.Node) error {
	switch f {
	case Text:
		return tree.WriteText(w)
	case DOT:
		return tree.WriteDOT(w)
	case JSON:
		return json.NewEncoder(w).Encode(tree)
	case Threads:
		bw := bufio.NewWriter(w)
		for _, t := range threads {
			bw.WriteString(t.String())
			bw.WriteByte('\n')
		}
		return bw.Flush()
	}
	return fmt.Errorf("unknown output format %q", f)
}
