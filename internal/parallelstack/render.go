package parallelstack

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"
)

const indent = "  "

// WriteText writes one line per node in pre-order, indented by depth. The
// root doesn't produce a line.
func (n *Node) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	n.Walk(func(c *Node) {
		if c.IsRoot() {
			return
		}
		bw.WriteString(strings.Repeat(indent, c.Depth))
		bw.WriteString(c.Function)
		bw.WriteByte('\n')
	})
	return bw.Flush()
}

func (n *Node) String() string {
	var b strings.Builder
	_ = n.WriteText(&b)
	return b.String()
}

type (
	dotWriter struct {
		w     *bufio.Writer
		next  int
		links [][2]int
	}
)

// WriteDOT writes the tree as a Graphviz digraph. Each chain of nodes with a
// single child is drawn as one table, headed by the number of threads going
// through it, and tables are linked where the threads' paths diverge.
func (n *Node) WriteDOT(w io.Writer) error {
	d := dotWriter{w: bufio.NewWriter(w)}
	d.w.WriteString("digraph G {\n")
	d.w.WriteString("  rankdir=BT;\n")
	d.w.WriteString("  node [shape=plaintext];\n")
	for _, c := range n.Children {
		d.table(c)
	}
	for _, l := range d.links {
		fmt.Fprintf(d.w, "  table_%d -> table_%d [arrowsize=2 minlen=2]\n", l[0], l[1])
	}
	d.w.WriteString("}\n")
	return d.w.Flush()
}

func (d *dotWriter) table(start *Node) int {
	id := d.next
	d.next++

	chain := []*Node{start}
	last := start
	for len(last.Children) == 1 {
		last = last.Children[0]
		chain = append(chain, last)
	}

	threads := fmt.Sprintf("%d Thread", start.ThreadCount())
	if start.ThreadCount() > 1 {
		threads += "s"
	}

	fmt.Fprintf(d.w, "  table_%d [label=<\n", id)
	d.w.WriteString("    <table BORDER=\"1\" CELLBORDER=\"1\" CELLPADDING=\"10\" CELLSPACING=\"0\" STYLE=\"ROUNDED\">\n")
	fmt.Fprintf(d.w, "      <tr><td COLSPAN=\"2\" BORDER=\"0\">%s</td></tr>\n", threads)
	// innermost frame on top, the graph grows bottom to top
	for i := len(chain) - 1; i >= 0; i-- {
		fmt.Fprintf(
			d.w,
			"      <tr><td SIDES=\"T\">%d</td><td SIDES=\"LT\">%s</td></tr>\n",
			chain[i].Depth-1,
			html.EscapeString(chain[i].Function),
		)
	}
	d.w.WriteString("    </table>\n")
	d.w.WriteString("  >]\n\n")

	for _, c := range last.Children {
		child := d.table(c)
		d.links = append(d.links, [2]int{id, child})
	}
	return id
}
