// Package parallelstack merges per-thread backtraces into a single tree,
// grouping threads by the frames they share starting from their entry point.
package parallelstack

import (
	"github.com/getsentry/parallelstacks/internal/backtrace"
)

type (
	Node struct {
		Function  string   `json:"function,omitempty"`
		Depth     int      `json:"depth"`
		ThreadIDs []string `json:"thread_ids"`
		Children  []*Node  `json:"children,omitempty"`
	}

	Option func(*options)

	options struct {
		maxDepth int
	}

	group struct {
		function string
		threads  []*backtrace.Thread
	}
)

// WithMaxDepth stops the merge after n frames counted from the entry point.
// A value of 0 or less means no limit.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// Aggregate builds the parallel stacks tree of threads. The returned root
// has no function and represents every thread of the input.
func Aggregate(threads []backtrace.Thread, opts ...Option) *Node {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	subset := make([]*backtrace.Thread, 0, len(threads))
	for i := range threads {
		subset = append(subset, &threads[i])
	}
	return aggregate(subset, "", 0, o)
}

func aggregate(threads []*backtrace.Thread, function string, depth int, o options) *Node {
	n := &Node{
		Function:  function,
		Depth:     depth,
		ThreadIDs: make([]string, 0, len(threads)),
	}
	for _, t := range threads {
		n.ThreadIDs = append(n.ThreadIDs, t.ID)
	}
	if o.maxDepth > 0 && depth >= o.maxDepth {
		return n
	}

	// groups keeps functions in the order they are first seen.
	var groups []group
	index := make(map[string]int)
	for _, t := range threads {
		f, ok := t.Outermost(depth)
		if !ok {
			continue
		}
		i, exists := index[f.Function]
		if !exists {
			i = len(groups)
			index[f.Function] = i
			groups = append(groups, group{function: f.Function})
		}
		groups[i].threads = append(groups[i].threads, t)
	}

	for _, g := range groups {
		n.Children = append(n.Children, aggregate(g.threads, g.function, depth+1, o))
	}
	return n
}

// IsRoot reports whether n is the synthetic root of a tree.
func (n *Node) IsRoot() bool {
	return n.Function == ""
}

// ThreadCount returns how many threads go through n.
func (n *Node) ThreadCount() int {
	return len(n.ThreadIDs)
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(f func(*Node)) {
	f(n)
	for _, c := range n.Children {
		c.Walk(f)
	}
}
