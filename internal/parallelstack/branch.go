package parallelstack

// Branch is a path from the root down to the node where some threads stop
// being merged, either because their stack ends or because it is the deepest
// node of the tree.
type Branch struct {
	Functions []string `json:"functions"`
	ThreadIDs []string `json:"thread_ids"`
}

// Branches lists, in pre-order, every node some threads end at, along with
// those threads. Threads without any frame are not reported.
func (n *Node) Branches() []Branch {
	var branches []Branch
	n.branches(nil, &branches)
	return branches
}

func (n *Node) branches(path []string, out *[]Branch) {
	if !n.IsRoot() {
		path = append(path, n.Function)
		continued := make(map[string]struct{})
		for _, c := range n.Children {
			for _, id := range c.ThreadIDs {
				continued[id] = struct{}{}
			}
		}
		var ended []string
		for _, id := range n.ThreadIDs {
			if _, ok := continued[id]; !ok {
				ended = append(ended, id)
			}
		}
		if len(ended) > 0 {
			*out = append(*out, Branch{
				Functions: append([]string(nil), path...),
				ThreadIDs: ended,
			})
		}
	}
	for _, c := range n.Children {
		c.branches(path, out)
	}
}
