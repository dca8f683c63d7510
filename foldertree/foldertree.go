// Package foldertree builds a virtual, case-insensitive directory view over
// an entry.Table, the way the original C++ implementation's archive_folder
// wraps an archive for convenient Name -> child lookups, generalized here to
// a read-only tree built once and walked many times by Discovery.
package foldertree

import (
	"sort"
	"strings"

	"github.com/pixelfinder/shimejifinder/entry"
	"github.com/pixelfinder/shimejifinder/pathutil"
)

// Node is a virtual directory. Children are owned by their parent in two
// case-insensitive maps (folders, files); Parent is a non-owning back
// reference. The root's Parent points to itself, a sentinel that makes
// upward walks ("blacklist climb", relative_file("../x")) trivially
// terminate instead of needing a nil check at every step.
type Node struct {
	Name    string // original-cased display name
	Parent  *Node
	folders map[string]*Node // lower(name) -> child
	files   map[string]int   // lower(name) -> index into the owning Table
	table   *entry.Table
}

// Tree is a FolderTree built once from an entry.Table snapshot.
type Tree struct {
	Root  *Node
	table *entry.Table
}

// Build constructs the tree from every entry in tbl, optionally stripping a
// rootPrefix before walking each path's components (used when a nested
// archive's entries already carry a "nested/" prefix that should not become
// part of the virtual tree itself). Pass "" for no stripping.
func Build(tbl *entry.Table, rootPrefix string) *Tree {
	root := &Node{Name: "", folders: map[string]*Node{}, files: map[string]int{}, table: tbl}
	root.Parent = root

	t := &Tree{Root: root, table: tbl}

	for pos, e := range tbl.All() {
		p := e.Path
		if rootPrefix != "" {
			p = strings.TrimPrefix(p, rootPrefix)
			p = strings.TrimPrefix(p, "/")
		}
		t.insert(p, pos)
	}
	return t
}

func (t *Tree) insert(path string, pos int) {
	parts := strings.Split(path, "/")
	cur := t.Root
	for i, part := range parts {
		if part == "" {
			continue
		}
		last := i == len(parts)-1
		lower := pathutil.ToLower(part)
		if last {
			cur.files[lower] = pos
			return
		}
		child, ok := cur.folders[lower]
		if !ok {
			child = &Node{Name: part, Parent: cur, folders: map[string]*Node{}, files: map[string]int{}, table: t.table}
			cur.folders[lower] = child
		}
		cur = child
	}
}

// FolderNamed performs a case-insensitive local lookup for a child
// directory.
func (n *Node) FolderNamed(name string) *Node {
	return n.folders[pathutil.ToLower(name)]
}

// EntryNamed performs a case-insensitive local lookup for a file directly
// inside this node, returning the backing entry.Entry.
func (n *Node) EntryNamed(name string) (*entry.Entry, bool) {
	pos, ok := n.files[pathutil.ToLower(name)]
	if !ok {
		return nil, false
	}
	return n.table.Get(pos)
}

// EntryPos is like EntryNamed but returns the Table position instead of the
// Entry value, for callers that attach Targets through Table.AddTarget.
func (n *Node) EntryPos(name string) (int, bool) {
	pos, ok := n.files[pathutil.ToLower(name)]
	return pos, ok
}

// Folders returns every direct child directory, lower-cased name to Node
// (the Node keeps the original-cased Name), for callers that need to iterate (Discovery's BFS, the Shimeji-EE
// bundle scan).
func (n *Node) Folders() map[string]*Node {
	return n.folders
}

// ParentNode returns the parent node, or itself at the root.
func (n *Node) ParentNode() *Node {
	return n.Parent
}

// IsRoot reports whether this node is the tree root (Parent == self).
func (n *Node) IsRoot() bool {
	return n.Parent == n
}

// RelativeFile resolves a '/'-separated path from this node, honoring "."
// and ".." components. Walking past the root clamps at the root instead of
// erroring.
func (n *Node) RelativeFile(path string) (*entry.Entry, bool) {
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")
	cur := n
	for i, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			cur = cur.Parent
		default:
			if i == len(parts)-1 {
				return cur.EntryNamed(part)
			}
			next := cur.FolderNamed(part)
			if next == nil {
				return nil, false
			}
			cur = next
		}
	}
	return nil, false
}

// sortedChildren returns this node's child directories ordered by
// lower-cased name, so BFS visits folders in a stable order regardless of
// Go's randomized map iteration; discovery must attach identical targets
// across runs of the same archive.
func (n *Node) sortedChildren() []*Node {
	keys := make([]string, 0, len(n.folders))
	for k := range n.folders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Node, 0, len(keys))
	for _, k := range keys {
		out = append(out, n.folders[k])
	}
	return out
}

// BFS walks every Node in the tree breadth-first, starting at the root, in
// a deterministic order, calling visit for each. Discovery's Phase A is
// built on this.
func (t *Tree) BFS(visit func(*Node)) {
	queue := []*Node{t.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visit(n)
		queue = append(queue, n.sortedChildren()...)
	}
}
