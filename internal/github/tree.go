package github

import (
	"fmt"
	"strings"

	"github.com/CodexForgeBR/testmate/internal/api"
)

// Files returns every file path in the tree in depth-first order.
func Files(tree []api.TreeNode) []string {
	var out []string
	var walk func([]api.TreeNode)
	walk = func(nodes []api.TreeNode) {
		for _, n := range nodes {
			if n.Type == api.NodeFile {
				out = append(out, n.Path)
			}
			walk(n.Children)
		}
	}
	walk(tree)
	return out
}

// Find returns the node at path, or nil.
func Find(tree []api.TreeNode, path string) *api.TreeNode {
	path = strings.Trim(path, "/")
	for i := range tree {
		n := &tree[i]
		if n.Path == path {
			return n
		}
		if n.Type == api.NodeDir && strings.HasPrefix(path, n.Path+"/") {
			if found := Find(n.Children, path); found != nil {
				return found
			}
		}
	}
	return nil
}

// ResolveFile checks that path names a file in the tree and returns its
// canonical path.
func ResolveFile(tree []api.TreeNode, path string) (string, error) {
	n := Find(tree, path)
	if n == nil {
		return "", fmt.Errorf("no such file: %s", path)
	}
	if n.Type != api.NodeFile {
		return "", fmt.Errorf("%s is a directory", n.Path)
	}
	return n.Path, nil
}

// CountFiles counts the files in the tree.
func CountFiles(tree []api.TreeNode) int {
	return len(Files(tree))
}
