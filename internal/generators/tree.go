package generators

import (
	"io"
	"sort"
	"strings"

	"github.com/ddddddO/gtree"

	"go.eggybyte.com/stackgen/core/errors"
)

// PrintTree writes the planned file paths as a directory tree rooted at root.
// Paths are sorted so the tree is stable for a given file set.
func PrintTree(w io.Writer, root string, files []File) error {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	sort.Strings(paths)

	tree := gtree.NewRoot(root)
	for _, p := range paths {
		node := tree
		for _, seg := range strings.Split(p, "/") {
			// Add returns the existing child when seg was already added.
			node = node.Add(seg)
		}
	}

	if err := gtree.OutputFromRoot(w, tree); err != nil {
		return errors.Wrap(errors.CodeInternal, "generators.PrintTree", err)
	}
	return nil
}
