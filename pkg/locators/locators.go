// Package locators decides whether a breakpoint source belongs to the code
// being debugged or to dependencies and the Go runtime.
package locators

import (
	"path/filepath"
	"strings"
)

// excluded path fragments never hold user code, even under the source root.
var excluded = []string{
	"/vendor/",
	"/.git/",
	"/pkg/mod/",
	"/runtime/",
	"/reflect/",
}

// Locator classifies source paths relative to Root.
type Locator struct {
	Root string
}

// New returns a Locator for root made absolute. An empty root gives a Locator
// that accepts every path.
func New(root string) (*Locator, error) {
	if root == "" {
		return &Locator{}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Locator{Root: filepath.Clean(abs)}, nil
}

// IsUserCodeFile reports whether path is inside the source root and outside
// vendored, module cache and runtime directories. Sources without a path,
// such as those identified only by sourceReference, are accepted.
func (l *Locator) IsUserCodeFile(path string) bool {
	if l == nil || l.Root == "" || path == "" {
		return true
	}
	abs := filepath.ToSlash(filepath.Clean(path))
	if !filepath.IsAbs(path) {
		abs = filepath.ToSlash(filepath.Join(l.Root, path))
	}
	root := filepath.ToSlash(l.Root)
	if abs != root && !strings.HasPrefix(abs, strings.TrimSuffix(root, "/")+"/") {
		return false
	}
	rel := "/" + strings.TrimPrefix(abs, root)
	for _, fragment := range excluded {
		if strings.Contains(rel, fragment) {
			return false
		}
	}
	return true
}
