// Package lang provides the language adapter registry: one adapter per
// supported host language, each bundling tree-sitter parsing, test location,
// comment extraction, and tag-block insertion for that language's conventions.
package lang

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/spectag/spectag/internal/model"
	"github.com/spectag/spectag/internal/rewrite"
	"github.com/spectag/spectag/internal/tag"
)

// ErrInsertionUnsupported is returned by InsertMetadata when an adapter has no
// structural insertion for the given location. Callers fall back to a plain
// line splice and must record that the fallback was used.
var ErrInsertionUnsupported = errors.New("structural insertion unsupported")

// Adapter holds the per-language configuration and capability set. Adapters
// are registered by init() functions in per-language files and are immutable
// after package initialization.
type Adapter struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// Style wraps rendered tag lines in this language's doc-comment form.
	Style tag.Style

	// StripForms are the doc-comment shapes the line-oriented strip path
	// scans for in this language.
	StripForms []rewrite.BlockForm

	// IsTestFile reports whether a path follows this language's test-file
	// naming convention.
	IsTestFile func(path string) bool

	// FindTests enumerates test definitions in a parsed tree, depth-first,
	// with nesting paths captured by value at emission time.
	FindTests func(root *sitter.Node, source []byte) []model.TestLocation

	// ExtractComment returns the doc-comment text associated with a test
	// node per this language's placement and adjacency rules, or "".
	ExtractComment func(node *sitter.Node, source []byte) string

	// InsertMetadata returns a new source text with a rendered tag block
	// inserted at this language's insertion point for loc. Inserting into a
	// test that already carries a tag block is a no-op, never a duplicate.
	InsertMetadata func(source []byte, loc model.TestLocation, m model.InferredMetadata) ([]byte, error)
}

// GetLanguage returns the tree-sitter Language pointer.
func (a *Adapter) GetLanguage() *sitter.Language {
	return a.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe).
func (a *Adapter) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(a.lang)
	return p
}

// ParseFile parses source with a fresh parser. The returned tree must be
// closed by the caller; a nil root or parser error is a parse failure.
func (a *Adapter) ParseFile(ctx context.Context, source []byte) (*sitter.Tree, error) {
	tree, err := a.NewParser().ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", a.Name, err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("parsing %s source: no tree produced", a.Name)
	}
	return tree, nil
}

// Adapters maps language names to their adapter.
// Populated by init() functions in per-language files.
var Adapters = map[string]*Adapter{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, a := range Adapters {
			for _, ext := range a.Extensions {
				extensionMap[ext] = a.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// ForPath returns the adapter for a file path, or nil if unsupported.
func ForPath(path string) *Adapter {
	name := ForExtension(filepath.Ext(path))
	if name == "" {
		return nil
	}
	return Adapters[name]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// nodeLine returns the 1-based starting line of a node.
func nodeLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// childIdentifier returns the text of the first child of one of the given
// types, or "".
func childIdentifier(node *sitter.Node, source []byte, types ...string) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		for _, t := range types {
			if child.Type() == t {
				return NodeText(child, source)
			}
		}
	}
	return ""
}

// appendPath returns a fresh slice extending path with name. The traversal
// threads an immutable path value through recursion; emitted locations must
// never share a live slice with the walker.
func appendPath(path []string, name string) []string {
	next := make([]string, 0, len(path)+1)
	next = append(next, path...)
	return append(next, name)
}

// copyPath snapshots the current path for emission.
func copyPath(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	return append([]string(nil), path...)
}

// insertAboveNode inserts a rendered tag block immediately before the node's
// first line, indented to match it. Used by languages whose tag comment sits
// directly above the declaration. No-op when a tag block is already present.
func insertAboveNode(a *Adapter, source []byte, loc model.TestLocation, m model.InferredMetadata) ([]byte, error) {
	if tag.ContainsMarker(a.ExtractComment(loc.Node, source)) {
		return source, nil
	}
	line := nodeLine(loc.Node)
	indent := rewrite.Indent(source, line)
	return rewrite.InsertAt(source, line, tag.Render(m, indent, a.Style)), nil
}

// sourceLines splits source for line-based comment scanning.
func sourceLines(source []byte) []string {
	return strings.Split(string(source), "\n")
}
