package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/spectag/spectag/internal/model"
	"github.com/spectag/spectag/internal/rewrite"
	"github.com/spectag/spectag/internal/tag"
)

func init() {
	a := &Adapter{
		Name:       "rust",
		Extensions: []string{".rs"},
		lang:       rust.GetLanguage(),
		Style:      tag.Style{Prefix: "/// "},
		StripForms: []rewrite.BlockForm{{Prefix: "///"}},
		// Rust tests are inline with production code, so every .rs file is
		// a candidate; non-test files simply yield no locations.
		IsTestFile:     func(path string) bool { return true },
		FindTests:      rustFindTests,
		ExtractComment: rustExtractComment,
	}
	// Attributes must stay closest to the declaration, so the tag block goes
	// after the last #[...] attribute and immediately before the fn line.
	// That is where the function_item node starts, attributes being preceding
	// siblings in this grammar.
	a.InsertMetadata = func(source []byte, loc model.TestLocation, m model.InferredMetadata) ([]byte, error) {
		return insertAboveNode(a, source, loc, m)
	}
	Adapters["rust"] = a
}

// rustFindTests emits function_items carrying a test attribute (#[test],
// #[tokio::test], and friends). Named modules form the suite path. A doc
// comment on an enclosing mod does not propagate to member tests; each test
// carries only its own doc run.
func rustFindTests(root *sitter.Node, source []byte) []model.TestLocation {
	var out []model.TestLocation
	var walk func(n *sitter.Node, path []string)
	walk = func(n *sitter.Node, path []string) {
		switch n.Type() {
		case "mod_item":
			name := childIdentifier(n, source, "identifier")
			next := path
			if name != "" {
				next = appendPath(path, name)
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i), next)
			}
			return
		case "function_item":
			if rustHasTestAttribute(n, source) {
				out = append(out, model.TestLocation{
					Node:  n,
					Line:  nodeLine(n),
					Name:  childIdentifier(n, source, "identifier"),
					Suite: copyPath(path),
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), path)
		}
	}
	walk(root, nil)
	return out
}

// rustHasTestAttribute scans the attribute_item siblings preceding a
// function_item (doc comments may be interleaved) for a test-marking
// attribute.
func rustHasTestAttribute(fn *sitter.Node, source []byte) bool {
	for sib := fn.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
		switch sib.Type() {
		case "attribute_item":
			if strings.Contains(NodeText(sib, source), "test") {
				return true
			}
		case "line_comment", "block_comment":
			continue
		default:
			return false
		}
	}
	return false
}

// rustExtractComment collects the /// doc run above the function, skipping
// interleaved #[...] attribute lines. Adjacency is strict: a blank line ends
// the search. Ordinary // comments are not doc comments and are ineligible.
func rustExtractComment(node *sitter.Node, source []byte) string {
	lines := sourceLines(source)
	i := int(node.StartPoint().Row) - 1

	var run []string
	for i >= 0 {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(trimmed, "///"):
			run = append([]string{lines[i]}, run...)
		case strings.HasPrefix(trimmed, "#["):
			// attribute line between doc run and declaration
		default:
			return strings.Join(run, "\n")
		}
		i--
	}
	return strings.Join(run, "\n")
}
