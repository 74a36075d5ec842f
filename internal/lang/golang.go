package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/spectag/spectag/internal/model"
	"github.com/spectag/spectag/internal/rewrite"
	"github.com/spectag/spectag/internal/tag"
)

func init() {
	a := &Adapter{
		Name:       "go",
		Extensions: []string{".go"},
		lang:       golang.GetLanguage(),
		Style:      tag.Style{Prefix: "// "},
		StripForms: []rewrite.BlockForm{{Prefix: "//"}},
		IsTestFile: func(path string) bool {
			return strings.HasSuffix(path, "_test.go")
		},
		FindTests:      goFindTests,
		ExtractComment: goExtractComment,
	}
	a.InsertMetadata = func(source []byte, loc model.TestLocation, m model.InferredMetadata) ([]byte, error) {
		return insertAboveNode(a, source, loc, m)
	}
	Adapters["go"] = a
}

// goFindTests emits one location per top-level TestXxx function taking
// *testing.T. Subtests registered at runtime via t.Run are intentionally not
// enumerated; only the enclosing declared Test function is. Go has no
// grouping construct, so suite paths are always empty.
func goFindTests(root *sitter.Node, source []byte) []model.TestLocation {
	var out []model.TestLocation
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "function_declaration" && goIsTestFunc(n, source) {
			out = append(out, model.TestLocation{
				Node: n,
				Line: nodeLine(n),
				Name: childIdentifier(n, source, "identifier"),
			})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func goIsTestFunc(n *sitter.Node, source []byte) bool {
	name := childIdentifier(n, source, "identifier")
	if !strings.HasPrefix(name, "Test") {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "parameter_list" {
			return strings.Contains(NodeText(child, source), "*testing.T")
		}
	}
	return false
}

// goExtractComment collects the // comment run directly above the function.
// Go doc comments require strict adjacency: a blank line between the run and
// the declaration breaks the association.
func goExtractComment(node *sitter.Node, source []byte) string {
	lines := sourceLines(source)
	i := int(node.StartPoint().Row) - 1

	var run []string
	for i >= 0 {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "//") {
			break
		}
		run = append([]string{lines[i]}, run...)
		i--
	}
	return strings.Join(run, "\n")
}
