package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/spectag/spectag/internal/model"
	"github.com/spectag/spectag/internal/rewrite"
	"github.com/spectag/spectag/internal/tag"
)

func init() {
	Adapters["python"] = &Adapter{
		Name:       "python",
		Extensions: []string{".py"},
		lang:       python.GetLanguage(),
		Style:      tag.Style{Open: `"""`, Close: `"""`},
		StripForms: []rewrite.BlockForm{
			{Open: `"""`, Close: `"""`},
			{Open: `'''`, Close: `'''`},
		},
		IsTestFile: func(path string) bool {
			base := path[strings.LastIndexByte(path, '/')+1:]
			return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")
		},
		FindTests:      pyFindTests,
		ExtractComment: pyExtractComment,
		InsertMetadata: pyInsertMetadata,
	}
}

// pyFindTests emits test_-prefixed function definitions. Enclosing class
// names (pytest-style Test classes) form the suite path.
func pyFindTests(root *sitter.Node, source []byte) []model.TestLocation {
	var out []model.TestLocation
	var walk func(n *sitter.Node, path []string)
	walk = func(n *sitter.Node, path []string) {
		switch n.Type() {
		case "class_definition":
			name := childIdentifier(n, source, "identifier")
			next := path
			if name != "" {
				next = appendPath(path, name)
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i), next)
			}
			return
		case "function_definition":
			name := childIdentifier(n, source, "identifier")
			if strings.HasPrefix(name, "test") {
				out = append(out, model.TestLocation{
					Node:  n,
					Line:  nodeLine(n),
					Name:  name,
					Suite: copyPath(path),
				})
				return
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), path)
		}
	}
	walk(root, nil)
	return out
}

// pyExtractComment returns the function's docstring: a string expression as
// the first statement of the body. Python carries tags inside the body, not
// in a preceding # comment; ordinary # comments are never scanned.
func pyExtractComment(node *sitter.Node, source []byte) string {
	body := pyBody(node)
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	if str := first.NamedChild(0); str.Type() == "string" {
		return NodeText(str, source)
	}
	return ""
}

// pyInsertMetadata inserts the tag block as a docstring: the first statement
// inside the function body, at the body's indentation. Single-line bodies
// (def f(): pass) have no line of their own to splice into and report
// ErrInsertionUnsupported instead.
func pyInsertMetadata(source []byte, loc model.TestLocation, m model.InferredMetadata) ([]byte, error) {
	a := Adapters["python"]
	if tag.ContainsMarker(pyExtractComment(loc.Node, source)) {
		return source, nil
	}
	body := pyBody(loc.Node)
	if body == nil || body.NamedChildCount() == 0 {
		return nil, ErrInsertionUnsupported
	}
	first := body.NamedChild(0)
	if first.StartPoint().Row == loc.Node.StartPoint().Row {
		return nil, ErrInsertionUnsupported
	}
	line := nodeLine(first)
	indent := rewrite.Indent(source, line)
	return rewrite.InsertAt(source, line, tag.Render(m, indent, a.Style)), nil
}

func pyBody(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "block" {
			return child
		}
	}
	return nil
}
