package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/spectag/spectag/internal/model"
	"github.com/spectag/spectag/internal/rewrite"
	"github.com/spectag/spectag/internal/tag"
)

func init() {
	a := &Adapter{
		Name:       "javascript",
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		lang:       javascript.GetLanguage(),
		Style:      tag.Style{Open: "/**", Close: " */", Prefix: " * "},
		StripForms: []rewrite.BlockForm{{Open: "/**", Close: "*/"}},
		IsTestFile: jsIsTestFile,
		FindTests:  jsFindTests,
		ExtractComment: func(node *sitter.Node, source []byte) string {
			return jsExtractComment(node, source)
		},
	}
	a.InsertMetadata = func(source []byte, loc model.TestLocation, m model.InferredMetadata) ([]byte, error) {
		return insertAboveNode(a, source, loc, m)
	}
	Adapters["javascript"] = a
}

func jsIsTestFile(path string) bool {
	base := path[strings.LastIndexByte(path, '/')+1:]
	return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.")
}

// jsTestCalls and jsGroupCalls are the call-DSL identifiers: it/test declare
// a test with a leading string-literal name; describe-like wrappers are
// grouping constructs that contribute to the suite path.
var jsTestCalls = map[string]bool{"it": true, "test": true}
var jsGroupCalls = map[string]bool{"describe": true, "suite": true, "context": true}

// jsFindTests walks the tree depth-first, threading the current suite path by
// value. Each emitted location snapshots the path at emission time.
func jsFindTests(root *sitter.Node, source []byte) []model.TestLocation {
	var out []model.TestLocation
	var walk func(n *sitter.Node, path []string)
	walk = func(n *sitter.Node, path []string) {
		if n.Type() == "call_expression" {
			callee := jsCalleeName(n, source)
			if jsGroupCalls[callee] {
				next := appendPath(path, jsFirstStringArg(n, source))
				for i := 0; i < int(n.ChildCount()); i++ {
					walk(n.Child(i), next)
				}
				return
			}
			if jsTestCalls[callee] {
				out = append(out, model.TestLocation{
					Node:  n,
					Line:  nodeLine(n),
					Name:  jsFirstStringArg(n, source),
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

// jsCalleeName returns the called identifier, unwrapping member calls like
// it.only / describe.skip to their base identifier.
func jsCalleeName(call *sitter.Node, source []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return NodeText(fn, source)
	case "member_expression":
		if obj := fn.ChildByFieldName("object"); obj != nil && obj.Type() == "identifier" {
			return NodeText(obj, source)
		}
	}
	return ""
}

// jsFirstStringArg returns the display name from the call's leading string
// argument. Template strings with substitutions have no static name and
// yield "".
func jsFirstStringArg(call *sitter.Node, source []byte) string {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}
	first := args.NamedChild(0)
	switch first.Type() {
	case "string":
		text := NodeText(first, source)
		if len(text) >= 2 {
			return text[1 : len(text)-1]
		}
		return ""
	case "template_string":
		text := NodeText(first, source)
		if strings.Contains(text, "${") {
			return ""
		}
		return strings.Trim(text, "`")
	}
	return ""
}

// jsExtractComment finds the nearest preceding /** */ doc block. Blank lines
// between the block and the test are tolerated. Ordinary // and /* */ comment
// forms are not eligible to carry tags and terminate the search.
func jsExtractComment(node *sitter.Node, source []byte) string {
	lines := sourceLines(source)
	i := int(node.StartPoint().Row) - 1
	for i >= 0 && strings.TrimSpace(lines[i]) == "" {
		i--
	}
	if i < 0 {
		return ""
	}
	trimmed := strings.TrimSpace(lines[i])
	if !strings.HasSuffix(trimmed, "*/") {
		return ""
	}
	for j := i; j >= 0; j-- {
		t := strings.TrimSpace(lines[j])
		if strings.HasPrefix(t, "/**") {
			return strings.Join(lines[j:i+1], "\n")
		}
		if strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "//") {
			return ""
		}
	}
	return ""
}
