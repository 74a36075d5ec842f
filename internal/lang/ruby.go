package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/spectag/spectag/internal/model"
	"github.com/spectag/spectag/internal/rewrite"
	"github.com/spectag/spectag/internal/tag"
)

func init() {
	a := &Adapter{
		Name:       "ruby",
		Extensions: []string{".rb"},
		lang:       ruby.GetLanguage(),
		Style:      tag.Style{Prefix: "# "},
		StripForms: []rewrite.BlockForm{{Prefix: "#"}},
		IsTestFile: func(path string) bool {
			return strings.HasSuffix(path, "_spec.rb") || strings.HasSuffix(path, "_test.rb")
		},
		FindTests:      rubyFindTests,
		ExtractComment: rubyExtractComment,
	}
	a.InsertMetadata = func(source []byte, loc model.TestLocation, m model.InferredMetadata) ([]byte, error) {
		return insertAboveNode(a, source, loc, m)
	}
	Adapters["ruby"] = a
}

var rubyTestCalls = map[string]bool{"it": true, "specify": true}
var rubyGroupCalls = map[string]bool{"describe": true, "context": true}

// rubyFindTests walks the tree for RSpec's call DSL: describe/context blocks
// form the suite path, it/specify calls are tests. RSpec.describe and bare
// describe both resolve to the same method identifier.
func rubyFindTests(root *sitter.Node, source []byte) []model.TestLocation {
	var out []model.TestLocation
	var walk func(n *sitter.Node, path []string)
	walk = func(n *sitter.Node, path []string) {
		if n.Type() == "call" {
			method := rubyMethodName(n, source)
			if rubyGroupCalls[method] {
				next := appendPath(path, rubyFirstArg(n, source))
				for i := 0; i < int(n.ChildCount()); i++ {
					walk(n.Child(i), next)
				}
				return
			}
			if rubyTestCalls[method] {
				out = append(out, model.TestLocation{
					Node:  n,
					Line:  nodeLine(n),
					Name:  rubyFirstArg(n, source),
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

func rubyMethodName(call *sitter.Node, source []byte) string {
	if m := call.ChildByFieldName("method"); m != nil && m.Type() == "identifier" {
		return NodeText(m, source)
	}
	return ""
}

// rubyFirstArg returns the display name from the call's leading argument:
// the string content for string literals, the constant name for described
// classes (describe MyClass).
func rubyFirstArg(call *sitter.Node, source []byte) string {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}
	first := args.NamedChild(0)
	switch first.Type() {
	case "string":
		text := NodeText(first, source)
		return strings.Trim(text, `"'`)
	case "constant", "scope_resolution":
		return NodeText(first, source)
	}
	return ""
}

// rubyExtractComment collects the # comment run directly above the call.
// Ruby has a single comment form, so the whole run is eligible; adjacency is
// strict.
func rubyExtractComment(node *sitter.Node, source []byte) string {
	lines := sourceLines(source)
	i := int(node.StartPoint().Row) - 1

	var run []string
	for i >= 0 {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		run = append([]string{lines[i]}, run...)
		i--
	}
	return strings.Join(run, "\n")
}
