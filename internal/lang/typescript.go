package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/spectag/spectag/internal/model"
	"github.com/spectag/spectag/internal/rewrite"
	"github.com/spectag/spectag/internal/tag"
)

// TypeScript shares the JavaScript test DSL and comment conventions; only the
// grammar differs.
func init() {
	a := &Adapter{
		Name:       "typescript",
		Extensions: []string{".ts", ".mts", ".cts"},
		lang:       typescript.GetLanguage(),
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
	Adapters["typescript"] = a
}
