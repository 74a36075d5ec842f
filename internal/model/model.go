// Package model defines core data structures for spectag.
package model

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// TestType classifies a test's scope.
type TestType string

const (
	Unit        TestType = "unit"
	Integration TestType = "integration"
	E2E         TestType = "e2e"
)

// ValidTestType reports whether s is a member of the closed classification set.
func ValidTestType(s string) bool {
	switch TestType(s) {
	case Unit, Integration, E2E:
		return true
	}
	return false
}

// TestLocation is one discovered test definition. The Node reference points
// into the parsed tree that produced it and is only valid for the lifetime of
// that tree; locations are created fresh on each parse pass and never persisted.
type TestLocation struct {
	Node *sitter.Node
	Line int // 1-based
	Name string
	// Suite is the ordered path of enclosing grouping-construct names,
	// captured by value at emission time. Empty for languages without a
	// nesting construct.
	Suite []string
}

// InferredMetadata is the file-scoped record derived once from a file's path
// and full text. It is shared read-only by every TestLocation in the file and
// must never be mutated per-test.
type InferredMetadata struct {
	SpecID        string // "" when the path carries no spec segment
	Stories       []string
	Requirements  []string
	TestType      TestType
	MockDependent bool
}
