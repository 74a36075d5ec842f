// Package meta derives file-scoped test metadata from a file's path and text:
// the owning spec identifier, the test classification, and mock dependence.
package meta

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spectag/spectag/internal/model"
)

// specSegmentRe matches a container-directory name that supplies the spec
// identifier: three digits, a hyphen, then a lowercase word/hyphen sequence.
var specSegmentRe = regexp.MustCompile(`^\d{3}-[a-z][a-z0-9-]*$`)

// mockTerms are case-variant substrings associated with test-double
// terminology. A plain substring scan, not a parse: false positives are an
// accepted precision/cost tradeoff.
var mockTerms = []string{
	"mock", "Mock", "MOCK",
	"stub", "Stub",
	"fake", "Fake",
	"spy(", "Spy(",
}

// mockImports are import signatures of common mocking libraries.
var mockImports = []string{
	"unittest.mock",
	"jest.mock",
	"sinon",
	"testify/mock",
	"golang/mock",
	"go.uber.org/mock",
	"mockito",
	"mockall",
}

// InferSpecID extracts the spec identifier from a path by looking for a
// directory segment in the strict 3-digit-kebab format. Returns "" when no
// segment matches; absence means "orphaned, needs manual or bulk tagging",
// never an error.
func InferSpecID(path string) string {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if specSegmentRe.MatchString(seg) {
			return seg
		}
	}
	return ""
}

// InferTestType classifies a test file by path substrings, checked in fixed
// priority order: end-to-end markers beat integration markers beat the unit
// default. A pure function of the path string.
func InferTestType(path string) model.TestType {
	p := strings.ToLower(filepath.ToSlash(path))
	if strings.Contains(p, "e2e") || strings.Contains(p, "end-to-end") {
		return model.E2E
	}
	if strings.Contains(p, "integration") {
		return model.Integration
	}
	return model.Unit
}

// IsMockDependent reports whether source text mentions test-double
// terminology or imports a known mocking library.
func IsMockDependent(source []byte) bool {
	text := string(source)
	for _, term := range mockTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	for _, imp := range mockImports {
		if strings.Contains(text, imp) {
			return true
		}
	}
	return false
}

// Infer computes the per-file metadata record once. The result is shared
// read-only by every test location in the file.
func Infer(path string, source []byte) model.InferredMetadata {
	return model.InferredMetadata{
		SpecID:        InferSpecID(path),
		TestType:      InferTestType(path),
		MockDependent: IsMockDependent(source),
	}
}
