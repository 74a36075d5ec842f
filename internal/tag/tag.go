// Package tag implements the @tag annotation grammar: parsing tag sets out of
// doc-comment text and rendering metadata back into language-appropriate
// comment blocks. The grammar is host-language independent; comment delimiters
// are handled by stripping on parse and by a Style on render.
package tag

import (
	"regexp"
	"strings"

	"github.com/spectag/spectag/internal/model"
)

// Recognized tag names (wire format).
const (
	NameSpec          = "spec"
	NameUserStory     = "userStory"
	NameRequirement   = "requirement"
	NameTestType      = "testType"
	NameMockDependent = "mockDependent"
	NameRetirement    = "retirementCandidate"
	NameContractTest  = "contractTest"
	NameSlow          = "slow"
)

// Markers lists the recognized tag tokens as they appear in source. Used by
// the strip path's tag-presence predicate.
var Markers = []string{
	"@" + NameSpec,
	"@" + NameUserStory,
	"@" + NameRequirement,
	"@" + NameTestType,
	"@" + NameMockDependent,
	"@" + NameRetirement,
	"@" + NameContractTest,
	"@" + NameSlow,
}

// ContainsMarker reports whether text contains any recognized tag token.
func ContainsMarker(text string) bool {
	for _, m := range Markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Custom is an unrecognized tag preserved verbatim: name plus raw trailing
// text, or "true" when the tag appeared bare.
type Custom struct {
	Name  string
	Value string
}

// Set is the parsed tag content of one comment block.
type Set struct {
	Spec          string
	Stories       []string
	Requirements  []string
	TestType      model.TestType // "" when absent or outside the closed set
	MockDependent bool
	Retirement    bool
	ContractTest  bool
	Slow          bool
	Custom        []Custom
}

// IsEmpty reports whether the set carries no recognized or custom tags.
func (s Set) IsEmpty() bool {
	return s.Spec == "" && len(s.Stories) == 0 && len(s.Requirements) == 0 &&
		s.TestType == "" && !s.MockDependent && !s.Retirement &&
		!s.ContractTest && !s.Slow && len(s.Custom) == 0
}

var tokenRe = regexp.MustCompile(`@([A-Za-z][A-Za-z0-9_-]*)`)

// specIDRe is the strict spec-identifier format: three digits, a hyphen, then
// a lowercase word/hyphen sequence. Kept strict on purpose; loosening it is a
// policy decision, not an implementation one.
var specIDRe = regexp.MustCompile(`^\d{3}-[a-z][a-z0-9-]*$`)

// ValidSpecID reports whether id conforms to the strict identifier format.
func ValidSpecID(id string) bool {
	return specIDRe.MatchString(id)
}

// Parse scans comment text for @tag tokens and builds a Set. A tag's value
// extends to end-of-line or to the next @tag token on the same line.
//
// Parsing is tolerant by design: a misspelled known tag simply lands in
// Custom, and an out-of-set testType value is ignored rather than rejected.
// Absence of the required @spec tag is the downstream validator's concern,
// never a parse error. For a duplicated single-valued tag the last occurrence
// wins (pinned by a regression test).
func Parse(comment string) Set {
	var set Set
	for _, raw := range strings.Split(comment, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}
		matches := tokenRe.FindAllStringSubmatchIndex(line, -1)
		for i, m := range matches {
			name := line[m[2]:m[3]]
			end := len(line)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			value := strings.TrimSpace(line[m[1]:end])
			set.add(name, value)
		}
	}
	return set
}

func (s *Set) add(name, value string) {
	switch name {
	case NameSpec:
		if value != "" {
			s.Spec = value // last occurrence wins
		}
	case NameUserStory:
		if value != "" {
			s.Stories = append(s.Stories, value)
		}
	case NameRequirement:
		if value != "" {
			s.Requirements = append(s.Requirements, value)
		}
	case NameTestType:
		if model.ValidTestType(value) {
			s.TestType = model.TestType(value)
		}
	case NameMockDependent:
		s.MockDependent = true
	case NameRetirement:
		s.Retirement = true
	case NameContractTest:
		s.ContractTest = true
	case NameSlow:
		s.Slow = true
	default:
		if value == "" {
			value = "true"
		}
		s.Custom = append(s.Custom, Custom{Name: name, Value: value})
	}
}

// cleanLine strips comment delimiters and surrounding whitespace so the tag
// scanner sees only payload text. Handles line comments (//, ///, #), block
// interiors (leading *), block edges (/**, */) and docstring quotes.
func cleanLine(line string) string {
	s := strings.TrimSpace(line)
	for _, q := range []string{`"""`, `'''`} {
		s = strings.ReplaceAll(s, q, " ")
	}
	switch {
	case strings.HasPrefix(s, "///"):
		s = s[3:]
	case strings.HasPrefix(s, "//"):
		s = s[2:]
	case strings.HasPrefix(s, "/**"):
		s = s[3:]
	case strings.HasPrefix(s, "/*"):
		s = s[2:]
	case strings.HasPrefix(s, "*"):
		s = s[1:]
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "*/")
	return strings.TrimSpace(s)
}

// Style describes how a language wraps rendered tag lines. Line-comment
// styles leave Open and Close empty.
type Style struct {
	Open   string // opening delimiter line content, e.g. "/**" or `"""`
	Close  string // closing delimiter line content, e.g. " */" or `"""`
	Prefix string // per-tag-line prefix, e.g. " * ", "// ", "/// "
}

// Render produces a comment block for the tags present in meta: one tag per
// line, every line prefixed with indent, wrapped in the style's delimiters.
// Emission order is fixed (spec, stories, requirements, testType, mock flag)
// so identical input renders byte-identically. A unit test type is the
// inferred default and is not emitted. The result ends with a newline.
func Render(meta model.InferredMetadata, indent string, style Style) string {
	var b strings.Builder
	if style.Open != "" {
		b.WriteString(indent + style.Open + "\n")
	}
	line := func(text string) {
		b.WriteString(indent + style.Prefix + text + "\n")
	}
	if meta.SpecID != "" {
		line("@" + NameSpec + " " + meta.SpecID)
	}
	for _, us := range meta.Stories {
		line("@" + NameUserStory + " " + us)
	}
	for _, fr := range meta.Requirements {
		line("@" + NameRequirement + " " + fr)
	}
	if meta.TestType != "" && meta.TestType != model.Unit {
		line("@" + NameTestType + " " + string(meta.TestType))
	}
	if meta.MockDependent {
		line("@" + NameMockDependent)
	}
	if style.Close != "" {
		b.WriteString(indent + style.Close + "\n")
	}
	return b.String()
}
