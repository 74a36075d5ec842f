package tag

import (
	"strings"
	"testing"

	"github.com/spectag/spectag/internal/model"
)

func TestParseRequiredTag(t *testing.T) {
	t.Parallel()

	set := Parse("// @spec 007-add-retry")
	if set.Spec != "007-add-retry" {
		t.Errorf("Spec = %q, want 007-add-retry", set.Spec)
	}
}

func TestParseFullBlock(t *testing.T) {
	t.Parallel()

	comment := `/**
 * @spec 012-user-auth
 * @userStory US1
 * @userStory US2
 * @requirement FR-003
 * @testType integration
 * @mockDependent
 * @slow
 */`
	set := Parse(comment)

	if set.Spec != "012-user-auth" {
		t.Errorf("Spec = %q", set.Spec)
	}
	if len(set.Stories) != 2 || set.Stories[0] != "US1" || set.Stories[1] != "US2" {
		t.Errorf("Stories = %v", set.Stories)
	}
	if len(set.Requirements) != 1 || set.Requirements[0] != "FR-003" {
		t.Errorf("Requirements = %v", set.Requirements)
	}
	if set.TestType != model.Integration {
		t.Errorf("TestType = %q", set.TestType)
	}
	if !set.MockDependent {
		t.Error("MockDependent = false")
	}
	if !set.Slow {
		t.Error("Slow = false")
	}
	if set.Retirement || set.ContractTest {
		t.Error("unset flags should stay false")
	}
}

// TestParseDuplicateSpecLastWins pins the duplicate-resolution choice: for a
// single-valued tag repeated within one block, the last occurrence wins.
func TestParseDuplicateSpecLastWins(t *testing.T) {
	t.Parallel()

	set := Parse("// @spec 001-first\n// @spec 002-second")
	if set.Spec != "002-second" {
		t.Errorf("Spec = %q, want 002-second (last occurrence wins)", set.Spec)
	}
}

func TestParseMultiValuedAccumulateInOrder(t *testing.T) {
	t.Parallel()

	set := Parse("# @requirement FR-2\n# @requirement FR-1\n# @requirement FR-3")
	want := []string{"FR-2", "FR-1", "FR-3"}
	if len(set.Requirements) != len(want) {
		t.Fatalf("Requirements = %v", set.Requirements)
	}
	for i, w := range want {
		if set.Requirements[i] != w {
			t.Errorf("Requirements[%d] = %q, want %q", i, set.Requirements[i], w)
		}
	}
}

// An out-of-set testType value is ignored, not an error.
func TestParseInvalidTestTypeIgnored(t *testing.T) {
	t.Parallel()

	set := Parse("// @testType smoke")
	if set.TestType != "" {
		t.Errorf("TestType = %q, want empty", set.TestType)
	}
}

// A misspelled known tag is not recognized as the known tag; it lands in
// Custom instead of aborting the parse. Fail-open by design.
func TestParseMisspelledTagFailOpen(t *testing.T) {
	t.Parallel()

	set := Parse("// @spce 007-add-retry\n// @slow")
	if set.Spec != "" {
		t.Errorf("Spec = %q, want empty", set.Spec)
	}
	if !set.Slow {
		t.Error("later tags should still parse")
	}
	if len(set.Custom) != 1 || set.Custom[0].Name != "spce" {
		t.Fatalf("Custom = %v", set.Custom)
	}
	if set.Custom[0].Value != "007-add-retry" {
		t.Errorf("Custom value = %q", set.Custom[0].Value)
	}
}

func TestParseUnknownTagsPreserved(t *testing.T) {
	t.Parallel()

	set := Parse("// @owner platform-team\n// @flaky")
	if len(set.Custom) != 2 {
		t.Fatalf("Custom = %v", set.Custom)
	}
	if set.Custom[0].Name != "owner" || set.Custom[0].Value != "platform-team" {
		t.Errorf("Custom[0] = %+v", set.Custom[0])
	}
	if set.Custom[1].Name != "flaky" || set.Custom[1].Value != "true" {
		t.Errorf("bare unknown tag should carry value true, got %+v", set.Custom[1])
	}
}

func TestParseTwoTagsOnOneLine(t *testing.T) {
	t.Parallel()

	set := Parse("// @spec 003-cache @slow")
	if set.Spec != "003-cache" {
		t.Errorf("Spec = %q, want value terminated by next tag", set.Spec)
	}
	if !set.Slow {
		t.Error("Slow flag after inline value not parsed")
	}
}

func TestParseDocstring(t *testing.T) {
	t.Parallel()

	set := Parse("\"\"\"\n@spec 004-export\n@testType e2e\n\"\"\"")
	if set.Spec != "004-export" {
		t.Errorf("Spec = %q", set.Spec)
	}
	if set.TestType != model.E2E {
		t.Errorf("TestType = %q", set.TestType)
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	if set := Parse(""); !set.IsEmpty() {
		t.Errorf("Parse(\"\") = %+v, want empty", set)
	}
	if set := Parse("// just a normal comment"); !set.IsEmpty() {
		t.Errorf("plain comment should yield empty set, got %+v", set)
	}
}

func TestValidSpecID(t *testing.T) {
	t.Parallel()

	valid := []string{"007-add-retry", "001-x", "123-multi-word-name"}
	invalid := []string{"7-add-retry", "007_add_retry", "007-Add-Retry", "abc-def", "007-", "007"}

	for _, id := range valid {
		if !ValidSpecID(id) {
			t.Errorf("ValidSpecID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if ValidSpecID(id) {
			t.Errorf("ValidSpecID(%q) = true, want false", id)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	m := model.InferredMetadata{
		SpecID:        "007-add-retry",
		Stories:       []string{"US1"},
		TestType:      model.Integration,
		MockDependent: true,
	}
	style := Style{Open: "/**", Close: " */", Prefix: " * "}

	first := Render(m, "  ", style)
	second := Render(m, "  ", style)
	if first != second {
		t.Fatal("repeated renders of identical input must be byte-identical")
	}

	want := "  /**\n" +
		"   * @spec 007-add-retry\n" +
		"   * @userStory US1\n" +
		"   * @testType integration\n" +
		"   * @mockDependent\n" +
		"   */\n"
	if first != want {
		t.Errorf("Render:\n%s\nwant:\n%s", first, want)
	}
}

// The unit classification is the inferred default and is never emitted.
func TestRenderOmitsUnitType(t *testing.T) {
	t.Parallel()

	m := model.InferredMetadata{SpecID: "007-add-retry", TestType: model.Unit}
	got := Render(m, "", Style{Prefix: "// "})
	if strings.Contains(got, "@testType") {
		t.Errorf("unit type must not be emitted:\n%s", got)
	}
	if got != "// @spec 007-add-retry\n" {
		t.Errorf("Render = %q", got)
	}
}

// Round-trip: parsing a rendered block reconstructs the tag set implied by
// the metadata, for every field the metadata defines.
func TestRenderParseRoundTrip(t *testing.T) {
	t.Parallel()

	styles := map[string]Style{
		"line":      {Prefix: "// "},
		"rustdoc":   {Prefix: "/// "},
		"block":     {Open: "/**", Close: " */", Prefix: " * "},
		"docstring": {Open: `"""`, Close: `"""`},
	}
	m := model.InferredMetadata{
		SpecID:        "042-pipeline",
		Stories:       []string{"US3", "US7"},
		Requirements:  []string{"FR-010"},
		TestType:      model.E2E,
		MockDependent: true,
	}

	for name, style := range styles {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			set := Parse(Render(m, "    ", style))

			if set.Spec != m.SpecID {
				t.Errorf("Spec = %q", set.Spec)
			}
			if len(set.Stories) != 2 || set.Stories[0] != "US3" || set.Stories[1] != "US7" {
				t.Errorf("Stories = %v", set.Stories)
			}
			if len(set.Requirements) != 1 || set.Requirements[0] != "FR-010" {
				t.Errorf("Requirements = %v", set.Requirements)
			}
			if set.TestType != model.E2E {
				t.Errorf("TestType = %q", set.TestType)
			}
			if !set.MockDependent {
				t.Error("MockDependent lost in round trip")
			}
			if len(set.Custom) != 0 {
				t.Errorf("unexpected custom tags: %v", set.Custom)
			}
		})
	}
}

func TestContainsMarker(t *testing.T) {
	t.Parallel()

	if !ContainsMarker("/** @spec 001-x */") {
		t.Error("should detect @spec")
	}
	if ContainsMarker("// nothing to see here") {
		t.Error("plain text should not match")
	}
}
