package lang

import (
	"testing"

	"github.com/spectag/spectag/internal/model"
)

const jsFixture = `describe('retry', () => {
  describe('backoff', () => {
    it('retries three times', () => {});
  });
  test('gives up after max attempts', () => {});
});
it.only('focused case', () => {});
`

func TestJsFindTests(t *testing.T) {
	t.Parallel()

	locs := findTests(t, "javascript", jsFixture)
	if len(locs) != 3 {
		t.Fatalf("got %d locations, want 3: %+v", len(locs), locs)
	}

	cases := []struct {
		name  string
		line  int
		suite []string
	}{
		{"retries three times", 3, []string{"retry", "backoff"}},
		{"gives up after max attempts", 5, []string{"retry"}},
		{"focused case", 7, nil},
	}
	for i, want := range cases {
		got := locs[i]
		if got.Name != want.name || got.Line != want.line {
			t.Errorf("locs[%d] = %q line %d, want %q line %d", i, got.Name, got.Line, want.name, want.line)
		}
		if len(got.Suite) != len(want.suite) {
			t.Errorf("locs[%d].Suite = %v, want %v", i, got.Suite, want.suite)
			continue
		}
		for j := range want.suite {
			if got.Suite[j] != want.suite[j] {
				t.Errorf("locs[%d].Suite = %v, want %v", i, got.Suite, want.suite)
				break
			}
		}
	}
}

// A template string with a substitution has no static name; the location is
// still emitted so the test is counted, just unnamed.
func TestJsFindTestsTemplateName(t *testing.T) {
	t.Parallel()

	src := "const n = 3;\nit(`retries ${n} times`, () => {});\nit(`plain template`, () => {});\n"
	locs := findTests(t, "javascript", src)
	if len(locs) != 2 {
		t.Fatalf("got %d locations", len(locs))
	}
	if locs[0].Name != "" {
		t.Errorf("substituted template name = %q, want empty", locs[0].Name)
	}
	if locs[1].Name != "plain template" {
		t.Errorf("static template name = %q", locs[1].Name)
	}
}

// Only /** */ doc blocks carry tags. Blank lines between the block and the
// test are tolerated; ordinary // and /* */ comments are ineligible.
func TestJsExtractComment(t *testing.T) {
	t.Parallel()

	src := `/**
 * @spec 001-x
 */

it('a', () => {});
// plain note
it('b', () => {});
/* block note */
it('c', () => {});
`
	a, tree := parseSource(t, "javascript", src)
	locs := a.FindTests(tree.RootNode(), []byte(src))
	if len(locs) != 3 {
		t.Fatalf("got %d locations", len(locs))
	}

	got := a.ExtractComment(locs[0].Node, []byte(src))
	want := "/**\n * @spec 001-x\n */"
	if got != want {
		t.Errorf("doc block = %q, want %q", got, want)
	}
	if got := a.ExtractComment(locs[1].Node, []byte(src)); got != "" {
		t.Errorf("// comment must be ineligible, got %q", got)
	}
	if got := a.ExtractComment(locs[2].Node, []byte(src)); got != "" {
		t.Errorf("/* */ comment must be ineligible, got %q", got)
	}
}

func TestJsInsertMetadata(t *testing.T) {
	t.Parallel()

	src := "describe('retry', () => {\n  it('works', () => {});\n});\n"
	got := insertFirst(t, "javascript", src, model.InferredMetadata{SpecID: "001-x"})
	want := "describe('retry', () => {\n" +
		"  /**\n" +
		"   * @spec 001-x\n" +
		"   */\n" +
		"  it('works', () => {});\n" +
		"});\n"
	if got != want {
		t.Errorf("insert:\n%q\nwant:\n%q", got, want)
	}
}

func TestJsInsertMetadataIdempotent(t *testing.T) {
	t.Parallel()

	src := "it('works', () => {});\n"
	m := model.InferredMetadata{SpecID: "001-x", TestType: model.E2E}
	first := insertFirst(t, "javascript", src, m)
	second := insertFirst(t, "javascript", first, m)
	if second != first {
		t.Errorf("second insert changed the file:\n%q", second)
	}
}

func TestJsIsTestFile(t *testing.T) {
	t.Parallel()

	a := Adapters["javascript"]
	for _, path := range []string{"src/retry.test.js", "src/retry.spec.jsx"} {
		if !a.IsTestFile(path) {
			t.Errorf("IsTestFile(%q) = false", path)
		}
	}
	if a.IsTestFile("src/retry.js") {
		t.Error("production file misclassified")
	}
}

// The typescript adapter shares the javascript walker but parses with the
// typescript grammar, so annotated sources must still resolve.
func TestTsFindTests(t *testing.T) {
	t.Parallel()

	src := "describe('auth', () => {\n" +
		"  it('issues a token', async (): Promise<void> => {\n" +
		"    const token: string = await issue();\n" +
		"  });\n" +
		"});\n"
	locs := findTests(t, "typescript", src)
	if len(locs) != 1 {
		t.Fatalf("got %d locations: %+v", len(locs), locs)
	}
	if locs[0].Name != "issues a token" || len(locs[0].Suite) != 1 || locs[0].Suite[0] != "auth" {
		t.Errorf("loc = %+v", locs[0])
	}
}
