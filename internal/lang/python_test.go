package lang

import (
	"errors"
	"testing"

	"github.com/spectag/spectag/internal/model"
)

const pyFixture = `import pytest

class TestBilling:
    def test_invoice_total(self):
        assert True

    def build_invoice(self):
        pass

def test_standalone():
    assert True
`

func TestPyFindTests(t *testing.T) {
	t.Parallel()

	locs := findTests(t, "python", pyFixture)
	if len(locs) != 2 {
		t.Fatalf("got %d locations, want 2: %+v", len(locs), locs)
	}

	if locs[0].Name != "test_invoice_total" || locs[0].Line != 4 {
		t.Errorf("locs[0] = %q line %d", locs[0].Name, locs[0].Line)
	}
	if len(locs[0].Suite) != 1 || locs[0].Suite[0] != "TestBilling" {
		t.Errorf("class name must form the suite path, got %v", locs[0].Suite)
	}

	if locs[1].Name != "test_standalone" || locs[1].Line != 10 {
		t.Errorf("locs[1] = %q line %d", locs[1].Name, locs[1].Line)
	}
	if len(locs[1].Suite) != 0 {
		t.Errorf("module-level test has no suite, got %v", locs[1].Suite)
	}
}

// Tags live in the docstring, the first statement of the body. A # comment
// above the def is never consulted.
func TestPyExtractComment(t *testing.T) {
	t.Parallel()

	src := `# @spec 001-ignored
def test_a():
    """
    @spec 005-export
    """
    assert True

def test_b():
    assert True
`
	a, tree := parseSource(t, "python", src)
	locs := a.FindTests(tree.RootNode(), []byte(src))
	if len(locs) != 2 {
		t.Fatalf("got %d locations", len(locs))
	}

	got := a.ExtractComment(locs[0].Node, []byte(src))
	want := "\"\"\"\n    @spec 005-export\n    \"\"\""
	if got != want {
		t.Errorf("docstring = %q, want %q", got, want)
	}

	if got := a.ExtractComment(locs[1].Node, []byte(src)); got != "" {
		t.Errorf("no docstring should yield empty, got %q", got)
	}
}

func TestPyInsertMetadata(t *testing.T) {
	t.Parallel()

	src := "def test_a():\n    assert True\n"
	got := insertFirst(t, "python", src, model.InferredMetadata{SpecID: "007-add-retry"})
	want := "def test_a():\n" +
		"    \"\"\"\n" +
		"    @spec 007-add-retry\n" +
		"    \"\"\"\n" +
		"    assert True\n"
	if got != want {
		t.Errorf("insert:\n%q\nwant:\n%q", got, want)
	}
}

func TestPyInsertMetadataIdempotent(t *testing.T) {
	t.Parallel()

	src := "def test_a():\n    assert True\n"
	m := model.InferredMetadata{SpecID: "007-add-retry"}
	first := insertFirst(t, "python", src, m)
	second := insertFirst(t, "python", first, m)
	if second != first {
		t.Errorf("second insert changed the file:\n%q", second)
	}
}

// A single-line body has no line of its own to splice a docstring into; the
// adapter reports the sentinel so the caller can take the fallback path.
func TestPyInsertMetadataSingleLineBody(t *testing.T) {
	t.Parallel()

	src := "def test_b(): pass\n"
	a, tree := parseSource(t, "python", src)
	locs := a.FindTests(tree.RootNode(), []byte(src))
	if len(locs) != 1 {
		t.Fatalf("got %d locations", len(locs))
	}

	_, err := a.InsertMetadata([]byte(src), locs[0], model.InferredMetadata{SpecID: "001-x"})
	if !errors.Is(err, ErrInsertionUnsupported) {
		t.Errorf("err = %v, want ErrInsertionUnsupported", err)
	}
}

func TestPyIsTestFile(t *testing.T) {
	t.Parallel()

	a := Adapters["python"]
	for _, path := range []string{"tests/test_billing.py", "tests/billing_test.py"} {
		if !a.IsTestFile(path) {
			t.Errorf("IsTestFile(%q) = false", path)
		}
	}
	if a.IsTestFile("src/billing.py") {
		t.Error("production file misclassified")
	}
}
