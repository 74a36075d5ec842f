package lang

import (
	"strings"
	"testing"

	"github.com/spectag/spectag/internal/model"
)

const rustFixture = `fn production_helper() {}

#[cfg(test)]
mod tests {
    use super::*;

    #[test]
    fn retries_three_times() {
        assert!(true);
    }

    fn not_a_test() {}

    #[tokio::test]
    async fn async_retry() {}
}
`

func TestRustFindTests(t *testing.T) {
	t.Parallel()

	locs := findTests(t, "rust", rustFixture)
	if len(locs) != 2 {
		t.Fatalf("got %d locations, want 2: %+v", len(locs), locs)
	}

	if locs[0].Name != "retries_three_times" || locs[0].Line != 8 {
		t.Errorf("locs[0] = %q line %d", locs[0].Name, locs[0].Line)
	}
	if locs[1].Name != "async_retry" {
		t.Errorf("locs[1] = %q, #[tokio::test] must qualify", locs[1].Name)
	}
	for i, loc := range locs {
		if len(loc.Suite) != 1 || loc.Suite[0] != "tests" {
			t.Errorf("locs[%d].Suite = %v, want [tests]", i, loc.Suite)
		}
	}
}

// The /// doc run is collected with strict adjacency; #[...] attribute lines
// between the run and the fn are skipped, ordinary // comments end the scan.
func TestRustExtractComment(t *testing.T) {
	t.Parallel()

	src := `/// @spec 007-add-retry
#[test]
#[ignore]
fn slow_path() {}

// not a doc comment
#[test]
fn quick_path() {}
`
	a, tree := parseSource(t, "rust", src)
	locs := a.FindTests(tree.RootNode(), []byte(src))
	if len(locs) != 2 {
		t.Fatalf("got %d locations", len(locs))
	}

	if got := a.ExtractComment(locs[0].Node, []byte(src)); got != "/// @spec 007-add-retry" {
		t.Errorf("doc run = %q", got)
	}
	if got := a.ExtractComment(locs[1].Node, []byte(src)); got != "" {
		t.Errorf("// comment must be ineligible, got %q", got)
	}
}

// A doc comment on the enclosing mod stays with the mod. Member tests carry
// only their own doc runs.
func TestRustModDocDoesNotPropagate(t *testing.T) {
	t.Parallel()

	src := `/// @spec 009-billing
mod tests {
    #[test]
    fn checks_total() {}
}
`
	a, tree := parseSource(t, "rust", src)
	locs := a.FindTests(tree.RootNode(), []byte(src))
	if len(locs) != 1 {
		t.Fatalf("got %d locations", len(locs))
	}
	if got := a.ExtractComment(locs[0].Node, []byte(src)); got != "" {
		t.Errorf("mod doc leaked onto member test: %q", got)
	}
}

// Attributes bind tightest to the declaration, so the tag block lands after
// the last #[...] line and directly above fn.
func TestRustInsertMetadata(t *testing.T) {
	t.Parallel()

	src := "#[test]\nfn quick() {}\n"
	got := insertFirst(t, "rust", src, model.InferredMetadata{SpecID: "007-add-retry"})
	want := "#[test]\n/// @spec 007-add-retry\nfn quick() {}\n"
	if got != want {
		t.Errorf("insert:\n%q\nwant:\n%q", got, want)
	}
}

func TestRustInsertMetadataIdempotent(t *testing.T) {
	t.Parallel()

	src := "#[test]\nfn quick() {}\n"
	m := model.InferredMetadata{SpecID: "007-add-retry"}
	first := insertFirst(t, "rust", src, m)
	second := insertFirst(t, "rust", first, m)
	if second != first {
		t.Errorf("second insert changed the file:\n%q", second)
	}
	if strings.Count(second, "@spec") != 1 {
		t.Errorf("duplicate tag block:\n%s", second)
	}
}
