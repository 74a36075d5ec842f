// Package rewrite mutates raw source text: splicing rendered tag blocks in at
// computed positions and stripping tag-bearing comment blocks back out. All
// operations are line-oriented and leave non-target lines byte-identical.
package rewrite

import (
	"sort"
	"strings"

	"github.com/spectag/spectag/internal/tag"
)

// insertion places a newline-terminated block of text immediately before a
// 1-based line number, with positions measured against the original source.
type insertion struct {
	Line int
	Text string
}

// apply splices all insertions into source. Insertions are applied in strictly
// descending line order so that an already-applied insertion never shifts the
// position of a still-pending one; positions are captured against the original
// text before any mutation. Ascending application would be a correctness bug.
func apply(source []byte, insertions []insertion) []byte {
	sorted := make([]insertion, len(insertions))
	copy(sorted, insertions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Line > sorted[j].Line })

	out := source
	for _, ins := range sorted {
		out = InsertAt(out, ins.Line, ins.Text)
	}
	return out
}

// InsertAt inserts a newline-terminated block before the 1-based line number.
// A line past the end of the file appends the block.
func InsertAt(source []byte, line int, block string) []byte {
	lines := strings.Split(string(source), "\n")
	blockLines := strings.Split(strings.TrimSuffix(block, "\n"), "\n")

	idx := line - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(lines) {
		idx = len(lines)
	}

	out := make([]string, 0, len(lines)+len(blockLines))
	out = append(out, lines[:idx]...)
	out = append(out, blockLines...)
	out = append(out, lines[idx:]...)
	return []byte(strings.Join(out, "\n"))
}

// Indent returns the leading whitespace of the 1-based line.
func Indent(source []byte, line int) string {
	lines := strings.Split(string(source), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	text := lines[line-1]
	return text[:len(text)-len(strings.TrimLeft(text, " \t"))]
}

// BlockForm describes one documentation-comment shape to scan for when
// stripping. Block styles set Open/Close (Close may repeat Open, as with
// docstring quotes); line-run styles set only Prefix.
type BlockForm struct {
	Open   string
	Close  string
	Prefix string
}

// Strip removes every documentation-style comment block that contains a
// recognized tag token, plus the single blank line following such a block
// when present. It is deliberately line-oriented and AST-independent so it
// also catches orphaned or malformed blocks the structural parser would not
// associate with any test. Blocks without tag tokens pass through verbatim.
func Strip(source []byte, forms []BlockForm) []byte {
	lines := strings.Split(string(source), "\n")
	var out []string

	for i := 0; i < len(lines); {
		start, end, ok := matchBlock(lines, i, forms)
		if !ok {
			out = append(out, lines[i])
			i++
			continue
		}
		text := strings.Join(lines[start:end+1], "\n")
		if !tag.ContainsMarker(text) {
			out = append(out, lines[start:end+1]...)
			i = end + 1
			continue
		}
		i = end + 1
		// Drop one trailing blank line so the removal leaves no gap. The
		// final empty split element stands for the file's trailing newline
		// and is never consumed.
		if i < len(lines)-1 && strings.TrimSpace(lines[i]) == "" {
			i++
		}
	}
	return []byte(strings.Join(out, "\n"))
}

// TaggedBlockAbove reports whether a doc-comment block matching one of forms
// sits on the lines directly above the 1-based line and carries a recognized
// tag token. A block spliced in by a fallback insertion is adjacent in the
// text even when the language's structural comment locator cannot see it;
// this check keeps the splice from repeating on a later pass.
func TaggedBlockAbove(source []byte, line int, forms []BlockForm) bool {
	lines := strings.Split(string(source), "\n")
	i := line - 2
	if i < 0 || i >= len(lines) {
		return false
	}
	for _, f := range forms {
		if f.Prefix != "" {
			var run []string
			for j := i; j >= 0 && strings.HasPrefix(strings.TrimSpace(lines[j]), f.Prefix); j-- {
				run = append(run, lines[j])
			}
			if len(run) > 0 && tag.ContainsMarker(strings.Join(run, "\n")) {
				return true
			}
			continue
		}
		if f.Open == "" {
			continue
		}
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasSuffix(trimmed, f.Close) {
			continue
		}
		if strings.HasPrefix(trimmed, f.Open) && len(trimmed) > len(f.Open) {
			if tag.ContainsMarker(trimmed) {
				return true
			}
			continue
		}
		for j := i - 1; j >= 0; j-- {
			t := strings.TrimSpace(lines[j])
			if t == "" {
				break
			}
			if strings.HasPrefix(t, f.Open) {
				if tag.ContainsMarker(strings.Join(lines[j:i+1], "\n")) {
					return true
				}
				break
			}
		}
	}
	return false
}

// matchBlock reports whether a doc-comment block starts at line i, returning
// the inclusive line range of the block.
func matchBlock(lines []string, i int, forms []BlockForm) (int, int, bool) {
	trimmed := strings.TrimSpace(lines[i])
	for _, f := range forms {
		if f.Open != "" {
			if !strings.HasPrefix(trimmed, f.Open) {
				continue
			}
			rest := trimmed[len(f.Open):]
			if strings.Contains(rest, f.Close) {
				return i, i, true // same-line open-and-close
			}
			for j := i + 1; j < len(lines); j++ {
				if strings.Contains(lines[j], f.Close) {
					return i, j, true
				}
			}
			continue // unterminated: leave it alone
		}
		if f.Prefix != "" && strings.HasPrefix(trimmed, f.Prefix) {
			j := i
			for j+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[j+1]), f.Prefix) {
				j++
			}
			return i, j, true
		}
	}
	return 0, 0, false
}
