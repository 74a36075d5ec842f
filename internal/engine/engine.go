// Package engine drives the batch pipeline: discover test files, then for
// each file parse, locate tests, resolve tags, and (for autotag) rewrite the
// source. Files are independent units of work; within one file the pipeline
// is strictly sequential because insertions shift line offsets.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/spectag/spectag/internal/discover"
	"github.com/spectag/spectag/internal/lang"
	"github.com/spectag/spectag/internal/meta"
	"github.com/spectag/spectag/internal/model"
	"github.com/spectag/spectag/internal/rewrite"
	"github.com/spectag/spectag/internal/tag"
)

// DefaultMaxFileSize caps how large a file the engine will process.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// TestReport is one discovered test with its resolved tags.
type TestReport struct {
	Name     string         `json:"name"`
	Line     int            `json:"line"`
	Suite    []string       `json:"suite,omitempty"`
	Tags     tag.Set        `json:"tags"`
	Orphaned bool           `json:"orphaned"`
	Inferred model.TestType `json:"inferredType"`
}

// FileReport is the per-file outcome. Failures stay file-scoped: a parse or
// IO failure marks this report and never aborts the batch.
type FileReport struct {
	Path     string       `json:"path"`
	Language string       `json:"language"`
	Tests    []TestReport `json:"tests,omitempty"`

	ParseError string `json:"parseError,omitempty"`
	IOError    string `json:"ioError,omitempty"`

	// FallbackLines records lines where structural insertion was unavailable
	// and a plain line splice was used instead. Never hidden from output.
	FallbackLines []int `json:"fallbackLines,omitempty"`

	Changes  int  `json:"changes,omitempty"`
	Modified bool `json:"modified,omitempty"`
}

// Summary aggregates a batch run.
type Summary struct {
	FilesProcessed int          `json:"filesProcessed"`
	FilesModified  int          `json:"filesModified"`
	ChangesMade    int          `json:"changesMade"`
	Orphans        int          `json:"orphans"`
	Reports        []FileReport `json:"reports,omitempty"`
}

// Options control a batch run.
type Options struct {
	Write       bool
	Languages   []string
	Workers     int
	MaxFileSize int
}

// Engine runs scan/autotag/strip batches.
type Engine struct {
	log hclog.Logger
}

// New creates an Engine. A nil logger is replaced with a no-op logger.
func New(log hclog.Logger) *Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Engine{log: log}
}

// fileContext is the per-file processing record: everything a sub-step needs,
// computed once. The file is read exactly once; no step re-reads it, and the
// inferred metadata is shared read-only by every test in the file.
type fileContext struct {
	absPath  string
	relPath  string
	language string
	adapter  *lang.Adapter
	source   []byte
	meta     model.InferredMetadata
}

func newFileContext(root string, entry discover.FileEntry) (*fileContext, error) {
	adapter := lang.Adapters[entry.Language]
	if adapter == nil {
		return nil, fmt.Errorf("no adapter for language %q", entry.Language)
	}
	abs := filepath.Join(root, entry.Path)
	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", entry.Path, err)
	}
	return &fileContext{
		absPath:  abs,
		relPath:  entry.Path,
		language: entry.Language,
		adapter:  adapter,
		source:   source,
		meta:     meta.Infer(entry.Path, source),
	}, nil
}

// Scan discovers test files under root and reports every test with its
// resolved tags. Read-only.
func (e *Engine) Scan(root string, opts Options) ([]FileReport, error) {
	files, err := e.discover(root, opts)
	if err != nil {
		return nil, err
	}
	return e.processAll(root, files, opts.Workers, e.scanFile), nil
}

// AutoTag inserts tag blocks for every untagged test whose file path yields a
// spec identifier. With Write unset this is a dry run: the summary reflects
// what would change but no file is touched. Running AutoTag twice in write
// mode produces zero changes on the second pass.
func (e *Engine) AutoTag(root string, opts Options) (Summary, error) {
	files, err := e.discover(root, opts)
	if err != nil {
		return Summary{}, err
	}
	reports := e.processAll(root, files, opts.Workers, func(fc *fileContext) FileReport {
		return e.autotagFile(fc, opts.Write)
	})

	s := Summary{Reports: reports}
	for _, rep := range reports {
		s.FilesProcessed++
		if rep.Modified {
			s.FilesModified++
		}
		s.ChangesMade += rep.Changes
		for _, t := range rep.Tests {
			if t.Orphaned {
				s.Orphans++
			}
		}
	}
	return s, nil
}

// StripFile removes every tag-bearing doc-comment block from one file.
// Returns whether the file changed. The caller decides which files to strip
// (a single path or the whole registry).
func (e *Engine) StripFile(path string) (bool, error) {
	adapter := lang.ForPath(path)
	if adapter == nil {
		return false, fmt.Errorf("%s: unsupported language", path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	stripped := rewrite.Strip(source, adapter.StripForms)
	if bytes.Equal(stripped, source) {
		return false, nil
	}
	if err := os.WriteFile(path, stripped, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	e.log.Info("stripped tag comments", "path", path)
	return true, nil
}

func (e *Engine) discover(root string, opts Options) ([]discover.FileEntry, error) {
	files, err := discover.Files(root, opts.Languages)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err == nil && fi.Size() > int64(maxSize) {
			e.log.Warn("skipping oversized file", "path", f.Path, "bytes", fi.Size())
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}

// processAll fans files out to a worker pool. Each worker sees the complete
// original content of exactly one file at a time and writes back at most once.
func (e *Engine) processAll(root string, files []discover.FileEntry, workers int, fn func(*fileContext) FileReport) []FileReport {
	if len(files) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}

	work := make(chan int, len(files))
	reports := make([]FileReport, len(files))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				f := files[idx]
				fc, err := newFileContext(root, f)
				if err != nil {
					e.log.Error("file unreadable", "path", f.Path, "error", err)
					reports[idx] = FileReport{Path: f.Path, Language: f.Language, IOError: err.Error()}
					continue
				}
				reports[idx] = fn(fc)
			}
		}()
	}
	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	return reports
}

// scanFile runs the read-only pipeline: parse, locate, resolve tags.
func (e *Engine) scanFile(fc *fileContext) FileReport {
	rep := FileReport{Path: fc.relPath, Language: fc.language}

	tree, err := fc.adapter.ParseFile(context.Background(), fc.source)
	if err != nil {
		e.log.Warn("parse failure, file skipped", "path", fc.relPath, "error", err)
		rep.ParseError = err.Error()
		return rep
	}
	defer tree.Close()

	for _, loc := range fc.adapter.FindTests(tree.RootNode(), fc.source) {
		set := tag.Parse(fc.adapter.ExtractComment(loc.Node, fc.source))
		if set.Spec != "" && !tag.ValidSpecID(set.Spec) {
			e.log.Warn("non-conforming spec identifier", "path", fc.relPath, "line", loc.Line, "id", set.Spec)
		}
		rep.Tests = append(rep.Tests, TestReport{
			Name:     loc.Name,
			Line:     loc.Line,
			Suite:    loc.Suite,
			Tags:     set,
			Orphaned: set.Spec == "",
			Inferred: fc.meta.TestType,
		})
	}
	return rep
}

// autotagFile collects every untagged test from a single read-only pass over
// the original tree, then applies insertions bottom-up: strictly descending
// line order, so an applied insertion never invalidates a still-pending
// lower-line position. Ascending application would corrupt offsets.
func (e *Engine) autotagFile(fc *fileContext, write bool) FileReport {
	rep := FileReport{Path: fc.relPath, Language: fc.language}

	tree, err := fc.adapter.ParseFile(context.Background(), fc.source)
	if err != nil {
		e.log.Warn("parse failure, file skipped", "path", fc.relPath, "error", err)
		rep.ParseError = err.Error()
		return rep
	}
	defer tree.Close()

	locs := fc.adapter.FindTests(tree.RootNode(), fc.source)

	// A target keeps the index of its report row so a refused insertion can
	// flip the row back to orphaned.
	type target struct {
		loc model.TestLocation
		idx int
	}
	var targets []target
	for _, loc := range locs {
		set := tag.Parse(fc.adapter.ExtractComment(loc.Node, fc.source))
		tagged := set.Spec != ""
		canTag := fc.meta.SpecID != ""
		rep.Tests = append(rep.Tests, TestReport{
			Name:     loc.Name,
			Line:     loc.Line,
			Suite:    loc.Suite,
			Tags:     set,
			Orphaned: !tagged && !canTag,
			Inferred: fc.meta.TestType,
		})
		if !tagged && canTag {
			targets = append(targets, target{loc: loc, idx: len(rep.Tests) - 1})
		}
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].loc.Line > targets[j].loc.Line })

	src := fc.source
	for _, tgt := range targets {
		updated, err := fc.adapter.InsertMetadata(src, tgt.loc, fc.meta)
		if errors.Is(err, lang.ErrInsertionUnsupported) {
			// A block spliced on an earlier pass sits above the declaration
			// where the structural comment locator cannot see it; detect it
			// textually or the splice would repeat every run.
			if rewrite.TaggedBlockAbove(src, tgt.loc.Line, fc.adapter.StripForms) {
				continue
			}
			indent := rewrite.Indent(src, tgt.loc.Line)
			updated = rewrite.InsertAt(src, tgt.loc.Line, tag.Render(fc.meta, indent, fc.adapter.Style))
			rep.FallbackLines = append(rep.FallbackLines, tgt.loc.Line)
			e.log.Warn("structural insertion unavailable, used line splice",
				"path", fc.relPath, "line", tgt.loc.Line)
		} else if err != nil {
			e.log.Error("insertion failed", "path", fc.relPath, "line", tgt.loc.Line, "error", err)
			continue
		}
		if bytes.Equal(updated, src) {
			// Insertion refused: the adjacent block carries optional tags but
			// no @spec. The test still lacks its spec tag and must stay in
			// the orphan count.
			rep.Tests[tgt.idx].Orphaned = true
			continue
		}
		rep.Changes++
		src = updated
	}

	if rep.Changes > 0 {
		rep.Modified = true
		if write {
			if err := os.WriteFile(fc.absPath, src, 0o644); err != nil {
				e.log.Error("write failed", "path", fc.relPath, "error", err)
				rep.IOError = err.Error()
				rep.Modified = false
			}
		}
	}
	return rep
}
