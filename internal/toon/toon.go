// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// scan reports: a compact tabular form that costs far fewer tokens than JSON
// when the output is fed to an LLM client.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spectag/spectag/internal/engine"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts scan reports into TOON format: a files table followed by a
// tests table, with orphan and error columns inline.
func Encode(reports []engine.FileReport) string {
	var fileRows [][]string
	var testRows [][]string

	for i := range reports {
		rep := &reports[i]
		fileErr := rep.ParseError
		if fileErr == "" {
			fileErr = rep.IOError
		}
		fileRows = append(fileRows, []string{
			rep.Path,
			rep.Language,
			fmt.Sprintf("%d", len(rep.Tests)),
			fileErr,
		})
		for j := range rep.Tests {
			t := &rep.Tests[j]
			orphaned := "0"
			if t.Orphaned {
				orphaned = "1"
			}
			testRows = append(testRows, []string{
				rep.Path,
				fmt.Sprintf("%d", t.Line),
				strings.Join(t.Suite, " > "),
				t.Name,
				t.Tags.Spec,
				string(t.Tags.TestType),
				orphaned,
			})
		}
	}

	parts := []string{
		formatTabular("files", []string{"path", "language", "tests", "error"}, fileRows),
		formatTabular("tests", []string{"file", "line", "suite", "name", "spec", "type", "orphaned"}, testRows),
	}
	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
