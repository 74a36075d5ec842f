package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "<!-- spectag:start -->"
	sentinelEnd   = "<!-- spectag:end -->"
)

func newInitCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-CLAUDE.md]",
		Short: "Write a spectag usage section to a CLAUDE.md file",
		Long: `Write a spectag usage section to a CLAUDE.md file. The section is wrapped in
sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "CLAUDE.md"
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote spectag section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped spectag documentation block.
func generateSection() string {
	body := `## spectag: Test-to-Spec Tagging

Run ` + "`spectag scan`" + ` to see which tests are linked to planning specs and which
are orphaned (missing the required ` + "`@spec`" + ` tag).

**Availability:** Check with ` + "`spectag version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```" + `bash
spectag scan                                 # current directory, all languages
spectag scan -l go,typescript                # filter by language
spectag scan --save                          # record results in the registry
spectag autotag --write                      # insert @spec tags from file paths
spectag strip path/to/file_test.go           # remove tag blocks from a file
spectag strip --all                          # reset every registered file
` + "```" + `

**Tag format:** tests carry a doc-comment block with ` + "`@spec NNN-kebab-id`" + `
(required), plus optional ` + "`@userStory`" + `, ` + "`@requirement`" + `,
` + "`@testType unit|integration|e2e`" + `, and bare flags such as
` + "`@mockDependent`" + `.

**All flags:** ` + "`spectag --help`" + ``

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
