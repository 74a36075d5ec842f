package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spectag/spectag/internal/engine"
)

func newAutoTagCmd() *cobra.Command {
	var (
		write    bool
		langs    []string
		workers  int
		maxBytes int
	)

	cmd := &cobra.Command{
		Use:   "autotag [root]",
		Short: "Insert @spec tag blocks for untagged tests",
		Long: `Insert a tag block above (or, per language convention, inside) every test
that lacks the required @spec tag, when the file's path carries a spec
identifier. Without --write this is a dry run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			eng := engine.New(log)
			summary, err := eng.AutoTag(root, engine.Options{
				Write:       write,
				Languages:   langs,
				Workers:     pickInt(workers, appConfig.Scan.Workers),
				MaxFileSize: pickInt(maxBytes, appConfig.Scan.MaxFileSize),
			})
			if err != nil {
				return err
			}

			mode := "dry run"
			if write {
				mode = "write"
			}
			fmt.Printf("%s: %d files processed, %d modified, %d changes, %d orphaned\n",
				mode, summary.FilesProcessed, summary.FilesModified, summary.ChangesMade, summary.Orphans)
			for _, rep := range summary.Reports {
				for _, line := range rep.FallbackLines {
					fmt.Printf("  %s:%d inserted via line splice (no structural insertion)\n", rep.Path, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write changes to disk")
	cmd.Flags().StringSliceVarP(&langs, "langs", "l", nil, "comma-separated languages to include")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent workers (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&maxBytes, "max-file-size", 0, "skip files larger than this many bytes")
	return cmd
}
