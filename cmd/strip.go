package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spectag/spectag/internal/engine"
	"github.com/spectag/spectag/internal/registry"
)

func newStripCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "strip [file...]",
		Short: "Remove tag-bearing doc-comment blocks from source files",
		Long: `Remove every doc-comment block that carries a recognized @tag, plus the
blank line it leaves behind. Line-oriented and parser-independent, so it also
cleans up orphaned or malformed blocks. With --all, strips every file recorded
in the registry by the last 'scan --save'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if all {
				if len(args) > 0 {
					return fmt.Errorf("--all cannot be combined with explicit files")
				}
				reg, err := registry.Open(appConfig.Registry.Path)
				if err != nil {
					return err
				}
				defer reg.Close()
				files, err = reg.Files()
				if err != nil {
					return err
				}
			}
			if len(files) == 0 {
				return fmt.Errorf("nothing to strip: give file paths or --all")
			}

			eng := engine.New(log)
			var changed int
			for _, path := range files {
				ok, err := eng.StripFile(path)
				if err != nil {
					// File-level failure: report and continue with the rest.
					fmt.Printf("%s: %v\n", path, err)
					continue
				}
				if ok {
					changed++
					fmt.Printf("%s: stripped\n", path)
				}
			}
			fmt.Printf("%d of %d files changed\n", changed, len(files))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "strip every file recorded in the registry")
	return cmd
}
