package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spectag/spectag/internal/engine"
	"github.com/spectag/spectag/internal/registry"
	"github.com/spectag/spectag/internal/toon"
)

func newScanCmd() *cobra.Command {
	var (
		langs    []string
		format   string
		save     bool
		workers  int
		maxBytes int
	)

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Discover tests and report their resolved @tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			eng := engine.New(log)
			reports, err := eng.Scan(root, engine.Options{
				Languages:   langs,
				Workers:     pickInt(workers, appConfig.Scan.Workers),
				MaxFileSize: pickInt(maxBytes, appConfig.Scan.MaxFileSize),
			})
			if err != nil {
				return err
			}

			if save {
				reg, err := registry.Open(appConfig.Registry.Path)
				if err != nil {
					return err
				}
				defer reg.Close()
				if err := reg.SaveScan(reports); err != nil {
					return err
				}
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			case "toon":
				fmt.Println(toon.Encode(reports))
				return nil
			case "text":
				printReports(reports)
				return nil
			default:
				return fmt.Errorf("unknown format %q (text, json, toon)", format)
			}
		},
	}

	cmd.Flags().StringSliceVarP(&langs, "langs", "l", nil, "comma-separated languages to include")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, or toon")
	cmd.Flags().BoolVar(&save, "save", false, "record results in the registry")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent workers (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&maxBytes, "max-file-size", 0, "skip files larger than this many bytes")
	return cmd
}

func pickInt(flag, cfg int) int {
	if flag > 0 {
		return flag
	}
	return cfg
}

func printReports(reports []engine.FileReport) {
	var tests, orphans int
	for _, rep := range reports {
		if rep.ParseError != "" {
			fmt.Printf("%s: parse failure: %s\n", rep.Path, rep.ParseError)
			continue
		}
		if rep.IOError != "" {
			fmt.Printf("%s: %s\n", rep.Path, rep.IOError)
			continue
		}
		for _, t := range rep.Tests {
			tests++
			name := t.Name
			if len(t.Suite) > 0 {
				name = strings.Join(t.Suite, " > ") + " > " + name
			}
			status := t.Tags.Spec
			if t.Orphaned {
				status = "ORPHANED"
				orphans++
			}
			fmt.Printf("%s:%d  %s  [%s]\n", rep.Path, t.Line, name, status)
		}
	}
	fmt.Printf("\n%d files, %d tests, %d orphaned\n", len(reports), tests, orphans)
}
