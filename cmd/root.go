// Package cmd defines the spectag command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/spectag/spectag/internal/config"
	"github.com/spectag/spectag/internal/logger"
)

var (
	cfgFile   string
	appConfig *config.Config
	log       hclog.Logger

	rootCmd = &cobra.Command{
		Use:                   "spectag [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "spectag links test definitions to planning specs via @tag annotations",
		Long: `spectag discovers test definitions across Go, Python, JavaScript,
TypeScript, Rust and Ruby sources, reads structured @tag annotations from
their doc comments, and can insert or strip those annotations without
disturbing surrounding code.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .spectag.yml)")
	rootCmd.AddCommand(
		newScanCmd(),
		newAutoTagCmd(),
		newStripCmd(),
		newMCPCmd(),
		newInitCmd(),
		newVersionCmd(),
	)
}

// Execute runs the root command.
func Execute() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	var err error
	appConfig, err = config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log = logger.New(appConfig, "spectag")
}
