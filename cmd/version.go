package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spectag/spectag/internal/server"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		Short:                 "Print the spectag version",
		DisableFlagsInUseLine: true,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("spectag %s\n", server.Version)
		},
	}
}
