package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/ticketvec-mcp/internal/storage"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ticketvec version %s\n", version)
			fmt.Fprintf(out, "  built:            %s\n", buildTime)
			fmt.Fprintf(out, "  build mode:       %s\n", storage.BuildMode)
			fmt.Fprintf(out, "  sqlite driver:    %s\n", storage.DriverName)
			fmt.Fprintf(out, "  vector extension: %v\n", storage.VectorExtensionAvailable)
			fmt.Fprintf(out, "  schema version:   %s\n", storage.CurrentSchemaVersion)
		},
	}
}
