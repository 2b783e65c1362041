package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

func seedCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [project]",
		Short: "Recreate a project holding the two fixture tickets",
		Long: `Recreate a project and ingest the fixture tickets TICKET-1 (Open) and
TICKET-2 (In Progress). The project defaults to TEST_PROJECT_NAME, then
"test_project". Any existing store for the project is deleted first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := os.Getenv("TEST_PROJECT_NAME")
			if len(args) == 1 {
				project = args[0]
			}
			if project == "" {
				project = "test_project"
			}

			return withApp(load, func(a *app) error {
				n, err := a.svc.Seed(cmd.Context(), project)
				if err != nil {
					return printStatus(cmd, types.Status(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), types.Succ("seeded %s with %d tickets", project, n))
				return nil
			})
		},
	}
}
