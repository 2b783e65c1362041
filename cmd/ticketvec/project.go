package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

func projectCmd(load func() (*app, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage project stores",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty project store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				return printStatus(cmd, a.svc.CreateProject(cmd.Context(), args[0]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				return printStatus(cmd, a.svc.DeleteProject(cmd.Context(), args[0]))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "count <name>",
		Short: "Print the number of stored tickets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.svc.Count(cmd.Context(), args[0]))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				projects, err := a.svc.List()
				if err != nil {
					return err
				}
				for _, p := range projects {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
				return nil
			})
		},
	})

	return cmd
}

// printStatus writes a status line and turns "Err..." lines into a failing
// exit status.
func printStatus(cmd *cobra.Command, status string) error {
	fmt.Fprintln(cmd.OutOrStdout(), status)
	if strings.HasPrefix(status, types.ErrorPrefix) {
		code, _ := types.StatusCode(status)
		return fmt.Errorf("command failed with code %03d", code)
	}
	return nil
}
