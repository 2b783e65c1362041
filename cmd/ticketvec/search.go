package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

func searchCmd(load func() (*app, error)) *cobra.Command {
	var (
		predicate string
		topN      int
		format    string
	)

	cmd := &cobra.Command{
		Use:   "search <project> [query...]",
		Short: "Search tickets by similarity and/or predicate",
		Example: `  ticketvec search web "login page broken" --top-n 3
  ticketvec search web --predicate "status = 'In Progress' AND priority IN ('High')" --format readable`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args[1:], " ")
			return withApp(load, func(a *app) error {
				n := topN
				if !cmd.Flags().Changed("top-n") {
					n = a.svc.DefaultLimit()
				}
				out := a.svc.Search(cmd.Context(), args[0], query, predicate, n, format)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				if code, failed := types.StatusCode(out); failed {
					return fmt.Errorf("search failed with code %03d", code)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&predicate, "predicate", "p", "", "Filter over ticket columns")
	cmd.Flags().IntVarP(&topN, "top-n", "n", 0, "Maximum number of results (default SEARCH_DEFAULT_LIMIT)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or readable")
	return cmd
}
