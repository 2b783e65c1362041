package main

import (
	"github.com/spf13/cobra"
)

func syncCmd(load func() (*app, error)) *cobra.Command {
	var jql string

	cmd := &cobra.Command{
		Use:   "sync <project>",
		Short: "Fetch issues from the tracker and ingest them",
		Long: `Fetch issues matching a JQL query from the configured tracker
(JIRA_SERVER, JIRA_USER, JIRA_API_TOKEN) and ingest them into a project.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				return printStatus(cmd, a.svc.SyncProject(cmd.Context(), args[0], jql))
			})
		},
	}

	cmd.Flags().StringVar(&jql, "jql", "", "Tracker query, e.g. \"project = ABC\"")
	_ = cmd.MarkFlagRequired("jql")
	return cmd
}
