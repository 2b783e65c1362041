package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func ingestCmd(load func() (*app, error)) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "ingest <project> [ticket-json...]",
		Short: "Embed and store tickets",
		Long: `Embed and store tickets in a project.

Tickets come from positional JSON arguments and/or --file. The file holds a
list of ticket records as JSON (an array, or one object per line) or YAML
(a sequence of mappings). Use "-" to read the file from stdin. Records may be
canonical tickets or tracker issues with key and fields.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records := make([]any, 0, len(args)-1)
			for _, arg := range args[1:] {
				records = append(records, arg)
			}
			if file != "" {
				fromFile, err := readRecords(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				records = append(records, fromFile...)
			}
			if len(records) == 0 {
				return fmt.Errorf("no tickets given; pass JSON arguments or --file")
			}

			return withApp(load, func(a *app) error {
				result, err := a.svc.IngestRecords(cmd.Context(), args[0], records)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ingested %d of %d tickets into %s\n", result.Succeeded, len(records), args[0])
				for _, msg := range result.ErrorMessages() {
					fmt.Fprintf(out, "  failed: %s\n", msg)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or YAML file with ticket records (- for stdin)")
	return cmd
}

// readRecords loads ticket records from a file. JSON records are kept as raw
// text so their payload is stored verbatim.
func readRecords(stdin io.Reader, path string) ([]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlRecords(data)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return jsonRecords(trimmed)
	}
	return yamlRecords(data)
}

func jsonRecords(data []byte) ([]any, error) {
	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse JSON ticket array: %w", err)
		}
		records := make([]any, len(raw))
		for i, r := range raw {
			records[i] = string(r)
		}
		return records, nil
	}

	// One object per line; malformed lines still reach the pipeline so they
	// are reported per record.
	var records []any
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			records = append(records, line)
		}
	}
	return records, nil
}

// yamlRecords keeps every scalar as its source text so dates and numeric ids
// reach the normalizer exactly as written.
func yamlRecords(data []byte) ([]any, error) {
	var docs []yaml.Node
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse YAML ticket list: %w", err)
	}
	records := make([]any, len(docs))
	for i := range docs {
		records[i] = yamlValue(&docs[i])
	}
	return records, nil
}

func yamlValue(node *yaml.Node) any {
	switch node.Kind {
	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			m[node.Content[i].Value] = yamlValue(node.Content[i+1])
		}
		return m
	case yaml.SequenceNode:
		items := make([]any, len(node.Content))
		for i, child := range node.Content {
			items[i] = yamlValue(child)
		}
		return items
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil
		}
		return yamlValue(node.Content[0])
	default:
		if node.Tag == "!!null" {
			return nil
		}
		return node.Value
	}
}
