package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/server/results"
	"github.com/aleksaelezovic/grom/pkg/store"
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("filter", nil, "Node types to select (repeatable or comma-separated)")
	cmd.Flags().StringP("format", "f", "json", "Output format: json, nt, csv or tsv")
	cmd.Flags().Bool("pretty", false, "Indent JSON output, coloured on a terminal")
}

// formatGraph renders result in one of the endpoint formats
func formatGraph(uri string, result *graph.Result, format string) ([]byte, error) {
	switch format {
	case "json":
		return results.FormatJSON(uri, result)
	case "nt", "ntriples", "n-triples":
		return results.FormatNTriples(result.Nodes())
	case "csv":
		return results.FormatCSV(result.Nodes())
	case "tsv":
		return results.FormatTSV(result.Nodes())
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func writeGraph(cmd *cobra.Command, uri string, result *graph.Result) error {
	format, _ := cmd.Flags().GetString("format")

	data, err := formatGraph(uri, result, format)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(cmd, data)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// writeJSON writes data compact, or indented with --pretty. Colour is only
// added when stdout is a terminal.
func writeJSON(cmd *cobra.Command, data []byte) error {
	prettyOutput, _ := cmd.Flags().GetBool("pretty")

	if prettyOutput {
		data = pretty.Pretty(data)
		if isTerminal(cmd.OutOrStdout()) {
			data = pretty.Color(data, nil)
		}
	} else {
		data = pretty.Ugly(data)
		data = append(data, '\n')
	}

	_, err := cmd.OutOrStdout().Write(data)
	return err
}

func writeEntries(w io.Writer, entries []store.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No archived payloads")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FETCHED\tSTATUS\tSUBJECTS\tSIZE\tURI")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			humanize.RelTime(e.FetchedAt, time.Now(), "ago", "from now"),
			e.StatusCode,
			humanize.Comma(int64(e.Subjects)),
			humanize.Bytes(uint64(e.Size)),
			e.URI)
	}
	return tw.Flush()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
