package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/assfilter/internal/ass"
	"github.com/hupe1980/assfilter/internal/logging"
	"github.com/hupe1980/assfilter/internal/selection"
)

type inspectOptions struct {
	format string
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "List the styles and layers of a script",
		Long: `Inspect lists the styles of a subtitle script with the index used by
--exclude-style-indices, and every layer that carries events, each with
the number of events that would be removed by excluding it.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runError(runInspect(cmd.Context(), cmd, args[0], opts))
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table, json, yaml")

	return cmd
}

// inspectResult is the structured output of the inspect command.
type inspectResult struct {
	Title  string      `json:"title,omitempty" yaml:"title,omitempty"`
	Events int         `json:"events" yaml:"events"`
	Styles []styleInfo `json:"styles" yaml:"styles"`
	Layers []layerInfo `json:"layers" yaml:"layers"`
}

type styleInfo struct {
	Index  int    `json:"index" yaml:"index"`
	Name   string `json:"name" yaml:"name"`
	Events int    `json:"events" yaml:"events"`
}

type layerInfo struct {
	Layer  int `json:"layer" yaml:"layer"`
	Events int `json:"events" yaml:"events"`
}

func runInspect(ctx context.Context, cmd *cobra.Command, input string, opts *inspectOptions) error {
	switch opts.format {
	case "table", "json", "yaml":
	default:
		return usageError(fmt.Errorf("unknown format %q: expected table, json, yaml", opts.format))
	}

	logger := logging.FromContext(ctx)
	logger.Debug("inspecting script", slog.String("input", input))

	doc, err := ass.ParseFile(input)
	if err != nil {
		return err
	}

	result := buildInspectResult(doc)
	w := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		return renderJSON(w, result)
	case "yaml":
		return renderYAML(w, result)
	default:
		return renderTable(w, result)
	}
}

func buildInspectResult(doc *ass.Document) inspectResult {
	result := inspectResult{
		Title:  scriptTitle(doc),
		Events: len(doc.Events),
		Styles: []styleInfo{},
		Layers: []layerInfo{},
	}

	byStyle := selection.CountByStyle(doc.Events)
	for i, s := range doc.Styles {
		result.Styles = append(result.Styles, styleInfo{Index: i, Name: s.Name, Events: byStyle[s.Name]})
	}

	byLayer := selection.CountByLayer(doc.Events)
	for _, l := range selection.CandidateLayers(doc.Events) {
		result.Layers = append(result.Layers, layerInfo{Layer: l, Events: byLayer[l]})
	}

	return result
}

// scriptTitle returns the Title entry of the [Script Info] section.
func scriptTitle(doc *ass.Document) string {
	for _, sec := range doc.Sections {
		if sec.Name != ass.SectionScriptInfo {
			continue
		}

		for _, line := range sec.Lines {
			if v, ok := strings.CutPrefix(line, "Title:"); ok {
				return strings.TrimSpace(v)
			}
		}
	}

	return ""
}

func renderJSON(w io.Writer, result inspectResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(result)
}

func renderYAML(w io.Writer, result inspectResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}

	return enc.Close()
}

func renderTable(w io.Writer, result inspectResult) error {
	if result.Title != "" {
		_, _ = fmt.Fprintf(w, "\n=== Script: %s ===\n", result.Title)
	}

	_, _ = fmt.Fprintf(w, "Events: %d\n", result.Events)

	_, _ = fmt.Fprintf(w, "\n--- Styles (%d) ---\n", len(result.Styles))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "INDEX\tNAME\tEVENTS")

	for _, s := range result.Styles {
		_, _ = fmt.Fprintf(tw, "#%d\t%s\t%d\n", s.Index, s.Name, s.Events)
	}

	_ = tw.Flush()

	_, _ = fmt.Fprintf(w, "\n--- Layers (%d) ---\n", len(result.Layers))

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LAYER\tEVENTS")

	for _, l := range result.Layers {
		_, _ = fmt.Fprintf(tw, "%d\t%d\n", l.Layer, l.Events)
	}

	return tw.Flush()
}
