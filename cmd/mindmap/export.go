package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/npratt/mindmap/internal/export"
	"github.com/npratt/mindmap/internal/mindmap"
)

func (a *app) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Render the visible part of a mind-map to PNG or SVG",
		Long: `Render a mind-map to an image without opening the viewer.

The expansion path starts at the root. --toggle applies expand/collapse
operations in order and --expand drills down to a node afterwards. Only the
nodes that would be visible in the viewer are drawn.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args)
		},
	}

	cmd.Flags().String(FlagTopic, "", "Request the mind-map for this topic from the learning backend")
	cmd.Flags().String(FlagDirection, "", "Layout direction (TB or LR)")
	cmd.Flags().String(FlagExpand, "", "Expand the path down to this node id")
	cmd.Flags().StringSlice(FlagToggle, nil, "Toggle these node ids in order (repeatable)")
	cmd.Flags().Bool(FlagStrict, false, "Reject mind-maps that fail schema validation")
	cmd.Flags().StringP(FlagFormat, "f", "", "Image format (png or svg)")
	cmd.Flags().StringP(FlagOut, "o", "", "Output directory")
	cmd.Flags().Bool(FlagDataURI, false, "Print a PNG data URI instead of writing a file")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}

	loader, _, err := a.newLoader(cfg, args, cmd.InOrStdin(), a.logger)
	if err != nil {
		return err
	}
	res, err := loadOnce(cmd.Context(), loader, loadTimeout(cfg))
	if err != nil {
		return err
	}

	session := mindmap.NewSession(pixelAdapter(cfg, a.logger),
		mindmap.WithDirection(mindmap.ParseDirection(cfg.Layout.Direction)),
		mindmap.WithSessionLogger(a.logger),
	)
	defer session.Close()
	session.Load(res.Data)

	stderr := cmd.ErrOrStderr()
	for _, warning := range session.Warnings() {
		printWarning(stderr, "%s", warning)
	}
	for _, id := range a.v.GetStringSlice(FlagToggle) {
		if r := session.Toggle(id); r.Outcome == mindmap.OutcomeUnreachable {
			printWarning(stderr, "node %q is not reachable from the root; path reset to the root", id)
		}
	}
	if expand := a.v.GetString(FlagExpand); expand != "" {
		if err := session.ExpandTo(expand); err != nil {
			return err
		}
	}

	view := session.Snapshot()
	opts := exportOptions(cfg)
	out := cmd.OutOrStdout()

	if a.v.GetBool(FlagDataURI) {
		uri, err := export.DataURI(view.Subgraph, view.Layout, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, uri)
		return err
	}

	path, n, err := export.WriteFile(cfg.Export.Dir, topicOf(res, view), view.Subgraph, view.Layout, format, opts)
	session.ReportExport(string(format), path, n, err)
	if err != nil {
		return err
	}

	printSuccess(out, "Saved %s (%d bytes, %d of %d nodes)", path, n, len(view.Layout.Order), view.NodeCount)
	return nil
}
