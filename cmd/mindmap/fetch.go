package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/npratt/mindmap/internal/source"
)

func (a *app) newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <topic>",
		Short: "Download learning content for a topic",
		Long: `Request learning content for a topic from the learning backend and save
the response. The saved file can be opened later with "mindmap view <file>".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			topic := strings.TrimSpace(args[0])
			if topic == "" {
				return fmt.Errorf("topic must not be empty")
			}

			client := newClient(cfg, a.logger)
			body, err := client.GenerateLearningContent(cmd.Context(), learningRequest(cfg, topic))
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			res, err := client.Decoder.Decode(body)
			switch {
			case errors.Is(err, source.ErrNoData):
				printWarning(stderr, "response carries no mind-map")
			case err != nil:
				return fmt.Errorf("decode learning content: %w", err)
			case res.Data != nil:
				a.logger.Debug("fetched mind-map", "topic", topic, "nodes", len(res.Data.Nodes), "edges", len(res.Data.Edges))
			}

			if a.v.GetBool(FlagPretty) {
				var buf bytes.Buffer
				if err := json.Indent(&buf, body, "", "  "); err == nil {
					body = buf.Bytes()
				}
			}
			if !bytes.HasSuffix(body, []byte("\n")) {
				body = append(body, '\n')
			}

			output := a.v.GetString(FlagOutput)
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(stderr, "Saved learning content for %q to %s", topic, output)
			return nil
		},
	}

	cmd.Flags().StringP(FlagOutput, "o", "", "Write the response to this file instead of stdout")
	cmd.Flags().Bool(FlagPretty, true, "Indent the saved JSON")
	cmd.Flags().Bool(FlagStrict, false, "Fail when the mind-map does not match the schema")
	return cmd
}
