package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "View recent viewer events",
		Long: `Print the session event log written by the viewer.

The log is only written when paths.events (or --events-file) is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Paths.Events == "" {
				return fmt.Errorf("event log is disabled: set paths.events or pass --events-file")
			}

			out := cmd.OutOrStdout()
			if a.v.GetBool(FlagFollow) {
				return tailFollow(cmd.Context(), out, cfg.Paths.Events)
			}
			return tailLast(out, cfg.Paths.Events, a.v.GetInt(FlagCount))
		},
	}

	cmd.Flags().Bool(FlagFollow, false, "Follow event stream (like tail -f)")
	cmd.Flags().Int(FlagCount, 20, "Number of recent events to show")
	return cmd
}

// tailLast reads and prints the last n lines from the log file.
func tailLast(w io.Writer, path string, n int) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			_, _ = fmt.Fprintln(w, "No events yet (log file does not exist)")
			return nil
		}
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log file: %w", err)
	}

	if len(lines) == 0 {
		_, _ = fmt.Fprintln(w, "No events yet")
		return nil
	}

	start := 0
	if n > 0 && len(lines) > n {
		start = len(lines) - n
	}
	for _, line := range lines[start:] {
		printEventLine(w, line)
	}
	return nil
}

// waitForFile waits for a file to be created and returns the opened file.
func waitForFile(ctx context.Context, path string) (*os.File, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
			file, err := os.Open(path)
			if err == nil {
				return file, nil
			}
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("open file: %w", err)
			}
		}
	}
}

// tailFollow follows the log file and prints new lines as they appear.
func tailFollow(ctx context.Context, w io.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("open log file: %w", err)
		}
		_, _ = fmt.Fprintln(w, "Waiting for log file to be created...")
		file, err = waitForFile(ctx, path)
		if err != nil {
			return err
		}
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}

	_, _ = fmt.Fprintln(w, "Following events (Ctrl+C to stop)...")
	reader := bufio.NewReader(file)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					time.Sleep(100 * time.Millisecond)
					continue
				}
				return fmt.Errorf("read log: %w", err)
			}
			printEventLine(w, strings.TrimSuffix(line, "\n"))
		}
	}
}

// printEventLine prints a single event line in a human-readable format.
func printEventLine(w io.Writer, line string) {
	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		_, _ = fmt.Fprintln(w, line)
		return
	}

	timestamp := ""
	if ts, ok := event["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			timestamp = t.Format("15:04:05")
		} else {
			timestamp = ts
		}
	}

	eventType, _ := event["type"].(string)

	var detail string
	switch eventType {
	case "graph.loaded":
		detail = fmt.Sprintf("topic=%q nodes=%d", str(event, "topic"), num(event, "node_count"))
	case "path.changed":
		detail = fmt.Sprintf("%s node=%s", str(event, "outcome"), str(event, "node_id"))
	case "layout.computed":
		detail = fmt.Sprintf("generation=%d direction=%s visible=%d", num(event, "generation"), str(event, "direction"), num(event, "visible"))
	case "fit.requested":
		detail = fmt.Sprintf("generation=%d reason=%s", num(event, "generation"), str(event, "reason"))
	case "fullscreen.changed":
		detail = fmt.Sprintf("fullscreen=%v", event["fullscreen"])
	case "export.completed":
		detail = fmt.Sprintf("%s %s", str(event, "format"), str(event, "path"))
	case "export.failed":
		detail = fmt.Sprintf("%s: %s", str(event, "format"), str(event, "error"))
	}

	if detail != "" {
		_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, eventType, detail)
	} else {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", timestamp, eventType)
	}
}

func str(event map[string]any, key string) string {
	s, _ := event[key].(string)
	return s
}

func num(event map[string]any, key string) int {
	f, _ := event[key].(float64)
	return int(f)
}
