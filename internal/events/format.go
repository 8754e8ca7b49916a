package events

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxPathShown      = 4
	maxErrorLength    = 120
	truncateIndicator = "..."
)

// Format converts an event to a human-readable string for display.
// Returns empty string for nil or unknown event types.
func Format(event Event) string {
	if event == nil {
		return ""
	}

	switch e := event.(type) {
	case *GraphLoadedEvent:
		return formatGraphLoaded(e)
	case *PathChangedEvent:
		return formatPathChanged(e)
	case *LayoutComputedEvent:
		return formatLayoutComputed(e)
	case *FitRequestedEvent:
		return fmt.Sprintf("fit requested (%s)", SafeString(e.Reason))
	case *FullscreenChangedEvent:
		return formatFullscreenChanged(e)
	case *ExportCompletedEvent:
		return formatExportCompleted(e)
	case *ExportFailedEvent:
		return fmt.Sprintf("export %s failed: %s", e.Format, Truncate(e.Error, maxErrorLength))
	case *BaseEvent:
		if e.Type() == EventGraphEmpty {
			return "no mind-map data"
		}
		return ""
	default:
		return ""
	}
}

// FormatWithTimestamp formats an event with a timestamp prefix.
// Used for log display.
func FormatWithTimestamp(event Event) string {
	if event == nil {
		return ""
	}
	ts := event.Timestamp().Format("15:04:05")
	detail := Format(event)
	if detail == "" {
		return fmt.Sprintf("[%s] %s", ts, event.Type())
	}
	return fmt.Sprintf("[%s] %s", ts, detail)
}

func formatGraphLoaded(e *GraphLoadedEvent) string {
	msg := fmt.Sprintf("loaded %d nodes, %d edges (root %s)", e.NodeCount, e.EdgeCount, SafeString(e.RootID))
	if e.Degraded {
		msg += fmt.Sprintf(" [%d warnings]", len(e.Warnings))
	}
	return msg
}

func formatPathChanged(e *PathChangedEvent) string {
	path := e.Path
	prefix := ""
	if len(path) > maxPathShown {
		path = path[len(path)-maxPathShown:]
		prefix = truncateIndicator + " > "
	}
	shown := make([]string, len(path))
	for i, id := range path {
		shown[i] = SafeString(id)
	}
	return fmt.Sprintf("%s %s: %s%s", e.Outcome, SafeString(e.NodeID), prefix, strings.Join(shown, " > "))
}

func formatLayoutComputed(e *LayoutComputedEvent) string {
	msg := fmt.Sprintf("layout #%d %s: %d visible", e.Generation, e.Direction, e.Visible)
	if n := len(e.Hidden); n > 0 {
		msg += fmt.Sprintf(", %d hidden", n)
	}
	if e.Cached {
		msg += " (cached)"
	}
	return msg
}

func formatFullscreenChanged(e *FullscreenChangedEvent) string {
	if !e.Fullscreen {
		return "fullscreen off"
	}
	if e.Fallback {
		return "fullscreen on (fallback)"
	}
	return "fullscreen on"
}

func formatExportCompleted(e *ExportCompletedEvent) string {
	if e.Path != "" {
		return fmt.Sprintf("exported %s to %s (%s)", e.Format, SafeString(e.Path), formatBytes(e.Bytes))
	}
	return fmt.Sprintf("exported %s (%s)", e.Format, formatBytes(e.Bytes))
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Truncate shortens text to maxLen, adding indicator if truncated.
func Truncate(s string, maxLen int) string {
	s = SafeString(s)
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= len(truncateIndicator) {
		return truncateIndicator
	}
	return s[:maxLen-len(truncateIndicator)] + truncateIndicator
}

// ansiRegex matches ANSI escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape sequences from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// SafeString sanitizes a string for display by removing control characters
// and limiting newlines. Node labels come from a remote service and pass
// through here before they reach the terminal.
func SafeString(s string) string {
	s = StripANSI(s)

	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == ' ' || !unicode.IsControl(r) {
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}

	return strings.TrimSpace(result)
}
