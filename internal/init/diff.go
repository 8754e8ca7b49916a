package initcmd

import (
	"fmt"
	"strings"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 3

type lineOp byte

const (
	opKeep   lineOp = ' '
	opRemove lineOp = '-'
	opAdd    lineOp = '+'
)

// diffLine is one line of an edit script with its 1-based position in the
// old and new text (0 when the line does not exist on that side).
type diffLine struct {
	op      lineOp
	text    string
	oldLine int
	newLine int
}

// UnifiedDiff returns a unified diff turning oldContent into newContent.
// It returns "" when the contents are identical.
func UnifiedDiff(oldName, newName, oldContent, newContent string) string {
	if oldContent == newContent {
		return ""
	}

	script := editScript(splitLines(oldContent), splitLines(newContent))

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n", oldName)
	fmt.Fprintf(&out, "+++ %s\n", newName)
	for _, h := range hunks(script) {
		writeHunk(&out, script[h[0]:h[1]])
	}
	return out.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// editScript computes a shortest line edit script from a longest common
// subsequence table. Removals are emitted before additions.
func editScript(a, b []string) []diffLine {
	// common[i][j] is the LCS length of a[i:] and b[j:].
	common := make([][]int, len(a)+1)
	for i := range common {
		common[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				common[i][j] = common[i+1][j+1] + 1
			} else {
				common[i][j] = max(common[i+1][j], common[i][j+1])
			}
		}
	}

	var script []diffLine
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			script = append(script, diffLine{op: opKeep, text: a[i], oldLine: i + 1, newLine: j + 1})
			i++
			j++
		case i < len(a) && (j == len(b) || common[i+1][j] >= common[i][j+1]):
			script = append(script, diffLine{op: opRemove, text: a[i], oldLine: i + 1})
			i++
		default:
			script = append(script, diffLine{op: opAdd, text: b[j], newLine: j + 1})
			j++
		}
	}
	return script
}

// hunks returns [start, end) ranges of script covering each change plus
// diffContext lines around it. Ranges whose context overlaps are merged.
func hunks(script []diffLine) [][2]int {
	var out [][2]int
	for i, l := range script {
		if l.op == opKeep {
			continue
		}
		start := max(i-diffContext, 0)
		end := min(i+1+diffContext, len(script))
		if n := len(out); n > 0 && start <= out[n-1][1] {
			out[n-1][1] = end
			continue
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

func writeHunk(out *strings.Builder, lines []diffLine) {
	oldStart, newStart := 0, 0
	oldCount, newCount := 0, 0
	for _, l := range lines {
		if l.op != opAdd {
			if oldStart == 0 {
				oldStart = l.oldLine
			}
			oldCount++
		}
		if l.op != opRemove {
			if newStart == 0 {
				newStart = l.newLine
			}
			newCount++
		}
	}
	// An empty side is reported at the line before the change.
	if oldCount == 0 {
		oldStart = max(lines[0].oldLine, 1)
	}
	if newCount == 0 {
		newStart = max(lines[0].newLine, 1)
	}

	fmt.Fprintf(out, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, l := range lines {
		out.WriteByte(byte(l.op))
		out.WriteString(l.text)
		out.WriteByte('\n')
	}
}
