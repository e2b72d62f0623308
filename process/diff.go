package process

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Unified-diff rendering for report mode. The comparison is computed at line
// granularity; output follows the usual ---/+++/@@ layout with three lines of
// context and is truncated past the configured cap so a badly mangled file
// does not flood the terminal.

const diffContext = 3

type lineOp struct {
	op   diffpatch.Operation
	line string
}

func diffLines(original, formatted string) []lineOp {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(original, formatted)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		for _, ln := range strings.SplitAfter(d.Text, "\n") {
			if len(ln) == 0 {
				continue
			}
			ops = append(ops, lineOp{op: d.Type, line: strings.TrimSuffix(ln, "\n")})
		}
	}
	return ops
}

// UnifiedDiff renders the differences between original and formatted content
// of path. Returns an empty string when there is nothing to show. At most
// limit lines are produced; anything beyond is replaced with an omission
// count.
func UnifiedDiff(path, original, formatted string, limit int, colorize bool) string {
	ops := diffLines(original, formatted)

	changed := make([]bool, len(ops))
	any := false
	for i, op := range ops {
		if op.op != diffpatch.DiffEqual {
			changed[i] = true
			any = true
		}
	}
	if !any {
		return ""
	}

	// a line is kept when a change sits within the context window; adjacent
	// kept runs become hunks
	keep := make([]bool, len(ops))
	for i := range ops {
		for j := max(0, i-diffContext); j < len(ops) && j <= i+diffContext; j++ {
			if changed[j] {
				keep[i] = true
				break
			}
		}
	}

	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	paint := func(c *color.Color, s string) string {
		if !colorize {
			return s
		}
		return c.Sprint(s)
	}

	lines := []string{"--- a/" + path, "+++ b/" + path}
	aNo, bNo := 1, 1
	for i := 0; i < len(ops); {
		if !keep[i] {
			switch ops[i].op {
			case diffpatch.DiffDelete:
				aNo++
			case diffpatch.DiffInsert:
				bNo++
			default:
				aNo++
				bNo++
			}
			i++
			continue
		}

		start := i
		for i < len(ops) && keep[i] {
			i++
		}

		aStart, bStart := aNo, bNo
		var hunk []string
		aCount, bCount := 0, 0
		for j := start; j < i; j++ {
			switch ops[j].op {
			case diffpatch.DiffDelete:
				hunk = append(hunk, paint(red, "-"+ops[j].line))
				aNo++
				aCount++
			case diffpatch.DiffInsert:
				hunk = append(hunk, paint(green, "+"+ops[j].line))
				bNo++
				bCount++
			default:
				hunk = append(hunk, " "+ops[j].line)
				aNo++
				bNo++
				aCount++
				bCount++
			}
		}
		lines = append(lines, paint(cyan, fmt.Sprintf("@@ -%d,%d +%d,%d @@", aStart, aCount, bStart, bCount)))
		lines = append(lines, hunk...)
	}

	if limit > 0 && len(lines) > limit {
		omitted := len(lines) - limit
		lines = append(lines[:limit], fmt.Sprintf("  ... (%d more lines)", omitted))
	}
	return strings.Join(lines, "\n")
}
