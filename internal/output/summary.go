package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/inodb/riboqc/internal/issues"
)

// WriteSummary writes the number of issues of each kind, in the fixed kind
// order. With useColor set, non-zero counts are shown in red and a clean
// result in green.
func WriteSummary(w io.Writer, counts map[issues.Kind]int, useColor bool) {
	bad := color.New(color.FgRed, color.Bold)
	good := color.New(color.FgGreen)
	if useColor {
		bad.EnableColor()
		good.EnableColor()
	} else {
		bad.DisableColor()
		good.DisableColor()
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	fmt.Fprintf(w, "\nIssue Summary:\n")
	for _, k := range issues.Kinds {
		n := counts[k]
		line := fmt.Sprintf("  %-24s %d", string(k)+":", n)
		if n > 0 {
			line = bad.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}

	totalLine := fmt.Sprintf("  %-24s %d", "Total:", total)
	if total == 0 {
		totalLine = good.Sprint(totalLine)
	} else {
		totalLine = bad.Sprint(totalLine)
	}
	fmt.Fprintln(w, totalLine)
}
