// Package output renders validation results for humans.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/tablevet/tablevet/internal/metric"
	"github.com/tablevet/tablevet/internal/validation"
)

// Formatter provides clean, human-friendly output.
type Formatter struct {
	writer io.Writer

	green *color.Color
	red   *color.Color
	blue  *color.Color
	gray  *color.Color
}

// NewFormatter creates a formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{
		writer: w,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		blue:   color.New(color.FgBlue),
		gray:   color.New(color.FgHiBlack),
	}
}

// PrintRunResult renders a suite run: one line per expectation, then a
// summary line.
func (f *Formatter) PrintRunResult(run *validation.RunResult) {
	f.blue.Fprintf(f.writer, "\n▸ %s (run %s)\n", run.Dataset, run.RunID)

	for _, r := range run.Results {
		switch {
		case r.Err != nil:
			f.red.Fprintf(f.writer, "  ✗ %s [%s] error\n", r.Expectation, r.Column)
			f.gray.Fprintf(f.writer, "    %v\n", r.Err)
		case r.Verdict.Success:
			f.green.Fprintf(f.writer, "  ✓ %s [%s]", r.Expectation, r.Column)
			f.printObserved(r)
		default:
			f.red.Fprintf(f.writer, "  ✗ %s [%s]", r.Expectation, r.Column)
			f.printObserved(r)
		}
	}

	fmt.Fprintf(f.writer, "\n%d expectations: ", run.Total)
	f.green.Fprintf(f.writer, "%d passed", run.Passed)
	fmt.Fprint(f.writer, ", ")
	if run.Failed > 0 {
		f.red.Fprintf(f.writer, "%d failed", run.Failed)
	} else {
		fmt.Fprintf(f.writer, "%d failed", run.Failed)
	}
	f.gray.Fprintf(f.writer, " (%s)\n", formatDuration(run.Duration))
}

func (f *Formatter) printObserved(r *validation.Result) {
	if len(r.Verdict.Observed) == 0 {
		f.gray.Fprintf(f.writer, " observed: (empty)\n")
		return
	}

	f.gray.Fprint(f.writer, " observed:")
	for _, vc := range r.Verdict.Observed {
		f.gray.Fprintf(f.writer, " %v×%d", vc.Value, vc.Count)
	}
	fmt.Fprintln(f.writer)
}

// PrintColumnTypes renders an introspected column list.
func (f *Formatter) PrintColumnTypes(table string, cols []metric.ColumnType) {
	f.blue.Fprintf(f.writer, "\n▸ %s\n", table)
	for _, col := range cols {
		fmt.Fprintf(f.writer, "  %-32s %s\n", col.Name, col.Type)
	}
	fmt.Fprintln(f.writer)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
