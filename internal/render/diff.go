package render

import (
	"strings"

	"vfdctl/internal/protocol"
)

// Frame is the full content of the display, one 20-character string per row.
type Frame [protocol.Rows]string

// NewFrame builds a frame, truncating or padding each line to the display width.
func NewFrame(line1, line2 string) Frame {
	return Frame{protocol.FitRow(line1), protocol.FitRow(line2)}
}

// BlankFrame is what the display shows after a clear.
func BlankFrame() Frame {
	blank := strings.Repeat(" ", protocol.Width)
	return Frame{blank, blank}
}

// Run is a maximal span of consecutive changed columns within one row.
// Col is 1-based.
type Run struct {
	Col  int
	Text string
}

// Diff returns the runs that turn prev into next. Both rows are expected to
// be normalized to the same length; extra columns in next are treated as
// changed.
func Diff(prev, next string) []Run {
	var runs []Run
	start := -1
	for i := 0; i < len(next); i++ {
		changed := i >= len(prev) || prev[i] != next[i]
		switch {
		case changed && start < 0:
			start = i
		case !changed && start >= 0:
			runs = append(runs, Run{Col: start + 1, Text: next[start:i]})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Col: start + 1, Text: next[start:]})
	}
	return runs
}
