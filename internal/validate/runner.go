package validate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"vfdctl/internal/display"
	"vfdctl/internal/protocol"
	"vfdctl/internal/simulator"
	"vfdctl/pkg/logging"
)

// Placeholders used in the expected state. The display cannot show either,
// so they never collide with rendered text.
const (
	SpacePlaceholder  = "·" // middle dot
	ScrollPlaceholder = "←" // left arrow, the marquee direction
)

// Result is the operator's verdict on one case.
type Result struct {
	Case    Case
	Matched bool
	Err     error
}

// Results is the outcome of a run in case order.
type Results []Result

// AllMatched reports whether every case ran and matched.
func (r Results) AllMatched() bool {
	for _, res := range r {
		if !res.Matched {
			return false
		}
	}
	return len(r) > 0
}

// Runner runs cases against a controller with a simulator attached.
type Runner struct {
	ctrl  *display.Controller
	in    *bufio.Reader
	out   io.Writer
	sleep func(time.Duration)
	log   *logging.Logger
}

// NewRunner prompts on in and prints to out. sleep may be nil.
func NewRunner(ctrl *display.Controller, in io.Reader, out io.Writer, sleep func(time.Duration)) (*Runner, error) {
	if ctrl.Simulator() == nil {
		return nil, errors.New("validation needs the simulator enabled")
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Runner{
		ctrl:  ctrl,
		in:    bufio.NewReader(in),
		out:   out,
		sleep: sleep,
		log:   logging.For("Validate"),
	}, nil
}

// Run executes cases in order and prompts after each one. A case that fails
// to run is recorded as a mismatch and the run continues. The display is
// cleared before returning.
func (r *Runner) Run(ctx context.Context, cases []Case) (Results, error) {
	var results Results
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		fmt.Fprintf(r.out, "\nRunning case %s: %s\n", c.ID, c.Description)

		if err := c.Run(r.ctrl, r.sleep); err != nil {
			r.log.Error(err, "Case %s failed to run", c.ID)
			fmt.Fprintf(r.out, "Case %s could not run: %v\n", c.ID, err)
			results = append(results, Result{Case: c, Err: err})
			continue
		}

		r.printExpected(r.ctrl.Simulator())
		if c.Pause > 0 {
			r.sleep(c.Pause)
		}

		matched, err := r.prompt(c.ID)
		if err != nil {
			return results, err
		}
		results = append(results, Result{Case: c, Matched: matched})
	}

	if err := r.ctrl.Clear(); err != nil {
		return results, fmt.Errorf("failed to clear display after validation: %w", err)
	}
	return results, nil
}

// Expected returns the two lines the operator should see, with spaces made
// visible. A running marquee is shown as its text followed by arrows.
func Expected(sim *simulator.Simulator) [protocol.Rows]string {
	lines := sim.Visible()
	if sim.Mode() == protocol.ModeScroll && sim.DisplayOn() {
		scroll := sim.ScrollText()
		if len(scroll) > protocol.Width {
			scroll = scroll[:protocol.Width]
		}
		return [protocol.Rows]string{
			scroll + strings.Repeat(ScrollPlaceholder, protocol.Width-len(scroll)),
			formatLine(lines[1]),
		}
	}
	return [protocol.Rows]string{formatLine(lines[0]), formatLine(lines[1])}
}

func formatLine(line string) string {
	return strings.ReplaceAll(line, " ", SpacePlaceholder)
}

func (r *Runner) printExpected(sim *simulator.Simulator) {
	lines := Expected(sim)
	fmt.Fprintln(r.out, "\nExpected display state:")
	fmt.Fprintln(r.out, lines[0])
	fmt.Fprintln(r.out, lines[1])
	fmt.Fprintf(r.out, "Brightness=%d CursorVisible=%t\n", sim.Brightness(), sim.CursorVisible())
}

func (r *Runner) prompt(id string) (bool, error) {
	for {
		fmt.Fprintf(r.out, "\nCase %s - does the hardware match the simulator? [y/n]: ", id)
		line, err := r.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("no answer for case %s: %w", id, err)
		}
		fmt.Fprintln(r.out, "Please enter 'y' or 'n'.")
	}
}

// Render prints the results table and the overall verdict.
func (r Results) Render(w io.Writer) {
	fmt.Fprintln(w, "\nValidation Results:")
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "DESCRIPTION", "RESULT"})
	for _, res := range r {
		status := text.FgGreen.Sprint("PASS")
		switch {
		case res.Err != nil:
			status = text.FgRed.Sprint("ERROR")
		case !res.Matched:
			status = text.FgRed.Sprint("FAIL")
		}
		t.AppendRow(table.Row{res.Case.ID, res.Case.Description, status})
	}
	t.Render()

	if r.AllMatched() {
		fmt.Fprintln(w, "\nOverall: ALL MATCHED")
	} else {
		fmt.Fprintln(w, "\nOverall: MISMATCHES FOUND")
	}
}
