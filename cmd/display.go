package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vfdctl/internal/app"
	"vfdctl/internal/display"
	"vfdctl/internal/preview"
	"vfdctl/internal/protocol"
	"vfdctl/internal/render"
)

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the display and return it to normal mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *app.Session) error {
				return s.Controller.Clear()
			})
		},
	}
}

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <upper> [lower]",
		Short: "Write one or both lines in string mode",
		Long: `Write the upper line and optionally the lower line using the display's
string mode. Each line is padded or truncated to 20 characters.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *app.Session) error {
				if len(args) == 1 {
					return s.Controller.WriteUpper(args[0])
				}
				return s.Controller.WriteBothLines(args[0], args[1])
			})
		},
	}
}

func newAtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "at <col> <row> <text>",
		Short: "Write text at a position in normal mode",
		Long: `Write text starting at a 1-based column (1-20) and row (1-2). Text that
runs past column 20 continues on the next line.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid column %q: %w", args[0], err)
			}
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row %q: %w", args[1], err)
			}
			return withSession(cmd, func(s *app.Session) error {
				return s.Controller.WritePositioned(args[2], col, row)
			})
		},
	}
}

func newMessageCmd() *cobra.Command {
	var stringMode bool
	cmd := &cobra.Command{
		Use:   "message <text>",
		Short: "Split a message over both lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *app.Session) error {
				return s.Controller.DisplayMessage(strings.Join(args, " "), stringMode)
			})
		},
	}
	cmd.Flags().BoolVar(&stringMode, "string", false, "Use string mode instead of positioned writes")
	return cmd
}

func newBrightnessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brightness <1-4>",
		Short: "Set the brightness level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid brightness %q: %w", args[0], err)
			}
			return withSession(cmd, func(s *app.Session) error {
				return s.Controller.SetBrightness(level)
			})
		},
	}
}

func newMarqueeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "marquee <text>",
		Short: "Scroll text continuously across the upper line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *app.Session) error {
				return s.Controller.ScrollMarquee(strings.Join(args, " "))
			})
		},
	}
}

func newViewportCmd() *cobra.Command {
	var (
		line, start, end int
		charDelay        time.Duration
	)
	cmd := &cobra.Command{
		Use:   "viewport <text>",
		Short: "Write text into a window that keeps the newest characters",
		Long: `Define a window on one line, enter viewport mode and write text into it.
When the text is longer than the window the newest characters are shown.
With --char-delay the visible text is typed one character at a time.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return withSession(cmd, func(s *app.Session) error {
				if err := s.Controller.SetWindow(line, start, end); err != nil {
					return err
				}
				if err := s.Controller.EnterViewport(); err != nil {
					return err
				}
				var opts []display.CallOption
				if charDelay > 0 {
					opts = append(opts, display.WithCharDelay(charDelay))
				}
				return s.Controller.WriteViewport(line, text, opts...)
			})
		},
	}
	cmd.Flags().IntVar(&line, "line", 1, "Line of the window (1-2)")
	cmd.Flags().IntVar(&start, "start", 1, "First column of the window")
	cmd.Flags().IntVar(&end, "end", protocol.Width, "Last column of the window")
	cmd.Flags().DurationVar(&charDelay, "char-delay", 0, "Delay between characters, e.g. 50ms")
	return cmd
}

func newFrameCmd() *cobra.Command {
	var (
		show      bool
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "frame [line1] [line2]",
		Short: "Render a full frame in normal mode",
		Long: `Render both lines as one frame with positioned writes. Unlike 'write'
this leaves the display in normal mode.

With --stdin, frames are read from standard input two lines at a time and
played back at the configured frame rate. Only the characters that change
between frames are sent. --show draws each rendered frame, redrawing in place
when stdout is a terminal.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			session, err := application.OpenSession()
			if err != nil {
				return err
			}
			defer session.Close()

			r := session.Renderer
			if show {
				r.EnableSimulator()
				r.EnableConsole(cmd.OutOrStdout(), preview.InPlace(application.Config().ConsoleInPlace))
			}

			if !fromStdin {
				line2 := ""
				if len(args) == 2 {
					line2 = args[1]
				}
				if err := r.WriteFrame(args[0], line2); err != nil {
					return err
				}
			} else if err := playFrames(cmd.InOrStdin(), r); err != nil {
				return err
			}

			if !show {
				printSimulated(cmd, application.Settings(), session)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "Draw every rendered frame")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read frames from stdin, two lines per frame")
	return cmd
}

// playFrames renders pairs of lines from in, one frame interval apart. A
// trailing odd line is rendered with an empty second row.
func playFrames(in io.Reader, r *render.Renderer) error {
	scanner := bufio.NewScanner(in)
	var lines []string
	frames := 0
	flush := func() error {
		for len(lines) < protocol.Rows {
			lines = append(lines, "")
		}
		if frames > 0 {
			r.FrameSleep(r.FrameInterval())
		}
		if err := r.WriteFrame(lines[0], lines[1]); err != nil {
			return fmt.Errorf("frame %d: %w", frames+1, err)
		}
		frames++
		lines = lines[:0]
		return nil
	}
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) == protocol.Rows {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read frames: %w", err)
	}
	if len(lines) > 0 {
		return flush()
	}
	return nil
}
