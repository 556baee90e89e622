// Package validate walks an operator through a fixed set of display
// sequences. Each case drives the hardware and the simulator together, prints
// what the simulator expects and asks whether the hardware agrees.
package validate

import (
	"fmt"
	"strings"
	"time"

	"vfdctl/internal/display"
)

// Case is one validation sequence.
type Case struct {
	ID          string
	Description string
	Run         func(c *display.Controller, sleep func(time.Duration)) error
	// Pause gives the operator time to watch a marquee before the prompt.
	Pause time.Duration
}

// Cases returns every validation case in the order they are run.
func Cases() []Case {
	return []Case{
		{ID: "BASIC", Description: "basic string writes", Run: basicStrings},
		{ID: "CURSOR", Description: "cursor and text", Run: cursorAndText},
		{ID: "SCROLL", Description: "scroll marquee", Run: scrollMarquee, Pause: 3 * time.Second},
		{ID: "VIEW", Description: "viewport text", Run: viewport},
		{ID: "SEQ", Description: "command sequence interaction", Run: commandSequence, Pause: 3 * time.Second},
		{ID: "STATE", Description: "brightness/display/cursor", Run: stateCommands},
		{ID: "OFF", Description: "display off", Run: displayOff},
	}
}

// Select returns the case with the given ID (case-insensitive), or all cases
// when id is empty.
func Select(id string) ([]Case, error) {
	all := Cases()
	if id == "" {
		return all, nil
	}
	var ids []string
	for _, c := range all {
		if strings.EqualFold(c.ID, id) {
			return []Case{c}, nil
		}
		ids = append(ids, c.ID)
	}
	return nil, fmt.Errorf("unknown case ID %s, choices: %s", id, strings.Join(ids, ", "))
}

func basicStrings(c *display.Controller, _ func(time.Duration)) error {
	if err := c.Clear(); err != nil {
		return err
	}
	if err := c.WriteUpper("HELLO"); err != nil {
		return err
	}
	return c.WriteLower("WORLD")
}

func cursorAndText(c *display.Controller, _ func(time.Duration)) error {
	steps := []func() error{
		func() error { return c.Clear() },
		func() error { return c.SetCursorPosition(5, 1) },
		func() error { return c.WriteAtCursor("A") },
		func() error { return c.CursorRight() },
		func() error { return c.WriteAtCursor("B") },
	}
	return runSteps(steps)
}

func scrollMarquee(c *display.Controller, _ func(time.Duration)) error {
	if err := c.Clear(); err != nil {
		return err
	}
	return c.ScrollMarquee("SCROLLING")
}

func viewport(c *display.Controller, _ func(time.Duration)) error {
	steps := []func() error{
		func() error { return c.Clear() },
		func() error { return c.SetWindow(1, 4, 10) },
		func() error { return c.EnterViewport() },
		func() error { return c.WriteViewport(1, "VIEWPORTTEXT") },
	}
	return runSteps(steps)
}

func commandSequence(c *display.Controller, _ func(time.Duration)) error {
	steps := []func() error{
		func() error { return c.Clear() },
		func() error { return c.WriteUpper("START") },
		func() error { return c.SetWindow(2, 8, 15) },
		func() error { return c.EnterViewport() },
		func() error { return c.WriteViewport(2, "ABCDE") },
		func() error { return c.CancelLine() },
		func() error { return c.ScrollMarquee("SEQ COMPLETE - SCROLL") },
	}
	return runSteps(steps)
}

func stateCommands(c *display.Controller, sleep func(time.Duration)) error {
	steps := []func() error{
		func() error { return c.Clear() },
		func() error { return c.WriteBothLines("STATE TEST", "CURSOR VISIBLE") },
		func() error { return c.SetBrightness(2) },
		func() error { return c.CursorOn() },
		func() error { return c.DisplayOff() },
		func() error { sleep(time.Second); return nil },
		func() error { return c.DisplayOn() },
	}
	return runSteps(steps)
}

func displayOff(c *display.Controller, _ func(time.Duration)) error {
	steps := []func() error{
		func() error { return c.Clear() },
		func() error { return c.WriteBothLines("12345678901234567890", "ABCDEFGHIJKLMNOPQRST") },
		func() error { return c.DisplayOff() },
	}
	return runSteps(steps)
}

func runSteps(steps []func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
