// Package tui implements the interactive preview: two line editors drive the
// display through the diff renderer while the simulated screen, the tracked
// mode and the log stream are shown live.
//
// Key bindings:
//
//	tab / shift+tab   switch between the upper and lower line
//	ctrl+l            clear the display and both editors
//	ctrl+b            cycle brightness 1..4
//	ctrl+y            copy the screen to the clipboard
//	esc / ctrl+c      quit
//
// Every keystroke that changes a line renders a new frame, so only the edited
// characters are sent to the hardware.
package tui
