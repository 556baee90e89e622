package display

import (
	"time"

	"vfdctl/internal/protocol"
)

// Info is a snapshot of the controller configuration and tracked state.
type Info struct {
	Mode                string           `json:"mode" yaml:"mode"`
	AutoClear           bool             `json:"autoClear" yaml:"autoClear"`
	WarnOnTransition    bool             `json:"warnOnTransition" yaml:"warnOnTransition"`
	BaseDelay           time.Duration    `json:"baseCommandDelay" yaml:"baseCommandDelay"`
	ModeTransitionDelay time.Duration    `json:"modeTransitionDelay" yaml:"modeTransitionDelay"`
	InitDelay           time.Duration    `json:"initializationDelay" yaml:"initializationDelay"`
	Window              *protocol.Window `json:"window,omitempty" yaml:"window,omitempty"`
	Hardware            bool             `json:"hardware" yaml:"hardware"`
	Simulator           bool             `json:"simulator" yaml:"simulator"`
}

func (c *Controller) Info() Info {
	info := Info{
		Mode:                c.mode.String(),
		AutoClear:           c.opts.AutoClear,
		WarnOnTransition:    c.opts.WarnOnTransition,
		BaseDelay:           c.opts.BaseDelay,
		ModeTransitionDelay: c.opts.ModeTransitionDelay,
		InitDelay:           c.opts.InitDelay,
		Hardware:            c.transport != nil,
		Simulator:           c.sim != nil,
	}
	if c.window != nil {
		w := *c.window
		info.Window = &w
	}
	return info
}
