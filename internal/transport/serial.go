// Package transport provides the byte channels a display.Controller writes to.
package transport

import (
	"fmt"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"vfdctl/internal/display"
	"vfdctl/pkg/logging"
)

// DefaultBaudRate is the factory setting of the CD5220.
const DefaultBaudRate = 9600

// Mockable for tests.
var (
	openPort        = serial.Open
	listPortDetails = enumerator.GetDetailedPortsList
	listPortNames   = serial.GetPortsList
)

// Serial is a display.Transport on a serial port configured 8N1.
type Serial struct {
	port serial.Port
	name string
}

// Open opens the named port. A baud rate of zero selects DefaultBaudRate.
// Failures are returned as *display.TransportError.
func Open(name string, baud int) (*Serial, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	logging.Debug("Serial", "Opening serial port %s at %d baud", name, baud)
	p, err := openPort(name, mode)
	if err != nil {
		return nil, &display.TransportError{Op: "connect", Err: fmt.Errorf("failed to open %s: %w", name, err)}
	}
	return &Serial{port: p, name: name}, nil
}

// Name returns the port the transport was opened on.
func (s *Serial) Name() string { return s.name }

func (s *Serial) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// Flush blocks until the OS has transmitted everything written so far.
func (s *Serial) Flush() error {
	return s.port.Drain()
}

func (s *Serial) Close() error {
	return s.port.Close()
}

// PortInfo describes a serial port found on the host.
type PortInfo struct {
	Name    string `json:"name"`
	USB     bool   `json:"usb"`
	VID     string `json:"vid,omitempty"`
	PID     string `json:"pid,omitempty"`
	Serial  string `json:"serialNumber,omitempty"`
	Product string `json:"product,omitempty"`
}

// ListPorts enumerates the serial ports on the host. When detailed
// enumeration is not available it falls back to port names only.
func ListPorts() ([]PortInfo, error) {
	details, err := listPortDetails()
	if err == nil {
		ports := make([]PortInfo, 0, len(details))
		for _, d := range details {
			ports = append(ports, PortInfo{
				Name:    d.Name,
				USB:     d.IsUSB,
				VID:     d.VID,
				PID:     d.PID,
				Serial:  d.SerialNumber,
				Product: d.Product,
			})
		}
		return ports, nil
	}
	logging.Debug("Serial", "Detailed port enumeration failed, falling back to names: %v", err)

	names, err := listPortNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(names))
	for _, n := range names {
		ports = append(ports, PortInfo{Name: n})
	}
	return ports, nil
}
