// Package protocol implements the CD5220 VFD command set.
//
// Every operation the display understands is modelled as a Command value.
// Encode turns a Command into the exact bytes the hardware expects and Parse
// turns a byte stream back into Commands. The simulator consumes Parse output,
// so both directions share one table of opcodes and cannot drift apart.
//
// # Coordinates
//
// All public coordinates are 1-based: columns 1-20, rows and lines 1-2. The
// set-cursor command carries them as raw 1-based bytes. The window command is
// the one exception on the wire: it carries 0-based column offsets, and the
// translation happens only inside Encode and Parse.
//
// # Text
//
// Text payloads are restricted to printable ASCII (0x20-0x7E). Anything else
// is dropped during encoding so that raw text can never be mistaken for a
// control byte when the stream is decoded again.
//
//	b := protocol.Encode(protocol.StringUpper("HELLO"))
//	// 1B 51 41 'HELLO' + 15 spaces 0D
//	cmds, err := protocol.Parse(b)
package protocol
