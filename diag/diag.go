// Package diag provides the gated diagnostic logger shared by the core
// components. It never panics and never returns an error; callers that hit a
// recoverable condition (an unmapped bus access, an illegal opcode) report it
// here and carry on with the documented safe default.
package diag

import "log"

var traceEnabled = false

// EnableTrace turns on diagnostic logging. Off by default.
func EnableTrace() {
	traceEnabled = true
}

// DisableTrace turns off diagnostic logging.
func DisableTrace() {
	traceEnabled = false
}

// Trace logs a message if tracing is enabled.
func Trace(format string, v ...interface{}) {
	if traceEnabled {
		log.Printf(format, v...)
	}
}

// UnmappedAccess reports a bus access to an address with no mapping.
func UnmappedAccess(op string, addr uint16) {
	Trace("unmapped access: %s at 0x%04x", op, addr)
}

// UnknownOpcode reports an illegal opcode fetched by the processor.
func UnknownOpcode(opcode uint8, pc uint16) {
	Trace("illegal opcode 0x%02x at 0x%04x", opcode, pc)
}
