package at

import "strings"

const (
	// Terminal Control
	CRLF = "\r\n"

	// Response Codes
	OK    = "OK"
	ERROR = "ERROR"

	// Ring is the unsolicited incoming-call/text indicator. The module
	// emits it as a bare line; matching is case-insensitive.
	Ring = "RING"

	// Commands
	CmdAt        = "AT"
	CmdEchoOff   = "ATE0"
	CmdIMEI      = "AT+GSN"
	CmdCCID      = "AT+CCID"
	CmdClockRead = "AT+CCLK?"

	// Reply prefixes
	ReplyCCID  = "+CCID"
	ReplyClock = "+CCLK: "
)

type LineType int

const (
	TypeEmpty LineType = iota // blank separator line
	TypeRing                  // unsolicited ring indicator
	TypeReply                 // anything else, owed to the in-flight command
)

// Classify identifies the nature of a framed line from the module.
func Classify(line string) LineType {
	if line == "" {
		return TypeEmpty
	}
	if strings.EqualFold(line, Ring) {
		return TypeRing
	}
	return TypeReply
}
