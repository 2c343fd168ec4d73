package at

import (
	"bufio"
	"bytes"
)

// Splitter frames the raw byte stream from the modem into text lines. It
// uses the signature of bufio.SplitFunc so it can be directly used with
// bufio.Scanner.
//
// A line is everything up to a line feed, with a single trailing carriage
// return stripped if present. Chunk boundaries in the underlying stream do
// not affect the framing: bufio.Scanner re-invokes the splitter as more
// data arrives, so a line split across reads is assembled before it is
// emitted.
//
// The atEOF parameter indicates whether any more data will be available.
// When true, any remaining data is returned as the final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, dropCR(data[:i]), nil
	}

	if atEOF {
		return len(data), dropCR(data), nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// dropCR strips one trailing carriage return.
func dropCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[:len(data)-1]
	}
	return data
}
