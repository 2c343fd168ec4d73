package at_test

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/martincalsyn/fona-go/at"
)

func TestSplitter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Simple AT command response",
			input:    "AT+CCID\r\n+CCID8901234567890\r\nOK\r\n",
			expected: []string{"AT+CCID", "+CCID8901234567890", "OK"},
		},
		{
			name:     "Attention with echo",
			input:    "AT\r\nOK\r\n",
			expected: []string{"AT", "OK"},
		},
		{
			name:     "Error reply",
			input:    "AT+CPIN=0000\r\nERROR\r\n",
			expected: []string{"AT+CPIN=0000", "ERROR"},
		},
		{
			name:     "Clock reply",
			input:    "AT+CCLK?\r\n+CCLK: \"23/01/02,15:30:45+08\"\r\nOK\r\n",
			expected: []string{"AT+CCLK?", "+CCLK: \"23/01/02,15:30:45+08\"", "OK"},
		},
		{
			name:     "Empty separator lines kept as tokens",
			input:    "\r\n\r\nAT\r\nOK\r\n\r\n",
			expected: []string{"", "", "AT", "OK", ""},
		},
		{
			name:     "Bare LF terminator",
			input:    "OK\n",
			expected: []string{"OK"},
		},
		{
			name:     "Repeated RING lines",
			input:    "RING\r\nRING\r\nNO CARRIER\r\n",
			expected: []string{"RING", "RING", "NO CARRIER"},
		},
		{
			name:     "Incomplete line at EOF",
			input:    "AT+GSN\r\n86753090000",
			expected: []string{"AT+GSN", "86753090000"},
		},
		{
			name:     "Trailing CR at EOF stripped",
			input:    "OK\r",
			expected: []string{"OK"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(at.Splitter)

			var tokens []string
			for scanner.Scan() {
				tokens = append(tokens, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				t.Fatalf("unexpected scanner error: %v", err)
			}

			if len(tokens) != len(tt.expected) {
				t.Fatalf("expected %d tokens %q, got %d tokens %q",
					len(tt.expected), tt.expected, len(tokens), tokens)
			}
			for i, want := range tt.expected {
				if tokens[i] != want {
					t.Errorf("token %d: expected %q, got %q", i, want, tokens[i])
				}
			}
		})
	}
}

// chunkReader returns its payload in fixed-size chunks to simulate
// arbitrary arrival boundaries on a serial line.
type chunkReader struct {
	data string
	size int
	off  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	end := r.off + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.off:end])
	r.off += n
	return n, nil
}

func TestSplitterChunkBoundaryIndependence(t *testing.T) {
	const input = "AT\r\nOK\r\nRING\r\n+CCLK: \"23/01/02,15:30:45+08\"\r\nERROR\r\n"

	frame := func(r io.Reader) []string {
		scanner := bufio.NewScanner(r)
		scanner.Split(at.Splitter)
		var tokens []string
		for scanner.Scan() {
			tokens = append(tokens, scanner.Text())
		}
		return tokens
	}

	want := frame(strings.NewReader(input))

	for size := 1; size <= len(input); size++ {
		got := frame(&chunkReader{data: input, size: size})
		if len(got) != len(want) {
			t.Fatalf("chunk size %d: expected %q, got %q", size, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("chunk size %d: expected %q, got %q", size, want, got)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line     string
		expected at.LineType
	}{
		{"", at.TypeEmpty},
		{"RING", at.TypeRing},
		{"ring", at.TypeRing},
		{"Ring", at.TypeRing},
		{"RINGING", at.TypeReply},
		{"OK", at.TypeReply},
		{"ERROR", at.TypeReply},
		{"+CCID8901234567890", at.TypeReply},
		{"AT", at.TypeReply},
	}

	for _, tt := range tests {
		if got := at.Classify(tt.line); got != tt.expected {
			t.Errorf("Classify(%q): expected %v, got %v", tt.line, tt.expected, got)
		}
	}
}
