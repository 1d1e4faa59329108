package prompt_test

import (
	"bufio"
	"strings"
	"testing"

	"i4.energy/across/lorawangw/prompt"
)

func TestSplitter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Ready only",
			input:    "\r\n> ",
			expected: []string{"\r\n> "},
		},
		{
			name:     "Value response",
			input:    ">> 5\r\n> ",
			expected: []string{">> ", "5\r\n> "},
		},
		{
			name:     "Transmit result",
			input:    ">> tx_ok\r\n> ",
			expected: []string{">> ", "tx_ok\r", "\n> "},
		},
		{
			name:     "Trailing text at EOF",
			input:    ">> TLM",
			expected: []string{">> ", "TLM"},
		},
		{
			name:     "No prompt at all",
			input:    "garbage",
			expected: []string{"garbage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []string
			scanner := bufio.NewScanner(strings.NewReader(tt.input))
			scanner.Split(prompt.Splitter)

			for scanner.Scan() {
				tokens = append(tokens, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				t.Fatalf("Scanner error: %v", err)
			}

			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d.\nExpected: %q\nGot: %q",
					len(tt.expected), len(tokens), tt.expected, tokens)
			}
			for i, expected := range tt.expected {
				if tokens[i] != expected {
					t.Errorf("Token %d: expected %q, got %q", i, expected, tokens[i])
				}
			}
		})
	}
}

func TestLast(t *testing.T) {
	if got := prompt.Last([]byte(">> accepted\r\n> ")); got != prompt.Ready {
		t.Errorf("expected ready, got %v", got)
	}
	if got := prompt.Last([]byte(">> accepted\r")); got != prompt.Accepted {
		t.Errorf("expected accepted, got %v", got)
	}
	if got := prompt.Last([]byte("noise")); got != prompt.None {
		t.Errorf("expected none, got %v", got)
	}
}
