package prompt

import (
	"strings"
	"testing"
)

func TestClassifyEveryToken(t *testing.T) {
	for id := Ready; int(id) < Count; id++ {
		tok := Token(id)
		t.Run(id.String(), func(t *testing.T) {
			var m Matcher
			for i := 0; i < len(tok); i++ {
				got := m.Classify(tok[i])
				if i < len(tok)-1 && got != None {
					t.Fatalf("byte %d of %q: expected none, got %v", i, tok, got)
				}
				if i == len(tok)-1 && got != id {
					t.Fatalf("final byte of %q: expected %v, got %v", tok, id, got)
				}
			}
		})
	}
}

func TestClassifyStrictPrefixNeverMatches(t *testing.T) {
	for id := Ready; int(id) < Count; id++ {
		tok := Token(id)
		for n := 1; n < len(tok); n++ {
			var m Matcher
			for i := 0; i < n; i++ {
				if got := m.Classify(tok[i]); got != None {
					t.Errorf("prefix %q of %v matched %v", tok[:n], id, got)
				}
			}
		}
	}
}

func TestClassifyDistinctVerdicts(t *testing.T) {
	seen := map[ID]string{}
	for id := Ready; int(id) < Count; id++ {
		var (
			m   Matcher
			got ID
		)
		for _, c := range []byte(Token(id)) {
			got = m.Classify(c)
		}
		if prev, ok := seen[got]; ok {
			t.Errorf("tokens %q and %q share verdict %v", prev, Token(id), got)
		}
		seen[got] = Token(id)
	}
}

func TestClassifyStream(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []ID
	}{
		{
			name:     "Version response",
			input:    "\r\n>> 1.2.3\r\n> ",
			expected: []ID{Prefix, Ready},
		},
		{
			name:     "Ok then ready",
			input:    ">> Ok\r\n> ",
			expected: []ID{Prefix, Ok, Ready},
		},
		{
			name:     "Link check result",
			input:    ">> DemodMargin = 5 \r\n>> NbGateways = 2 \r\n>> tx_ok\r\n> ",
			expected: []ID{Prefix, DemodMargin, Prefix, NbGateways, Prefix, TxOk, Ready},
		},
		{
			name:     "Downlink",
			input:    ">> rx 1 0A1F\r\n> ",
			expected: []ID{Prefix, Rx, Ready},
		},
		{
			name:     "Noise before prompt",
			input:    "xx>y> ",
			expected: []ID{Ready},
		},
		{
			name:     "Join rejected",
			input:    ">> unsuccess\r\n> ",
			expected: []ID{Prefix, Unsuccess, Ready},
		},
		{
			name:     "Nothing recognizable",
			input:    "hello world",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				m   Matcher
				got []ID
			)
			for _, c := range []byte(tt.input) {
				if id := m.Classify(c); id != None {
					got = append(got, id)
				}
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("prompt %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestClassifyReset(t *testing.T) {
	var m Matcher
	m.Classify('>')
	m.Classify('>')
	if got := m.Classify(Reset); got != None {
		t.Fatalf("reset byte returned %v", got)
	}
	// Without the reset this would complete ">> ".
	if got := m.Classify(' '); got != None {
		t.Errorf("expected none after reset, got %v", got)
	}

	m.Classify('>')
	m.Reset()
	if got := m.Classify(' '); got != None {
		t.Errorf("expected none after Reset(), got %v", got)
	}
}

func TestBuildDictionaryRejectsConflicts(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		errMsg string
	}{
		{name: "Prefix of later token", tokens: []string{"", "ab", "abc"}, errMsg: "overlaps"},
		{name: "Prefix of earlier token", tokens: []string{"", "abc", "ab"}, errMsg: "prefix"},
		{name: "Duplicate", tokens: []string{"", "ok\r", "ok\r"}, errMsg: "overlaps"},
		{name: "Single byte", tokens: []string{"", ">"}, errMsg: "too short"},
		{name: "Reset byte", tokens: []string{"", "a\x00b"}, errMsg: "reset byte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildDictionary(tt.tokens)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got: %v", tt.errMsg, err)
			}
		})
	}
}

func TestDictionaryLoadFactor(t *testing.T) {
	used := 0
	for _, s := range dict.slots {
		if s != 0 {
			used++
		}
	}
	if used*2 > len(dict.slots) {
		t.Errorf("load factor too high: %d of %d slots used", used, len(dict.slots))
	}
}
