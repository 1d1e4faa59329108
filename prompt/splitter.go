package prompt

import "bufio"

// Splitter tokenizes a modem transcript. It uses the signature of
// bufio.SplitFunc so it can be used directly with bufio.Scanner.
//
// Each token is the text up to and including the next recognized prompt.
// When atEOF is set, any trailing text without a prompt is returned as the
// final token.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	var m Matcher
	for i, c := range data {
		if m.Classify(c) != None {
			return i + 1, data[:i+1], nil
		}
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

// Last returns the last prompt recognized in text, or None.
func Last(text []byte) ID {
	var (
		m    Matcher
		last ID
	)
	for _, c := range text {
		if id := m.Classify(c); id != None {
			last = id
		}
	}
	return last
}
