package prompt

import (
	"errors"
	"fmt"
)

// A dictionary is a trie of prompt tokens stored in an open-addressing hash
// table. Each slot holds id<<24 | key where key = state | c<<16 and state is
// either a raw byte (< 0x100, the first byte of a token) or the index of the
// parent slot plus 0x100. A zero slot is empty and ends a probe sequence.
type dictionary struct {
	slots []uint32
}

const (
	keyMask   = 0x00FFFFFF
	slotState = 0x100
)

var dict = mustBuildDictionary(tokens[:])

func mustBuildDictionary(tokens []string) *dictionary {
	d, err := buildDictionary(tokens)
	if err != nil {
		panic("prompt: " + err.Error())
	}
	return d
}

// buildDictionary lays out tokens[id] for every non-empty entry. It fails when
// a token is shorter than two bytes, contains the reset byte, or is a prefix
// of another token.
func buildDictionary(tokens []string) (*dictionary, error) {
	if len(tokens) > 0x100 {
		return nil, errors.New("too many tokens")
	}
	nodes := 0
	for _, tok := range tokens {
		if tok != "" {
			nodes += len(tok) - 1
		}
	}
	size := nextPrime(2*nodes + 1)
	if size+slotState > 0xFFFF {
		return nil, errors.New("dictionary too large")
	}
	d := &dictionary{slots: make([]uint32, size)}

	for id, tok := range tokens {
		if tok == "" {
			continue
		}
		if len(tok) < 2 {
			return nil, fmt.Errorf("token %q too short", tok)
		}
		if tok[0] == Reset {
			return nil, fmt.Errorf("token %q contains the reset byte", tok)
		}
		state := uint32(tok[0])
		for i := 1; i < len(tok); i++ {
			c := tok[i]
			if c == Reset {
				return nil, fmt.Errorf("token %q contains the reset byte", tok)
			}
			last := i == len(tok)-1
			key := state | uint32(c)<<16
			slot, found := d.find(key)
			switch {
			case found && d.slots[slot]>>24 != 0:
				return nil, fmt.Errorf("token %q overlaps an existing token", tok)
			case found && last:
				return nil, fmt.Errorf("token %q is a prefix of another token", tok)
			case !found && last:
				d.slots[slot] = key | uint32(id)<<24
			case !found:
				d.slots[slot] = key
			}
			state = uint32(slot) + slotState
		}
	}
	return d, nil
}

// find probes linearly from key mod size. It returns the matching slot, or
// the empty slot that ended the probe.
func (d *dictionary) find(key uint32) (int, bool) {
	size := uint32(len(d.slots))
	i := key % size
	for d.slots[i] != 0 {
		if d.slots[i]&keyMask == key {
			return int(i), true
		}
		i = (i + 1) % size
	}
	return int(i), false
}

func nextPrime(n int) int {
	if n < 3 {
		return 3
	}
	for ; ; n++ {
		prime := true
		for f := 2; f*f <= n; f++ {
			if n%f == 0 {
				prime = false
				break
			}
		}
		if prime {
			return n
		}
	}
}

// Matcher classifies a byte stream against the prompt dictionary one byte at
// a time. The zero value is ready to use.
type Matcher struct {
	state uint32
}

// Classify feeds c and returns the ID of the prompt that ends with it, or
// None. Feeding the Reset byte clears the window.
func (m *Matcher) Classify(c byte) ID {
	return m.classify(dict, c)
}

func (m *Matcher) classify(d *dictionary, c byte) ID {
	if c == Reset {
		m.state = 0
		return None
	}
	slot, found := d.find(m.state | uint32(c)<<16)
	if !found {
		m.state = uint32(c)
		return None
	}
	if id := ID(d.slots[slot] >> 24); id != None {
		m.state = 0
		return id
	}
	m.state = uint32(slot) + slotState
	return None
}

// Reset clears the rolling window.
func (m *Matcher) Reset() {
	m.state = 0
}
