package command

import (
	"errors"
	"fmt"
)

// A graph stores command texts as linked nodes of 3 bytes each: the literal
// byte and the little-endian address of the next node. Node addresses start at
// nodeBase; an address below nodeBase is itself the final literal byte.
//
// Walking a command from its entry yields its bytes last to first, so commands
// with common leading text converge onto shared nodes.
type graph struct {
	nodes   []byte
	entries []uint16 // 0 is a null entry
}

const nodeBase = 0x100

var table = mustBuildGraph(texts[:])

func mustBuildGraph(texts []string) *graph {
	g, err := buildGraph(texts)
	if err != nil {
		panic("command: " + err.Error())
	}
	return g
}

func buildGraph(texts []string) (*graph, error) {
	type link struct {
		c    byte
		next uint16
	}
	g := &graph{entries: make([]uint16, len(texts))}
	seen := map[link]uint16{}

	for id, text := range texts {
		if text == "" {
			continue
		}
		if text[0] == 0 {
			return nil, fmt.Errorf("command %d starts with a zero byte", id)
		}
		addr := uint16(text[0])
		for i := 1; i < len(text); i++ {
			l := link{c: text[i], next: addr}
			if a, ok := seen[l]; ok {
				addr = a
				continue
			}
			if len(g.nodes)+3+nodeBase > 0xFFFF {
				return nil, errors.New("command graph too large")
			}
			a := uint16(len(g.nodes) + nodeBase)
			g.nodes = append(g.nodes, l.c, byte(l.next), byte(l.next>>8))
			seen[l] = a
			addr = a
		}
		g.entries[id] = addr
	}
	return g, nil
}

// walk appends the bytes of id to buf in reverse transmission order.
func (g *graph) walk(buf []byte, id ID) []byte {
	if int(id) >= len(g.entries) {
		return buf
	}
	addr := g.entries[id]
	if addr == 0 {
		return buf
	}
	for addr >= nodeBase {
		i := int(addr - nodeBase)
		buf = append(buf, g.nodes[i])
		addr = uint16(g.nodes[i+1]) | uint16(g.nodes[i+2])<<8
	}
	return append(buf, byte(addr))
}

// Walk returns the bytes of id as stored, last byte first. It returns nil for
// unknown or null commands.
func Walk(id ID) []byte {
	return table.walk(nil, id)
}

// Decode returns the bytes of id in transmission order, or nil for unknown or
// null commands.
func Decode(id ID) []byte {
	return AppendDecode(nil, id)
}

// AppendDecode appends the transmission-order bytes of id to dst.
func AppendDecode(dst []byte, id ID) []byte {
	start := len(dst)
	dst = table.walk(dst, id)
	for i, j := start, len(dst)-1; i < j; i, j = i+1, j-1 {
		dst[i], dst[j] = dst[j], dst[i]
	}
	return dst
}

// Size reports the number of bytes used by the node table.
func Size() int {
	return len(table.nodes)
}
