package command

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestDecodeEveryCommand(t *testing.T) {
	for id := ID(0); id < count; id++ {
		want := texts[id]
		if got := string(Decode(id)); got != want {
			t.Errorf("command %d: expected %q, got %q", id, want, got)
		}

		walked := Walk(id)
		slices.Reverse(walked)
		if string(walked) != want {
			t.Errorf("command %d: reversed walk expected %q, got %q", id, want, walked)
		}
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	if got := Decode(count); got != nil {
		t.Errorf("expected nil, got %q", got)
	}
	if got := Walk(ID(200)); got != nil {
		t.Errorf("expected nil, got %q", got)
	}
}

func TestDecodeNullEntry(t *testing.T) {
	g, err := buildGraph([]string{"ab\r", "", "ac\r"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.walk(nil, 1); len(got) != 0 {
		t.Errorf("expected empty walk for null entry, got %q", got)
	}
	if got := g.walk(nil, 2); string(got) != "\rca" {
		t.Errorf("expected %q, got %q", "\rca", got)
	}
}

func TestGraphSharesCommonText(t *testing.T) {
	total := 0
	for _, text := range texts {
		total += len(text) - 1
	}
	if Size()/3 >= total {
		t.Errorf("expected shared nodes, got %d nodes for %d bytes", Size()/3, total)
	}

	on, off := Walk(LoRaADROn), Walk(LoRaADROff)
	shared := len("lorawan set_adr o")
	if !bytes.Equal(on[len(on)-shared:], off[len(off)-shared:]) {
		t.Errorf("expected a shared tail of %d bytes, got %q and %q", shared, on, off)
	}

	a, b := string(Decode(LoRaJoinOTAA)), string(Decode(LoRaJoinABP))
	if strings.TrimSuffix(a, "otaa\r") != strings.TrimSuffix(b, "abp\r") {
		t.Errorf("expected %q and %q to differ only in the join mode", a, b)
	}
}

func TestAppendDecode(t *testing.T) {
	got := AppendDecode([]byte("xx"), ModSave)
	if string(got) != "xxmod save\r" {
		t.Errorf("expected %q, got %q", "xxmod save\r", got)
	}
}

func TestParameterized(t *testing.T) {
	for _, id := range []ID{ModSleep, LoRaSetDataRate, LoRaTxConfirmed, LoRaTxUnconfirmed} {
		if !Parameterized(id) {
			t.Errorf("command %q should take arguments", Text(id))
		}
	}
	if Parameterized(ModGetVersion) {
		t.Error("get_ver takes no arguments")
	}
	if Parameterized(count) {
		t.Error("unknown command cannot take arguments")
	}
}
