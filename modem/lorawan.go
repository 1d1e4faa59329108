package modem

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"i4.energy/across/lorawangw/command"
	"i4.energy/across/lorawangw/prompt"
)

// JoinMode selects the LoRaWAN activation procedure.
type JoinMode uint8

const (
	OTAA JoinMode = iota // over-the-air activation
	ABP                  // activation by personalization
)

func (j JoinMode) String() string {
	switch j {
	case OTAA:
		return "otaa"
	case ABP:
		return "abp"
	}
	return "JoinMode(" + strconv.Itoa(int(j)) + ")"
}

// ParseJoinMode accepts "otaa" or "abp" in any case.
func ParseJoinMode(s string) (JoinMode, error) {
	switch strings.ToLower(s) {
	case "otaa":
		return OTAA, nil
	case "abp":
		return ABP, nil
	}
	return 0, fmt.Errorf("join mode %q: %w", s, ErrInvalidArgument)
}

const (
	// MaxDataRate is the highest data rate index the module accepts.
	MaxDataRate = 15
	// MinPort and MaxPort bound the application ports usable for uplinks.
	MinPort = 1
	MaxPort = 223
)

// GetDataRate returns the current uplink data rate index.
func (m *Modem) GetDataRate() (uint8, error) {
	v, err := m.getValue(command.LoRaGetDataRate)
	return uint8(v), err
}

// SetDataRate sets the uplink data rate index.
func (m *Modem) SetDataRate(dr uint8) error {
	if dr > MaxDataRate {
		return fmt.Errorf("lorawan set_dr: data rate %d: %w", dr, ErrInvalidArgument)
	}
	return m.run(command.LoRaSetDataRate, prompt.Ok, m.timeouts.SetDataRate, strconv.Itoa(int(dr)))
}

// GetADR reports whether adaptive data rate is enabled.
func (m *Modem) GetADR() (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}
	if err := m.send(command.LoRaGetADR); err != nil {
		return false, err
	}
	r := m.skipPrompt(m.timeouts.Command, terminal(prompt.On, prompt.Off))
	if r != prompt.Ready {
		m.drain()
	}
	m.flushEcho()
	if err := m.result(opName(command.LoRaGetADR), r, r == prompt.On || r == prompt.Off); err != nil {
		return false, err
	}
	return r == prompt.On, nil
}

// SetADR enables or disables adaptive data rate.
func (m *Modem) SetADR(on bool) error {
	id := command.LoRaADROff
	if on {
		id = command.LoRaADROn
	}
	return m.run(id, prompt.Ok, m.timeouts.Command)
}

// LoRaSave stores the LoRaWAN settings in non-volatile memory.
func (m *Modem) LoRaSave() error {
	return m.run(command.LoRaSave, prompt.Ok, m.timeouts.Command)
}

// Join starts a join procedure. It returns once the module has acknowledged
// the request; call JoinResult to wait for the network's answer.
func (m *Modem) Join(mode JoinMode) error {
	id := command.LoRaJoinOTAA
	switch mode {
	case OTAA:
	case ABP:
		id = command.LoRaJoinABP
	default:
		return fmt.Errorf("join: %w: %s", ErrInvalidArgument, mode)
	}

	if err := m.ready(); err != nil {
		return err
	}
	if err := m.send(id); err != nil {
		return err
	}
	// The join outcome follows on the same line, so the input is not drained.
	r := m.skipPrompt(m.timeouts.Join, terminal(prompt.Ok))
	m.flushEcho()
	return m.result(opName(id), r, r == prompt.Ok)
}

// JoinResult waits for the outcome of a join started with Join.
func (m *Modem) JoinResult() error {
	if err := m.usable(); err != nil {
		return err
	}
	accepted := false
	r := m.untilReady(m.timeouts.JoinResult, func(r prompt.ID) {
		if r == prompt.Accepted {
			accepted = true
		}
	})
	m.flushEcho()
	return m.result("join result", r, accepted)
}

// GetDevAddr returns the device address assigned by the last join.
func (m *Modem) GetDevAddr() (string, error) {
	return m.getText(command.LoRaGetDevAddr)
}

// GetUpCount returns the uplink frame counter.
func (m *Modem) GetUpCount() (uint32, error) {
	return m.getValue(command.LoRaGetUpCount)
}

// GetDownCount returns the downlink frame counter.
func (m *Modem) GetDownCount() (uint32, error) {
	return m.getValue(command.LoRaGetDownCount)
}

// SetLinkCheck requests a link check with the next uplink. Its answer is
// reported by TransmitResult through Margin and Gateways.
func (m *Modem) SetLinkCheck() error {
	return m.run(command.LoRaSetLinkCheck, prompt.Ok, m.timeouts.Command)
}

// Transmit queues an uplink on port. It returns once the module has
// acknowledged the request; call TransmitResult for the outcome.
func (m *Modem) Transmit(confirmed bool, port uint8, payload []byte) error {
	id := command.LoRaTxUnconfirmed
	if confirmed {
		id = command.LoRaTxConfirmed
	}
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%s: port %d: %w", opName(id), port, ErrInvalidArgument)
	}
	return m.run(id, prompt.Ok, m.timeouts.Transmit,
		strconv.Itoa(int(port)), strings.ToUpper(hex.EncodeToString(payload)))
}

// TransmitResult waits for the outcome of an uplink started with Transmit.
// Link check answers and downlink data that arrive before the ready prompt
// are recorded for Margin, Gateways, RxPort and RxData.
func (m *Modem) TransmitResult() error {
	if err := m.usable(); err != nil {
		return err
	}
	m.margin = -1
	m.gateways = -1
	m.rxPort = 0
	m.rxData = m.rxData[:0]

	sent := false
	r := m.untilReady(m.timeouts.TransmitResult, func(r prompt.ID) {
		switch r {
		case prompt.TxOk:
			sent = true
		case prompt.DemodMargin:
			m.margin = int(m.parseDecimal())
		case prompt.NbGateways:
			m.gateways = int(m.parseDecimal())
		case prompt.Rx:
			m.rxPort = uint8(m.parseDecimal())
			m.parseHexData()
		}
	})
	m.flushEcho()
	return m.result("tx result", r, sent)
}
