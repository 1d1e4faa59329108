package modem

import "i4.energy/across/lorawangw/prompt"

// Value returns the number parsed by the last numeric getter, or -1 when it
// carried none.
func (m *Modem) Value() int64 { return m.value }

// Text returns the line returned by the last text getter.
func (m *Modem) Text() string { return string(m.text) }

// RxData returns a copy of the downlink payload received by the last
// TransmitResult.
func (m *Modem) RxData() []byte {
	if len(m.rxData) == 0 {
		return nil
	}
	return append([]byte(nil), m.rxData...)
}

// RxPort returns the port of the last downlink, or 0 when there was none.
func (m *Modem) RxPort() uint8 { return m.rxPort }

// Margin returns the demodulation margin in dB from the last link check
// answer, or -1 when none was received.
func (m *Modem) Margin() int { return m.margin }

// Gateways returns the number of gateways that heard the last link check, or
// -1 when none was received.
func (m *Modem) Gateways() int { return m.gateways }

// LinkCheck reports whether the last uplink carried a usable link check
// answer.
func (m *Modem) LinkCheck() bool {
	return m.margin >= 0 && m.gateways > 0
}

// Prompt returns the most recently recognized prompt.
func (m *Modem) Prompt() prompt.ID { return m.current }

// PreviousPrompt returns the prompt recognized before Prompt.
func (m *Modem) PreviousPrompt() prompt.ID { return m.previous }
