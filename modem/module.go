package modem

import (
	"strconv"

	"i4.energy/across/lorawangw/command"
	"i4.energy/across/lorawangw/prompt"
)

// Reset restarts the module and waits for its boot banner.
func (m *Modem) Reset() error {
	return m.run(command.ModReset, prompt.ModReset, m.timeouts.Reset)
}

// FactoryReset restores the factory settings of the module.
func (m *Modem) FactoryReset() error {
	return m.run(command.ModFactoryReset, prompt.Ok, m.timeouts.Command)
}

// SetEcho turns the module's command echo on or off.
func (m *Modem) SetEcho(on bool) error {
	id := command.ModEchoOff
	if on {
		id = command.ModEchoOn
	}
	return m.run(id, prompt.Ok, m.timeouts.Command)
}

// ModSave stores the module settings in its non-volatile memory.
func (m *Modem) ModSave() error {
	return m.run(command.ModSave, prompt.Ok, m.timeouts.Command)
}

// GetVersion returns the firmware version string.
func (m *Modem) GetVersion() (string, error) {
	return m.getText(command.ModGetVersion)
}

// GetDevEUI returns the hardware DevEUI as printed by the module.
func (m *Modem) GetDevEUI() (string, error) {
	return m.getText(command.ModGetDevEUI)
}

// Sleep puts the module to sleep for the given number of seconds. The module
// does not answer, so Sleep only checks that the command line was echoed up
// to its terminator. Wake the module early with Wake.
func (m *Modem) Sleep(seconds uint32) error {
	if err := m.ready(); err != nil {
		return err
	}
	if err := m.send(command.ModSleep, strconv.FormatUint(uint64(seconds), 10)); err != nil {
		return err
	}

	m.timer.Arm(m.timeouts.Command)
	for m.waiting() {
		if !m.available() {
			continue
		}
		c := m.read()
		m.pushEcho(c)
		if c == command.Terminator {
			break
		}
	}
	m.flushEcho()
	m.logger.Debug("modem operation", "op", "mod sleep", "seconds", seconds)
	return nil
}

// Wake waits for the module to report back after a sleep period. Any byte
// written to the serial line wakes the module; Wake itself writes nothing.
func (m *Modem) Wake() error {
	if err := m.usable(); err != nil {
		return err
	}
	return m.expect("wake", prompt.Ok, m.timeouts.Wake)
}
