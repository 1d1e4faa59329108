// Package command holds the fixed command vocabulary of the TLM922S modem and
// the compact graph it is stored in.
package command

// ID selects one command text.
type ID uint8

const (
	ModFactoryReset ID = iota
	ModReset
	ModGetVersion
	ModGetDevEUI
	ModSleep
	ModEchoOn
	ModEchoOff
	ModSave
	LoRaGetDataRate
	LoRaSetDataRate
	LoRaGetADR
	LoRaADROn
	LoRaADROff
	LoRaSave
	LoRaJoinOTAA
	LoRaJoinABP
	LoRaGetDevAddr
	LoRaGetUpCount
	LoRaGetDownCount
	LoRaSetLinkCheck
	LoRaTxConfirmed
	LoRaTxUnconfirmed

	count
)

// Terminator ends every command line.
const Terminator = '\r'

// texts are the canonical command lines. Commands that take arguments end in
// a space; the caller appends the arguments and the terminator.
var texts = [count]string{
	ModFactoryReset:   "mod factory_reset\r",
	ModReset:          "mod reset\r",
	ModGetVersion:     "mod get_ver\r",
	ModGetDevEUI:      "mod get_hw_deveui\r",
	ModSleep:          "mod sleep ",
	ModEchoOn:         "mod set_echo on\r",
	ModEchoOff:        "mod set_echo off\r",
	ModSave:           "mod save\r",
	LoRaGetDataRate:   "lorawan get_dr\r",
	LoRaSetDataRate:   "lorawan set_dr ",
	LoRaGetADR:        "lorawan get_adr\r",
	LoRaADROn:         "lorawan set_adr on\r",
	LoRaADROff:        "lorawan set_adr off\r",
	LoRaSave:          "lorawan save\r",
	LoRaJoinOTAA:      "lorawan join otaa\r",
	LoRaJoinABP:       "lorawan join abp\r",
	LoRaGetDevAddr:    "lorawan get_devaddr\r",
	LoRaGetUpCount:    "lorawan get_upcnt\r",
	LoRaGetDownCount:  "lorawan get_dwcnt\r",
	LoRaSetLinkCheck:  "lorawan set_linkchk\r",
	LoRaTxConfirmed:   "lorawan tx cnf ",
	LoRaTxUnconfirmed: "lorawan tx ucnf ",
}

// Text returns the canonical text of id, or "" when id is out of range.
func Text(id ID) string {
	if id >= count {
		return ""
	}
	return texts[id]
}

// Parameterized reports whether id expects arguments before the terminator.
func Parameterized(id ID) bool {
	t := Text(id)
	return t != "" && t[len(t)-1] == ' '
}
