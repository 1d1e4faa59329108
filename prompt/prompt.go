package prompt

// ID identifies one of the fixed markers the modem prints to report status
// or to introduce a payload.
type ID uint8

const (
	None ID = iota // no token recognized yet

	Ready       // idle prompt, the modem accepts a new command
	Prefix      // introduces a response line (value, text or status)
	Ok          // command accepted
	On          // boolean query answered true
	Off         // boolean query answered false
	Accepted    // join accepted by the network
	Unsuccess   // join or confirmed uplink failed
	TxOk        // uplink transmitted
	Rx          // downlink follows: port, then hex payload
	DemodMargin // link check margin follows
	NbGateways  // link check gateway count follows
	Invalid     // command or argument rejected
	Err         // generic failure
	Busy        // radio busy
	NotJoined   // uplink attempted before join
	ModReset    // boot banner after a module reset
)

// Reset is the sentinel byte that clears the matcher window.
const Reset byte = 0

// tokens maps every ID to the exact bytes the modem emits for it. Tokens must
// be prefix-free when read from their first byte.
var tokens = [...]string{
	Ready:       "> ",
	Prefix:      ">> ",
	Ok:          "Ok\r",
	On:          "on\r",
	Off:         "off\r",
	Accepted:    "accepted\r",
	Unsuccess:   "unsuccess\r",
	TxOk:        "tx_ok\r",
	Rx:          "rx ",
	DemodMargin: "DemodMargin = ",
	NbGateways:  "NbGateways = ",
	Invalid:     "Invalid\r",
	Err:         "err\r",
	Busy:        "busy\r",
	NotJoined:   "not_joined\r",
	ModReset:    "TLM922S\r",
}

var names = [...]string{
	None:        "none",
	Ready:       "ready",
	Prefix:      "prefix",
	Ok:          "ok",
	On:          "on",
	Off:         "off",
	Accepted:    "accepted",
	Unsuccess:   "unsuccess",
	TxOk:        "tx_ok",
	Rx:          "rx",
	DemodMargin: "demod_margin",
	NbGateways:  "nb_gateways",
	Invalid:     "invalid",
	Err:         "err",
	Busy:        "busy",
	NotJoined:   "not_joined",
	ModReset:    "mod_reset",
}

// Count is the number of defined IDs, None included.
const Count = int(ModReset) + 1

// Token returns the wire text of id, or "" for None and unknown IDs.
func Token(id ID) string {
	if int(id) >= len(tokens) {
		return ""
	}
	return tokens[id]
}

func (id ID) String() string {
	if int(id) >= len(names) {
		return "unknown"
	}
	return names[id]
}

// Failure reports whether id is an explicit negative acknowledgement.
func (id ID) Failure() bool {
	switch id {
	case Unsuccess, Invalid, Err, Busy, NotJoined:
		return true
	}
	return false
}
