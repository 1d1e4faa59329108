package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"i4.energy/across/lorawangw/modem"
	"i4.energy/across/lorawangw/store"
)

// Device is the part of *modem.Modem the gateway drives.
type Device interface {
	GetVersion() (string, error)
	GetDevEUI() (string, error)
	GetDevAddr() (string, error)
	GetDataRate() (uint8, error)
	GetUpCount() (uint32, error)
	GetDownCount() (uint32, error)
	Join(mode modem.JoinMode) error
	JoinResult() error
	SetLinkCheck() error
	Transmit(confirmed bool, port uint8, payload []byte) error
	TransmitResult() error
	Margin() int
	Gateways() int
	RxPort() uint8
	RxData() []byte
	Close() error
}

// UplinkStore records uplinks.
type UplinkStore interface {
	SaveUplink(u *store.Uplink) error
	RecentUplinks(limit int) ([]store.Uplink, error)
}

// ErrBadRequest is returned for requests that cannot be sent as given.
var ErrBadRequest = errors.New("bad request")

// UplinkRequest asks for one uplink.
type UplinkRequest struct {
	Port      uint8  `json:"port"`
	Confirmed bool   `json:"confirmed"`
	Payload   string `json:"payload"` // hex
	LinkCheck bool   `json:"link_check,omitempty"`
}

// Status describes the modem. Fields the modem did not report are left
// empty.
type Status struct {
	Version   string  `json:"version"`
	DevEUI    string  `json:"dev_eui,omitempty"`
	DevAddr   string  `json:"dev_addr,omitempty"`
	DataRate  *uint8  `json:"data_rate,omitempty"`
	UpCount   *uint32 `json:"up_count,omitempty"`
	DownCount *uint32 `json:"down_count,omitempty"`
	Joined    bool    `json:"joined"`
}

// Gateway serializes access to the modem and records every uplink.
type Gateway struct {
	mu     sync.Mutex
	device Device
	store  UplinkStore
	events *EventListener
	logger *slog.Logger
	joined bool
}

func NewGateway(device Device, uplinks UplinkStore, events *EventListener, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if events == nil {
		events = NewEventListener()
	}
	return &Gateway{
		device: device,
		store:  uplinks,
		events: events,
		logger: logger,
	}
}

// Status queries the modem. Only a failing version query is an error; the
// other fields are best effort.
func (g *Gateway) Status() (*Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	version, err := g.device.GetVersion()
	if err != nil {
		return nil, err
	}
	s := &Status{Version: version, Joined: g.joined}
	if eui, err := g.device.GetDevEUI(); err == nil {
		s.DevEUI = eui
	}
	if addr, err := g.device.GetDevAddr(); err == nil {
		s.DevAddr = addr
	}
	if dr, err := g.device.GetDataRate(); err == nil {
		s.DataRate = &dr
	}
	if n, err := g.device.GetUpCount(); err == nil {
		s.UpCount = &n
	}
	if n, err := g.device.GetDownCount(); err == nil {
		s.DownCount = &n
	}
	return s, nil
}

// Join runs a join procedure and waits for its outcome.
func (g *Gateway) Join(mode modem.JoinMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.device.Join(mode)
	if err == nil {
		err = g.device.JoinResult()
	}
	g.joined = err == nil

	data := map[string]any{"mode": mode.String(), "joined": g.joined}
	if err != nil {
		data["error"] = err.Error()
		g.logger.Warn("Join failed", "mode", mode, "error", err)
	} else {
		g.logger.Info("Joined network", "mode", mode)
	}
	g.events.Publish("join", data)
	return err
}

// Uplink transmits req and records the outcome. The returned record is nil
// only when req was rejected before reaching the modem.
func (g *Gateway) Uplink(req UplinkRequest) (*store.Uplink, error) {
	payload, err := hex.DecodeString(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrBadRequest, err)
	}
	if req.Port < modem.MinPort || req.Port > modem.MaxPort {
		return nil, fmt.Errorf("%w: port %d out of range", ErrBadRequest, req.Port)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if req.LinkCheck {
		err = g.device.SetLinkCheck()
	}
	if err == nil {
		err = g.device.Transmit(req.Confirmed, req.Port, payload)
	}
	if err == nil {
		err = g.device.TransmitResult()
	}

	u := &store.Uplink{
		Port:      req.Port,
		Confirmed: req.Confirmed,
		Payload:   strings.ToUpper(req.Payload),
		Success:   err == nil,
		Margin:    g.device.Margin(),
		Gateways:  g.device.Gateways(),
	}
	if err != nil {
		u.Error = err.Error()
		u.Margin, u.Gateways = -1, -1
	} else if rx := g.device.RxData(); len(rx) > 0 || g.device.RxPort() != 0 {
		u.RxPort = g.device.RxPort()
		u.RxData = strings.ToUpper(hex.EncodeToString(rx))
	}

	if serr := g.store.SaveUplink(u); serr != nil {
		g.logger.Error("Failed to record uplink", "error", serr)
	}
	g.events.Publish("uplink", u)
	if err != nil {
		g.logger.Warn("Uplink failed", "port", req.Port, "error", err)
		return u, err
	}
	g.logger.Info("Uplink sent", "port", req.Port, "payload_length", len(payload), "rx_port", u.RxPort)
	return u, nil
}

// Uplinks returns the most recent uplink records.
func (g *Gateway) Uplinks(limit int) ([]store.Uplink, error) {
	return g.store.RecentUplinks(limit)
}

// Close waits for the running operation and closes the device.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.device.Close()
}
