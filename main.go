package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i4.energy/across/lorawangw/modem"
	"i4.energy/across/lorawangw/store"
)

func main() {
	configFile := flag.String("config", "", "Path to a TOML configuration file")
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the modem")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("db-path", "data/lorawangw.db", "SQLite database for the uplink history")
	flag.String("join-mode", "otaa", "Join procedure (otaa, abp)")
	flag.Bool("join-on-start", false, "Join the network at startup")
	flag.Bool("transcript", false, "Stream the raw modem dialogue on /ws/events")
	flag.String("mqtt-broker", "", "MQTT broker URL, empty disables the MQTT bridge")
	flag.String("mqtt-topic", "lorawan/uplink", "MQTT topic for uplink requests")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configFile), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	joinMode, err := modem.ParseJoinMode(config.JoinMode)
	if err != nil {
		logger.Error("Invalid join mode", "error", err)
		os.Exit(1)
	}

	uplinks, err := store.Open(config.DBPath)
	if err != nil {
		logger.Error("Failed to open uplink store", "error", err)
		os.Exit(1)
	}
	defer uplinks.Close()

	events := NewEventListener()

	builder := modem.NewConfigBuilder().
		WithLogger(logger.With("component", "modem")).
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		})
	if config.Transcript {
		builder = builder.WithTranscript(&transcriptWriter{events: events})
	}
	modemConfig, err := builder.Build()
	if err != nil {
		logger.Error("Failed to create modem config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := modem.New(ctx, modemConfig)
	if err != nil {
		logger.Error("Failed to create modem", "error", err)
		os.Exit(1)
	}

	gateway := NewGateway(m, uplinks, events, logger.With("component", "gateway"))
	if status, err := gateway.Status(); err == nil {
		logger.Info("Starting LoRaWAN Gateway", "version", status.Version, "dev_eui", status.DevEUI)
	} else {
		logger.Warn("Starting LoRaWAN Gateway without modem status", "error", err)
	}

	if config.JoinOnStart {
		go gateway.Join(joinMode)
	}

	httpServer := &http.Server{
		Addr:    config.BindAddress,
		Handler: NewServer(logger.With("component", "server"), gateway, events, joinMode),
	}

	if config.MQTTBroker != "" {
		bridge := &Bridge{
			Logger:  logger.With("component", "mqtt"),
			Gateway: gateway,
			Topic:   config.MQTTTopic,
		}
		if err := bridge.Start(ctx, config.MQTTBroker, config.MQTTClientID, config.MQTTUsername, config.MQTTPassword); err != nil {
			logger.Error("MQTT bridge failed", "error", err)
		}
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}

	logger.Info("Closing modem connection")
	if err := gateway.Close(); err != nil {
		logger.Error("Failed to close modem", "error", err)
	}
}
