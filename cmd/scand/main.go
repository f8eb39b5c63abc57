// Command scand is a reference network-scanner backend built on the
// device scanning core: it discovers eSCL scanners via mDNS, ingests
// any statically configured devices, and, as a demonstration of the
// frontend API, opens the first ready device, logs its scan parameters
// and closes it. It does not expose a control interface of its own.
//
// Usage:
//
//	scand [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  File path for protocol event logging (CBOR format)
//	-ready-timeout dur     Override the registry readiness wait
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexpevzner-fork/escl-scand/internal/config"
	"github.com/alexpevzner-fork/escl-scand/internal/device"
	"github.com/alexpevzner-fork/escl-scand/internal/eloop"
	"github.com/alexpevzner-fork/escl-scand/internal/escl"
	"github.com/alexpevzner-fork/escl-scand/internal/rasterdecode"
	"github.com/alexpevzner-fork/escl-scand/pkg/discovery"
	"github.com/alexpevzner-fork/escl-scand/pkg/httpclient"
	"github.com/alexpevzner-fork/escl-scand/pkg/scanlog"
)

var (
	flagConfig      string
	flagLogLevel    string
	flagProtocolLog string
	flagReadyWait   time.Duration
)

func init() {
	flag.StringVar(&flagConfig, "config", "", "Configuration file path")
	flag.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&flagProtocolLog, "protocol-log", "", "File path for protocol event logging (CBOR format)")
	flag.DurationVar(&flagReadyWait, "ready-timeout", 0, "Override the registry readiness wait")
}

func main() {
	flag.Parse()

	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			log.Fatalf("scand: loading config: %v", err)
		}
		cfg = loaded
	}
	if flagProtocolLog != "" {
		cfg.Log.ProtocolLogPath = flagProtocolLog
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	logger, closeLogger, err := buildLogger(cfg.Log)
	if err != nil {
		log.Fatalf("scand: setting up logging: %v", err)
	}
	defer closeLogger()

	log.Println("eSCL scanner backend")
	log.Println("====================")

	loop := eloop.New()
	loop.Start()
	defer loop.Stop()

	httpClient := httpclient.NewClient(httpclient.Config{
		Executor: loop.Call,
		Logger:   logger,
	})

	registry := device.NewRegistry(loop, httpClient, logger)

	factory := func(protocol string) (device.ProtocolHandler, bool) {
		if protocol == "escl" {
			return escl.New(), true
		}
		return nil, false
	}

	browserCfg := discovery.DefaultBrowserConfig()
	browserCfg.Interface = firstInterface(cfg.Discovery.Interfaces)
	browser, err := discovery.NewMDNSBrowser(browserCfg)
	if err != nil {
		log.Fatalf("scand: creating mDNS browser: %v", err)
	}
	engine := device.NewEngine(registry, loop, factory, browser, cfg.StaticDevices)

	ctx, cancel := context.WithCancel(context.Background())
	if err := engine.Start(ctx); err != nil {
		log.Fatalf("scand: starting discovery: %v", err)
	}

	// zeroconf has no native "initial sweep done" signal; treat the
	// configured browse timeout as that boundary.
	time.AfterFunc(discovery.BrowseTimeout, engine.NotifyInitScanFinished)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	readyTimeout := cfg.Discovery.ReadyTimeout
	if flagReadyWait > 0 {
		readyTimeout = flagReadyWait
	}

	go runControlDemo(registry, readyTimeout)

	select {
	case <-sigCh:
		log.Println("scand: shutting down")
	case <-ctx.Done():
	}

	cancel()
	engine.Stop()
}

// runControlDemo opens the first ready device once discovery settles
// and logs its capabilities, demonstrating the frontend API surface
// end to end. A real host would drive Handle from its own control
// protocol instead.
func runControlDemo(registry *device.Registry, readyTimeout time.Duration) {
	decoderFactory := func(device.ColorMode) device.Decoder { return rasterdecode.New() }

	handle, status := device.Open(registry, "", readyTimeout, decoderFactory)
	if status != device.StatusGood {
		log.Printf("scand: no ready device within %s (status=%s)", readyTimeout, status)
		return
	}
	defer handle.Close()

	params := handle.GetParameters()
	log.Printf("scand: opened device, frame=%s %dx%d", params.Format, params.PixelsPerLine, params.Lines)
}

func buildLogger(cfg config.LogConfig) (scanlog.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	console := scanlog.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.ProtocolLogPath == "" {
		return console, func() {}, nil
	}

	fileLogger, err := scanlog.NewFileLogger(cfg.ProtocolLogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("scand: opening protocol log: %w", err)
	}

	multi := scanlog.NewMultiLogger(console, fileLogger)
	return multi, func() { fileLogger.Close() }, nil
}

func firstInterface(ifaces []string) string {
	if len(ifaces) == 0 {
		return ""
	}
	return ifaces[0]
}
