// Command mnetmon is a long-running monitor: it authenticates once, then
// polls a fixed set of data points on an interval, streaming decoded
// snapshots to a browser over a websocket dashboard, while periodically
// resyncing the controller's clock and accepting ad-hoc commands over a
// command-injection channel shared with the poll loop via the client's own
// mutex (spec §5's "periodic time sync is a driver concern, not core").
//
// Flags:
//
//	-port/-tcp/-baud/-config/-dst/-login: same as mnetctl
//	-addr:          HTTP listen address for the dashboard (default 127.0.0.1:8090)
//	-poll:          poll interval (default 2s)
//	-resync:        controller clock resync interval (default 4h, 0 disables)
//	-clear:         clear the terminal before the startup banner
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ic1000/mnet-go/client"
	"github.com/ic1000/mnet-go/datapoint"
	"github.com/ic1000/mnet-go/internal/dashboard"
	"github.com/ic1000/mnet-go/transport"
	"github.com/ic1000/mnet-go/ui"
)

func main() {
	var (
		port       = flag.String("port", "", "serial device path")
		tcpAddr    = flag.String("tcp", "", "TCP serial-tunnel host:port")
		baud       = flag.Int("baud", transport.DefaultBaudRate, "serial baud rate")
		configPath = flag.String("config", "", "optional JSON config file")
		dst        = flag.Int("dst", int(client.DefaultTurbineAddr), "turbine node address")
		loginCode  = flag.Int("login", 131, "login code")
		addr       = flag.String("addr", "127.0.0.1:8090", "dashboard HTTP listen address")
		poll       = flag.Duration("poll", 2*time.Second, "poll interval")
		resync     = flag.Duration("resync", 4*time.Hour, "controller clock resync interval (0 disables)")
		clear      = flag.Bool("clear", false, "clear the terminal before the startup banner")
	)
	flag.Parse()

	if *clear {
		ui.ClearScreen()
	}

	errLog := log.New(ui.NewRedWriter(os.Stderr), "mnetmon: ", log.LstdFlags)

	cfg := client.Config{LoginCode: byte(*loginCode)}
	if *configPath != "" {
		loaded, err := client.LoadConfig(*configPath)
		if err != nil {
			errLog.Fatalf("%v", err)
		}
		cfg = *loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["port"] {
		cfg.SERIAL.PORT = *port
	}
	if set["baud"] {
		cfg.SERIAL.BAUDRATE = *baud
	}
	if set["tcp"] {
		cfg.TCPAddr = *tcpAddr
	}
	if set["dst"] {
		cfg.TurbineAddr = byte(*dst)
	}
	if set["login"] {
		cfg.LoginCode = byte(*loginCode)
	}

	var ch transport.Channel
	var err error
	switch {
	case cfg.TCPAddr != "":
		ch, err = transport.DialTCP(cfg.TCPAddr)
	case cfg.SERIAL.PORT != "":
		ch, err = transport.OpenSerial(transport.SerialConfig{Port: cfg.SERIAL.PORT, BaudRate: cfg.SERIAL.BAUDRATE})
	default:
		err = fmt.Errorf("one of -port or -tcp is required")
	}
	if err != nil {
		errLog.Fatalf("%v", err)
	}

	logger := log.New(os.Stderr, "mnetmon: ", log.LstdFlags)
	c := client.New(ch, cfg)
	c.SetLogger(logger)

	if _, err := c.GetSerialNumber(cfg.TurbineAddr); err != nil {
		errLog.Fatalf("get_serial_number: %v", err)
	}
	if err := c.Login(cfg.TurbineAddr, cfg.LoginCode); err != nil {
		errLog.Fatalf("login: %v", err)
	}
	logger.Printf("authenticated with turbine %#02x", cfg.TurbineAddr)

	hub := dashboard.NewWSHub()
	mon := dashboard.NewMonitor(c, cfg.TurbineAddr, hub, defaultPoints())
	mon.SetLogger(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", dashboard.Handler(hub))
	go func() {
		logger.Printf("dashboard listening on http://%s/ws", *addr)
		if err := http.ListenAndServe(*addr, mux); err != nil {
			logger.Printf("dashboard server stopped: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands := make(chan func(*client.Client), 8)
	go commandLoop(ctx, c, cfg.TurbineAddr, commands, logger)

	if *resync > 0 {
		go resyncLoop(ctx, c, cfg.TurbineAddr, *resync, logger)
	}

	mon.Run(ctx, *poll)
}

// defaultPoints is the representative set mnetmon streams to the dashboard.
func defaultPoints() []dashboard.PointSpec {
	return []dashboard.PointSpec{
		{Label: "wind_speed", Point: datapoint.WindSpeed, Avg: datapoint.Current},
		{Label: "rotor_rpm", Point: datapoint.RotorRPM, Avg: datapoint.Current},
		{Label: "generator_rpm", Point: datapoint.GeneratorRPM, Avg: datapoint.Current},
		{Label: "grid_power", Point: datapoint.GridPower, Avg: datapoint.Current},
		{Label: "grid_voltage", Point: datapoint.GridVoltage, Avg: datapoint.Current},
		{Label: "system_production", Point: datapoint.SystemProduction, Avg: datapoint.Current},
	}
}

// resyncLoop pushes the host clock to the controller on a fixed interval.
// It calls directly into c rather than through the commands channel; the
// client's own mutex (spec §5) still serializes it against the poll loop
// and commandLoop.
func resyncLoop(ctx context.Context, c *client.Client, dst byte, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.SetControllerTime(dst, time.Now()); err != nil {
				logger.Printf("resync: set_controller_time: %v", err)
			} else {
				logger.Printf("resync: controller clock synced")
			}
		}
	}
}

// commandLoop serializes ad-hoc client operations submitted from elsewhere
// in the process (e.g. a future control-plane handler) against the poll
// loop and the resync loop, all three of which share one *client.Client.
func commandLoop(ctx context.Context, c *client.Client, dst byte, commands <-chan func(*client.Client), logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-commands:
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Printf("command: panic: %v", r)
					}
				}()
				fn(c)
			}()
		}
	}
}
