// Command mnetctl is a one-shot CLI for talking to a single WP3000/IC1000
// controller over M-net: read data points, fetch events/alarms/the remote
// display, set the clock, or send start/stop/reset commands.
//
// Flags:
//
//	-port:    serial device path (e.g. /dev/ttyUSB0); mutually exclusive with -tcp
//	-tcp:     host:port of a TCP serial-tunnel endpoint
//	-baud:    serial baud rate (default transport.DefaultBaudRate)
//	-config:  optional JSON config file (client.Config shape); flags override it
//	-dst:     turbine node address (default client.DefaultTurbineAddr)
//	-login:   login code (default 131)
//	-op:      list-ports | read | events | alarms | display | time-get |
//	          time-set | command
//	-point:   point name for -op=read (see datapoint.PointNames)
//	-avg:     averaging name for -op=read (default "current")
//	-command: start | stop | reset for -op=command
//	-limit:   entry count for -op=events/alarms (default 10)
//	-yes:     skip the confirmation prompt before a write operation
//	-debug:   print verbose per-operation debug output
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ic1000/mnet-go/client"
	"github.com/ic1000/mnet-go/datapoint"
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
		op         = flag.String("op", "read", "list-ports|read|events|alarms|display|time-get|time-set|command")
		pointName  = flag.String("point", "wind_speed", "point name for -op=read")
		avgName    = flag.String("avg", "current", "averaging name for -op=read")
		cmdName    = flag.String("command", "start", "start|stop|reset for -op=command")
		limit      = flag.Int("limit", 10, "entry count for -op=events/alarms")
		yes        = flag.Bool("yes", false, "skip the confirmation prompt before a write operation")
		debug      = flag.Bool("debug", false, "print verbose per-operation debug output")
	)
	flag.Parse()

	if *op == "list-ports" {
		for _, p := range transport.ListSerialPorts() {
			fmt.Println(p)
		}
		return
	}

	cfg := client.Config{LoginCode: byte(*loginCode)}
	if *configPath != "" {
		loaded, err := client.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("mnetctl: %v", err)
		}
		cfg = *loaded
	}

	// Flags only override a loaded config when explicitly set, so -config
	// values survive when the matching flag is left at its default.
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

	ch, err := openChannel(cfg)
	if err != nil {
		log.Fatalf("mnetctl: %v", err)
	}

	c := client.New(ch, cfg)
	c.SetLogger(log.New(os.Stderr, "mnetctl: ", log.LstdFlags))

	ui.Debugf(*debug, "connecting to turbine %#02x via %s\n", cfg.TurbineAddr, channelDesc(cfg))
	if _, err := c.GetSerialNumber(cfg.TurbineAddr); err != nil {
		log.Fatalf("mnetctl: get_serial_number: %v", err)
	}
	if err := c.Login(cfg.TurbineAddr, cfg.LoginCode); err != nil {
		log.Fatalf("mnetctl: login: %v", err)
	}
	ui.Greenf("authenticated with turbine %#02x\n", cfg.TurbineAddr)

	if err := runOp(c, cfg.TurbineAddr, *op, *pointName, *avgName, *cmdName, *limit, *yes, *debug); err != nil {
		if c.State() == client.StateBroken && ui.NextResetChoice() == 'R' {
			c.Reset()
			if _, err := c.GetSerialNumber(cfg.TurbineAddr); err != nil {
				log.Fatalf("mnetctl: get_serial_number: %v", err)
			}
			if err := c.Login(cfg.TurbineAddr, cfg.LoginCode); err != nil {
				log.Fatalf("mnetctl: login: %v", err)
			}
			if err := runOp(c, cfg.TurbineAddr, *op, *pointName, *avgName, *cmdName, *limit, *yes, *debug); err != nil {
				log.Fatalf("mnetctl: %s: %v", *op, err)
			}
			return
		}
		ui.Warningf("mnetctl: %s: %v\n", *op, err)
		os.Exit(1)
	}
}

func channelDesc(cfg client.Config) string {
	if cfg.TCPAddr != "" {
		return cfg.TCPAddr
	}
	return cfg.SERIAL.PORT
}

func openChannel(cfg client.Config) (transport.Channel, error) {
	switch {
	case cfg.TCPAddr != "":
		return transport.DialTCP(cfg.TCPAddr)
	case cfg.SERIAL.PORT != "":
		return transport.OpenSerial(transport.SerialConfig{Port: cfg.SERIAL.PORT, BaudRate: cfg.SERIAL.BAUDRATE})
	default:
		return nil, fmt.Errorf("one of -port or -tcp is required")
	}
}

func runOp(c *client.Client, dst byte, op, pointName, avgName, cmdName string, limit int, yes, debug bool) error {
	ui.Debugf(debug, "running -op=%s\n", op)
	switch op {
	case "read":
		point, err := datapoint.LookupPoint(pointName)
		if err != nil {
			return err
		}
		avg, err := datapoint.LookupAveraging(avgName)
		if err != nil {
			return err
		}
		v, err := c.RequestData(dst, point, avg)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s) = %s\n", pointName, avgName, v.String())
		return nil

	case "events":
		events, err := c.GetEventsBatch(dst, limit)
		if err != nil {
			return err
		}
		for _, ev := range events {
			ui.PrintEventLine(ev.Index, ev.Code, ev.Text)
		}
		return nil

	case "alarms":
		alarms, err := c.GetAlarmHistoryBatch(dst, true)
		if err != nil {
			return err
		}
		if limit >= 0 && len(alarms) > limit {
			alarms = alarms[:limit]
		}
		for _, a := range alarms {
			ui.PrintAlarmLine(a.SubID, a.Description)
		}
		return nil

	case "display":
		lines, err := c.GetRemoteDisplayText(dst)
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil

	case "time-get":
		t, err := c.GetControllerTime(dst)
		if err != nil {
			return err
		}
		fmt.Println(t.UTC().Format(time.RFC3339))
		return nil

	case "time-set":
		if !confirmWrite(yes, "Set controller time to now?") {
			ui.Warningf("time-set aborted by user\n")
			return fmt.Errorf("aborted by user")
		}
		return c.SetControllerTime(dst, time.Now())

	case "command":
		cmd, err := parseCommand(cmdName)
		if err != nil {
			return err
		}
		if !confirmWrite(yes, fmt.Sprintf("Send command %q to turbine?", cmdName)) {
			ui.Warningf("command %q aborted by user\n", cmdName)
			return fmt.Errorf("aborted by user")
		}
		return c.SendCommand(dst, cmd)

	default:
		return fmt.Errorf("unknown -op %q", op)
	}
}

func parseCommand(name string) (client.Command, error) {
	switch name {
	case "start":
		return client.CommandStart, nil
	case "stop":
		return client.CommandStop, nil
	case "reset":
		return client.CommandReset, nil
	default:
		return 0, fmt.Errorf("unknown -command %q", name)
	}
}

func confirmWrite(yes bool, message string) bool {
	if yes {
		return true
	}
	return ui.NextYN(message) == 'Y'
}
