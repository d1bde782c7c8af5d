// yafit-probe scans for an indoor cycling device, runs a full telemetry
// and control probing session against it, and writes a compatibility
// report.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"
	"tinygo.org/x/bluetooth"

	"github.com/9916bernard/isYafit-mobile-sub001/internal/bt"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/compat"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/config"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/gofuncutil"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/history"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/protocol"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/session"
)

var adapter = bluetooth.DefaultAdapter

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Printf("yafit-probe: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger logs to stderr, or to a size-rotated file when configured.
func newLogger(cfg config.Config) *log.Logger {
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		}
	}
	return log.New(out, "", log.LstdFlags|log.Lmsgprefix)
}

func run(cfg config.Config, logger *log.Logger) error {
	manager := bt.NewBTManager(adapter, logger, cfg.ScanTimeout)
	if err := manager.Enable(); err != nil {
		return fmt.Errorf("enable BLE stack: %w", err)
	}
	defer manager.Shutdown()

	device, err := findDevice(manager, cfg, logger)
	if err != nil {
		return err
	}
	logger.Printf("yafit-probe: probing %s (%s)", device.GetLocalName(), device.GetAddressString())

	store := history.NewStore(logger)
	if prev, ok := store.Get(device.GetAddressString()); ok {
		logger.Printf("yafit-probe: previously graded %s as %s on %s",
			prev.Protocol, prev.Level, prev.ProbedAt.Format("2006-01-02"))
	}

	sess := session.New(logger, manager, device, session.Config{
		TelemetryOnly:  cfg.TelemetryOnly,
		Collect:        true,
		ConnectTimeout: cfg.ConnectTimeout,
		Delays:         session.DefaultDelayPolicy(),
	})

	states := make(chan session.State, 16)
	defer sess.ListenState(states)()
	gofuncutil.Go(logger, func() {
		for state := range states {
			logger.Printf("yafit-probe: session %s", state)
		}
	})

	connected := true
	if err := sess.Start(); err != nil {
		connected = false
		logger.Printf("yafit-probe: session start failed: %v", err)
	}
	defer sess.Disconnect()

	if connected {
		logger.Printf("yafit-probe: collecting telemetry for %s", cfg.CollectWindow)
		time.Sleep(cfg.CollectWindow)
	}

	var probeReport session.ProbeReport
	if connected && !cfg.TelemetryOnly && sess.Kind().SupportsControl() {
		probeReport = sess.Probe(cfg.AckTimeout)
	}

	records := sess.Records()
	in := compat.Input{
		Connected: connected,
		Device: protocol.DeviceDescriptor{
			ID:           device.GetAddressString(),
			Name:         device.GetLocalName(),
			ServiceUUIDs: device.GetServiceUUIDs(),
		},
		Detection: sess.Detection(),
		Profile:   sess.Profile(),
		Records:   records,
		Probe:     probeReport,
		Issues:    compat.DetectIssues(records, probeReport),
	}
	eval := compat.Analyze(in)

	now := time.Now()
	store.Put(history.Entry{
		Address:  in.Device.ID,
		Name:     in.Device.Name,
		Protocol: in.Detection.Resolved,
		Level:    eval.Level,
		ProbedAt: now,
	})
	if err := compat.WriteReport(os.Stdout, in, eval, now); err != nil {
		return err
	}
	path, err := compat.SaveReport(cfg.ReportDir, in, eval, now)
	if err != nil {
		return err
	}
	logger.Printf("yafit-probe: report saved to %s", path)
	fmt.Printf("\nReport saved to %s\n", path)
	return nil
}

// findDevice scans until the configured device shows up, or until the
// scan window ends. Without a --device filter the first advertiser of a
// known trainer service wins.
func findDevice(manager bt.BTManagerInterface, cfg config.Config, logger *log.Logger) (bt.BTDevice, error) {
	manager.StartScan(protocol.ScanServiceUUIDs())
	defer manager.StopScan()

	logger.Printf("yafit-probe: scanning for devices (%s)", cfg.ScanTimeout)
	deadline := time.Now().Add(cfg.ScanTimeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	seen := map[string]bool{}
	for range ticker.C {
		for _, device := range manager.GetScanDevices() {
			addr := device.GetAddressString()
			if !seen[addr] {
				seen[addr] = true
				logger.Printf("yafit-probe: found %s (%s)", device.GetLocalName(), addr)
			}
			if matchesTarget(device, cfg.Device) {
				return device, nil
			}
		}
		if time.Now().After(deadline) {
			break
		}
	}
	if cfg.Device != "" {
		return nil, fmt.Errorf("device %q not found within %s", cfg.Device, cfg.ScanTimeout)
	}
	return nil, fmt.Errorf("no trainer found within %s", cfg.ScanTimeout)
}

func matchesTarget(device bt.BTDevice, target string) bool {
	if target == "" {
		return true
	}
	if strings.EqualFold(device.GetAddressString(), target) {
		return true
	}
	return strings.Contains(
		strings.ToUpper(device.GetLocalName()),
		strings.ToUpper(target),
	)
}
