// Package config loads the probe tool's settings from flags, environment
// variables, and an optional config file, in that precedence order.
package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is everything the probe tool needs to run one session.
type Config struct {
	// Device selects the target: a MAC address or a name substring.
	// Empty means scan and pick the first trainer-looking device.
	Device string `mapstructure:"device"`

	ScanTimeout    time.Duration `mapstructure:"scan_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// CollectWindow is how long telemetry is gathered before probing.
	CollectWindow time.Duration `mapstructure:"collect_window"`
	// AckTimeout bounds each control point acknowledgement wait.
	AckTimeout time.Duration `mapstructure:"ack_timeout"`

	// TelemetryOnly skips the control handshake and the command probe.
	TelemetryOnly bool `mapstructure:"telemetry_only"`

	LogFile   string `mapstructure:"log_file"`
	ReportDir string `mapstructure:"report_dir"`
}

// Load parses flags from args and merges them with YAFIT_* environment
// variables and an optional yafit-probe.yaml in the working directory.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("yafit-probe", pflag.ContinueOnError)
	flags.String("device", "", "target device MAC address or name substring")
	flags.Duration("scan-timeout", 15*time.Second, "how long to scan for devices")
	flags.Duration("connect-timeout", 10*time.Second, "how long to wait for the connection")
	flags.Duration("collect-window", 20*time.Second, "how long to collect telemetry before probing")
	flags.Duration("ack-timeout", 3*time.Second, "per-command acknowledgement timeout")
	flags.Bool("telemetry-only", false, "observe telemetry without sending control commands")
	flags.String("log-file", "", "log file path; empty logs to stderr")
	flags.String("report-dir", "reports", "directory for compatibility reports")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("YAFIT")
	v.AutomaticEnv()
	if err := v.BindPFlag("device", flags.Lookup("device")); err != nil {
		return Config{}, err
	}
	_ = v.BindPFlag("scan_timeout", flags.Lookup("scan-timeout"))
	_ = v.BindPFlag("connect_timeout", flags.Lookup("connect-timeout"))
	_ = v.BindPFlag("collect_window", flags.Lookup("collect-window"))
	_ = v.BindPFlag("ack_timeout", flags.Lookup("ack-timeout"))
	_ = v.BindPFlag("telemetry_only", flags.Lookup("telemetry-only"))
	_ = v.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = v.BindPFlag("report_dir", flags.Lookup("report-dir"))

	v.SetConfigName("yafit-probe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
