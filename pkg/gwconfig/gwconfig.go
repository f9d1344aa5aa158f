// Package gwconfig resolves gateway startup configuration: the transport
// choice, logging destination, and listen port, validating the mutually
// exclusive CLI option groups spec §6 requires before the event loop ever
// starts.
package gwconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPort is the gateway's default TCP listen port.
const DefaultPort = 8888

// TransportKind names which transport the gateway was started against.
type TransportKind int

const (
	TransportNone TransportKind = iota
	TransportTTY
	TransportDevice
	TransportFile
)

// Options is the resolved, validated set of gateway startup options.
type Options struct {
	Debug      bool
	Port       int
	Bluetooth  bool
	LogPath    string
	NoLog      bool
	Transport  TransportKind
	TTYPath    string
	DeviceAddr string
	FilePath   string
}

// RawFlags mirrors the CLI surface verbatim before validation, so callers
// (the urfave/cli/v3 command action) don't need to know Options' invariants
// to build one.
type RawFlags struct {
	Debug      bool
	Port       int
	Bluetooth  bool
	LogPath    string
	NoLog      bool
	TTYPath    string
	DeviceAddr string
	FilePath   string
}

// Resolve validates the mutually-exclusive flag groups in spec §6 and
// produces Options, or a configuration error if the caller specified a
// conflicting or incomplete combination. Configuration errors are rejected
// before the loop starts, per spec §7.
func Resolve(raw RawFlags) (*Options, error) {
	if raw.LogPath != "" && raw.NoLog {
		return nil, fmt.Errorf("gwconfig: -l/--log and -n/--nolog are mutually exclusive")
	}

	transportCount := 0
	kind := TransportNone
	if raw.TTYPath != "" {
		transportCount++
		kind = TransportTTY
	}
	if raw.DeviceAddr != "" {
		transportCount++
		kind = TransportDevice
	}
	if raw.FilePath != "" {
		transportCount++
		kind = TransportFile
	}
	switch {
	case transportCount == 0:
		return nil, fmt.Errorf("gwconfig: exactly one of -t/--tty, -d/--device, -f/--file is required")
	case transportCount > 1:
		return nil, fmt.Errorf("gwconfig: -t/--tty, -d/--device, -f/--file are mutually exclusive")
	}

	port := raw.Port
	if port == 0 {
		port = DefaultPort
	}

	opts := &Options{
		Debug:      raw.Debug,
		Port:       port,
		Bluetooth:  raw.Bluetooth,
		LogPath:    raw.LogPath,
		NoLog:      raw.NoLog,
		Transport:  kind,
		TTYPath:    raw.TTYPath,
		DeviceAddr: raw.DeviceAddr,
		FilePath:   raw.FilePath,
	}

	if !opts.NoLog && opts.LogPath == "" {
		opts.LogPath = DefaultTracePath()
	}

	return opts, nil
}

// Defaults is an optional TOML file of operator-chosen fallback values
// (default port, default log directory) loaded before CLI flags are
// applied, mirroring the teacher's config-file-with-defaults pattern.
type Defaults struct {
	Port    int    `toml:"port"`
	LogDir  string `toml:"log_dir"`
	TTYPath string `toml:"tty_path"`
}

// LoadDefaults reads an optional TOML defaults file. A missing file is not
// an error; it simply yields zero-value defaults.
func LoadDefaults(path string) (*Defaults, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Defaults{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading defaults file: %w", err)
	}

	var d Defaults
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshaling defaults file: %w", err)
	}
	return &d, nil
}

// Apply fills any RawFlags field left at its zero value from d.
func (d *Defaults) Apply(raw *RawFlags) {
	if raw.Port == 0 && d.Port != 0 {
		raw.Port = d.Port
	}
	if raw.TTYPath == "" && raw.DeviceAddr == "" && raw.FilePath == "" && d.TTYPath != "" {
		raw.TTYPath = d.TTYPath
	}
	if raw.LogPath == "" && !raw.NoLog && d.LogDir != "" {
		raw.LogPath = filepath.Join(d.LogDir, "gateway.trace.log")
	}
}

// ConfigDir returns the gateway's configuration directory, honoring
// XDG_CONFIG_HOME.
func ConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "robot-inventor-gateway")
}

// DataDir returns the gateway's data directory (trace logs land here by
// default), honoring XDG_DATA_HOME.
func DataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "robot-inventor-gateway")
}

// DefaultConfigPath returns the default defaults-file path.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultTracePath returns the default trace log path used when file
// logging is requested without an explicit path.
func DefaultTracePath() string {
	return filepath.Join(DataDir(), "gateway.trace.log")
}
