package settings

import (
	"os"
	"path/filepath"

	"github.com/kirsle/configdir"
	"github.com/parkbrowse/parkbrowse/internal/discovery"
	"github.com/parkbrowse/parkbrowse/pkg/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configRoot = "parkbrowse"
	// DefaultConfigName is the settings file name inside the config root.
	DefaultConfigName = "parkbrowse.yaml"

	defaultNetworkVersion = "0.4.5"
	defaultListenAddr     = "localhost:8920"
)

type RunMode string

const (
	ModeRelease RunMode = "release"
	ModeDebug   RunMode = "debug"
	ModeTest    RunMode = "test"
)

// UserSettings is the persisted user configuration.
type UserSettings struct {
	// MasterServerURL overrides the built-in directory URL when non-empty.
	MasterServerURL string `yaml:"master_server_url"`
	// BroadcastAddress is the subnet broadcast address probed for LAN
	// servers.
	BroadcastAddress string `yaml:"broadcast_address"`
	// NetworkVersion identifies the game protocol this client speaks.
	// Servers running the same version rank as compatible.
	NetworkVersion  string  `yaml:"network_version"`
	HTTPEnabled     bool    `yaml:"http_enabled"`
	HTTPListenAddr  string  `yaml:"http_listen_addr"`
	RunMode         RunMode `yaml:"run_mode"`
	LogLevel        string  `yaml:"log_level"`
	DebugLogEnabled bool    `yaml:"debug_log_enabled"`
}

// New returns the default settings.
func New() UserSettings {
	return UserSettings{
		MasterServerURL:  "",
		BroadcastAddress: discovery.DefaultBroadcastAddress,
		NetworkVersion:   defaultNetworkVersion,
		HTTPEnabled:      true,
		HTTPListenAddr:   defaultListenAddr,
		RunMode:          ModeRelease,
		LogLevel:         "info",
		DebugLogEnabled:  false,
	}
}

// ConfigRoot returns the per-user config directory, creating it if required.
func ConfigRoot() (string, error) {
	configPath := configdir.LocalConfig(configRoot)
	if errMakePath := configdir.MakePath(configPath); errMakePath != nil {
		return "", errors.Wrap(errMakePath, "Failed to create config directory")
	}

	return configPath, nil
}

// LoadOrCreate reads the settings file at path, creating it with defaults
// when absent. Unset fields keep their defaults.
func LoadOrCreate(path string) (UserSettings, error) {
	userSettings := New()

	if !util.Exists(path) {
		if errSave := userSettings.Save(path); errSave != nil {
			return userSettings, errSave
		}

		return userSettings, nil
	}

	body, errRead := os.ReadFile(path)
	if errRead != nil {
		return userSettings, errors.Wrap(errRead, "Failed to read settings file")
	}

	if errUnmarshal := yaml.Unmarshal(body, &userSettings); errUnmarshal != nil {
		return userSettings, errors.Wrap(errUnmarshal, "Failed to parse settings file")
	}

	return userSettings, nil
}

// Save writes the settings to path as yaml.
func (s UserSettings) Save(path string) error {
	body, errMarshal := yaml.Marshal(s)
	if errMarshal != nil {
		return errors.Wrap(errMarshal, "Failed to encode settings")
	}

	if errWrite := os.WriteFile(path, body, 0o644); errWrite != nil {
		return errors.Wrap(errWrite, "Failed to write settings file")
	}

	return nil
}

// LogFilePath is where the debug log lands when enabled.
func (s UserSettings) LogFilePath() string {
	return filepath.Join(configdir.LocalConfig(configRoot), "parkbrowse.log")
}
