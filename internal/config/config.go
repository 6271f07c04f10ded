// Package config loads the controller configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dc-tec/cert-sync-controller/internal/constants"
	syncerrors "github.com/dc-tec/cert-sync-controller/internal/errors"
)

// Config holds the full controller configuration. It is loaded once at
// startup and never mutated afterwards.
type Config struct {
	// Remote host
	SSHHost           string
	SSHUser           string
	SSHKeyPath        string
	SSHKnownHostsPath string
	ConnectTimeout    time.Duration
	DialQPS           float64
	DialBurst         int

	// Remote layout
	RemoteCertDir   string
	RemoteConfigDir string

	// Reconciliation
	SyncInterval  time.Duration
	SyncSchedule  string
	HashStorePath string

	SkipTraefikConfig bool
	Debug             bool

	// Listeners
	MetricsAddr string
	HealthAddr  string
}

// Load reads configuration from the environment, applies defaults, and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		SSHHost:           strings.TrimSpace(os.Getenv(constants.EnvSSHHost)),
		SSHUser:           envOrDefault(constants.EnvSSHUser, constants.DefaultSSHUser),
		SSHKeyPath:        envOrDefault(constants.EnvSSHKeyPath, constants.DefaultSSHKeyPath),
		SSHKnownHostsPath: strings.TrimSpace(os.Getenv(constants.EnvSSHKnownHostsPath)),
		RemoteCertDir:     envOrDefault(constants.EnvRemoteCertDir, constants.DefaultRemoteCertDir),
		RemoteConfigDir:   envOrDefault(constants.EnvRemoteConfigDir, constants.DefaultRemoteConfigDir),
		SyncSchedule:      strings.TrimSpace(os.Getenv(constants.EnvSyncSchedule)),
		HashStorePath:     envOrDefault(constants.EnvHashStorePath, constants.DefaultHashStorePath),
		MetricsAddr:       envOrDefault(constants.EnvMetricsAddr, constants.DefaultMetricsAddr),
		HealthAddr:        envOrDefault(constants.EnvHealthAddr, constants.DefaultHealthAddr),
	}

	var err error
	if cfg.ConnectTimeout, err = envDuration(constants.EnvSSHConnectTimeout, constants.DefaultSSHConnectTimeout); err != nil {
		return nil, syncerrors.WrapConfig(err)
	}
	if cfg.SyncInterval, err = envDuration(constants.EnvSyncInterval, constants.DefaultSyncInterval); err != nil {
		return nil, syncerrors.WrapConfig(err)
	}
	if cfg.SkipTraefikConfig, err = envBool(constants.EnvSkipTraefikConfig, false); err != nil {
		return nil, syncerrors.WrapConfig(err)
	}
	if cfg.Debug, err = envBool(constants.EnvDebug, false); err != nil {
		return nil, syncerrors.WrapConfig(err)
	}
	if cfg.DialQPS, err = envFloat(constants.EnvSSHRateLimitQPS, constants.DefaultSSHRateLimitQPS); err != nil {
		return nil, syncerrors.WrapConfig(err)
	}
	if cfg.DialBurst, err = envInt(constants.EnvSSHRateLimitBurst, constants.DefaultSSHRateLimitBurst); err != nil {
		return nil, syncerrors.WrapConfig(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is complete and internally
// consistent.
func (c *Config) Validate() error {
	if c.SSHHost == "" {
		return syncerrors.WrapConfig(fmt.Errorf("%s environment variable is required", constants.EnvSSHHost))
	}
	if c.ConnectTimeout <= 0 {
		return syncerrors.WrapConfig(fmt.Errorf("connect timeout must be positive, got %v", c.ConnectTimeout))
	}
	if c.SyncInterval <= 0 {
		return syncerrors.WrapConfig(fmt.Errorf("sync interval must be positive, got %v", c.SyncInterval))
	}
	if c.DialQPS <= 0 {
		return syncerrors.WrapConfig(fmt.Errorf("dial rate limit must be positive, got %v", c.DialQPS))
	}
	if c.DialBurst <= 0 {
		return syncerrors.WrapConfig(fmt.Errorf("dial burst must be positive, got %d", c.DialBurst))
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return b, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return f, nil
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return i, nil
}
