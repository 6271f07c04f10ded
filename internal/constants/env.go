// Package constants holds shared names, defaults, and layout conventions for
// the cert-sync controller.
package constants

// Environment variable keys understood by the controller.
const (
	EnvSSHHost           = "SSH_HOST"
	EnvSSHUser           = "SSH_USER"
	EnvSSHKeyPath        = "SSH_KEY_PATH" // #nosec G101 -- This is an environment variable name constant, not a credential
	EnvSSHKnownHostsPath = "SSH_KNOWN_HOSTS_PATH"
	EnvSSHConnectTimeout = "SSH_CONNECT_TIMEOUT"
	EnvSSHRateLimitQPS   = "SSH_RATE_LIMIT_QPS"
	EnvSSHRateLimitBurst = "SSH_RATE_LIMIT_BURST"

	EnvRemoteCertDir   = "REMOTE_CERT_DIR"
	EnvRemoteConfigDir = "REMOTE_CONFIG_DIR"

	EnvSyncInterval      = "SYNC_INTERVAL"
	EnvSyncSchedule      = "SYNC_SCHEDULE"
	EnvHashStorePath     = "HASH_STORE_PATH"
	EnvSkipTraefikConfig = "SKIP_TRAEFIK_CONFIG"
	EnvDebug             = "DEBUG"

	EnvMetricsAddr = "METRICS_ADDR"
	EnvHealthAddr  = "HEALTH_ADDR"
)
