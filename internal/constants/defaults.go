package constants

import "time"

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultSSHUser           = "cert-sync"
	DefaultSSHKeyPath        = "/secrets/id_rsa" // #nosec G101 -- Path to a mounted key file, not a credential
	DefaultSSHConnectTimeout = 5 * time.Second
	DefaultSSHRateLimitQPS   = 1.0
	DefaultSSHRateLimitBurst = 2

	DefaultRemoteCertDir   = "/opt/traefik/certs"
	DefaultRemoteConfigDir = "/etc/traefik/config"

	DefaultSyncInterval  = 30 * time.Second
	DefaultHashStorePath = "/var/lib/cert-sync/hashes"

	DefaultMetricsAddr = ":8080"
	DefaultHealthAddr  = ":8081"
)

// DefaultSSHPort is appended to the remote host address when no port is given.
const DefaultSSHPort = "22"
