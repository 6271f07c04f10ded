package constants

import "time"

// Remote file layout. File names are fixed regardless of the originating
// Secret name so that Traefik configuration fragments stay stable across
// certificate renewals.
const (
	RemoteCertFileName = "tls.crt"
	RemoteKeyFileName  = "tls.key"
	FragmentSuffix     = ".yml"
)

// File modes applied to material placed on the remote host. Certificate and
// key files are owner-only; fragments must be readable by the Traefik process.
const (
	CertFileMode     = 0o600
	FragmentFileMode = 0o644
)

// Data keys of kubernetes.io/tls Secrets.
const (
	SecretKeyCert = "tls.crt"
	SecretKeyKey  = "tls.key"
)

// HealthStaleThreshold is the maximum heartbeat age before the health endpoint
// reports the controller as stale.
const HealthStaleThreshold = 120 * time.Second
