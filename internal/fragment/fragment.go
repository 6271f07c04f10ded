// Package fragment renders Traefik dynamic-configuration fragments for
// synchronized certificates. One fragment is generated per domain and points
// Traefik at the certificate and key files placed under the remote
// certificate directory.
package fragment

import (
	"path"

	"sigs.k8s.io/yaml"

	"github.com/dc-tec/cert-sync-controller/internal/constants"
)

// File is the root of a Traefik dynamic configuration fragment.
type File struct {
	TLS TLS `json:"tls"`
}

// TLS carries the certificate list of a fragment.
type TLS struct {
	Certificates []Certificate `json:"certificates"`
}

// Certificate references one certificate/key pair on the proxy host.
type Certificate struct {
	CertFile string `json:"certFile"`
	KeyFile  string `json:"keyFile"`
}

// Render produces the YAML fragment for a domain whose material lives under
// certDir on the remote host.
func Render(certDir, domain string) ([]byte, error) {
	dir := path.Join(certDir, domain)
	return yaml.Marshal(File{
		TLS: TLS{
			Certificates: []Certificate{{
				CertFile: path.Join(dir, constants.RemoteCertFileName),
				KeyFile:  path.Join(dir, constants.RemoteKeyFileName),
			}},
		},
	})
}

// RemotePath returns the fragment destination for a domain under configDir.
func RemotePath(configDir, domain string) string {
	return path.Join(configDir, domain+constants.FragmentSuffix)
}
