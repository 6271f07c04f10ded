package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestRender(t *testing.T) {
	data, err := Render("/opt/traefik/certs", "example.com")
	require.NoError(t, err)

	var parsed File
	require.NoError(t, yaml.Unmarshal(data, &parsed))

	require.Len(t, parsed.TLS.Certificates, 1)
	assert.Equal(t, "/opt/traefik/certs/example.com/tls.crt", parsed.TLS.Certificates[0].CertFile)
	assert.Equal(t, "/opt/traefik/certs/example.com/tls.key", parsed.TLS.Certificates[0].KeyFile)
}

func TestRemotePath(t *testing.T) {
	assert.Equal(t, "/etc/traefik/config/example.com.yml", RemotePath("/etc/traefik/config", "example.com"))
}
