package remote

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func writeTestKey(t *testing.T) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path
}

func testDialerConfig(t *testing.T) DialerConfig {
	return DialerConfig{
		Host:    "proxy.example.com",
		User:    "cert-sync",
		KeyPath: writeTestKey(t),
		Timeout: 5 * time.Second,
		QPS:     1,
		Burst:   1,
	}
}

func TestNewSSHDialer_DefaultsPort(t *testing.T) {
	d, err := NewSSHDialer(testDialerConfig(t), logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, "proxy.example.com:22", d.addr)
	assert.Equal(t, "cert-sync", d.config.User)
	assert.Equal(t, 5*time.Second, d.config.Timeout)
}

func TestNewSSHDialer_KeepsExplicitPort(t *testing.T) {
	cfg := testDialerConfig(t)
	cfg.Host = "edge-1.internal:2222"

	d, err := NewSSHDialer(cfg, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, "edge-1.internal:2222", d.addr)
}

func TestNewSSHDialer_MissingKey(t *testing.T) {
	cfg := testDialerConfig(t)
	cfg.KeyPath = filepath.Join(t.TempDir(), "does-not-exist")

	_, err := NewSSHDialer(cfg, logr.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read SSH key")
}

func TestNewSSHDialer_GarbageKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_rsa")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))

	cfg := testDialerConfig(t)
	cfg.KeyPath = path

	_, err := NewSSHDialer(cfg, logr.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse SSH key")
}

func TestNewSSHDialer_MissingKnownHosts(t *testing.T) {
	cfg := testDialerConfig(t)
	cfg.KnownHostsPath = filepath.Join(t.TempDir(), "known_hosts")

	_, err := NewSSHDialer(cfg, logr.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known_hosts")
}
