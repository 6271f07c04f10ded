// Package remote provides the SSH/SFTP transport used to place certificate
// material on the proxy host.
package remote

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/time/rate"

	"github.com/dc-tec/cert-sync-controller/internal/constants"
)

// Conn is an open connection to the remote host. Callers must Close it on
// every exit path.
type Conn interface {
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
	// WriteFile places data at path with the given mode, creating or
	// truncating the file.
	WriteFile(path string, data []byte, mode os.FileMode) error
	Close() error
}

// Dialer opens connections to the remote host.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// DialerConfig holds the connection parameters for the remote host.
type DialerConfig struct {
	Host           string // host or host:port; port defaults to 22
	User           string
	KeyPath        string
	KnownHostsPath string // empty disables host key verification
	Timeout        time.Duration
	QPS            float64
	Burst          int
}

// SSHDialer dials the proxy host over SSH and speaks SFTP on top. Dials are
// rate limited so that tight retry loops cannot hammer the remote sshd.
type SSHDialer struct {
	addr    string
	config  *ssh.ClientConfig
	limiter *rate.Limiter
	logger  logr.Logger
}

// NewSSHDialer builds a dialer from the given configuration. The private key
// is read once at construction; a missing or unparsable key is a startup
// error, not a per-sync one.
func NewSSHDialer(cfg DialerConfig, logger logr.Logger) (*SSHDialer, error) {
	key, err := os.ReadFile(cfg.KeyPath) // #nosec G304 -- Path comes from controller configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key %s: %w", cfg.KeyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key %s: %w", cfg.KeyPath, err)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() // #nosec G106 -- Matches the scp-style default; strict checking is opt-in below
	if cfg.KnownHostsPath != "" {
		hostKeyCallback, err = knownhosts.New(cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts %s: %w", cfg.KnownHostsPath, err)
		}
	} else {
		logger.Info("SSH host key verification is disabled, set " +
			constants.EnvSSHKnownHostsPath + " to enable strict checking")
	}

	addr := cfg.Host
	if !strings.Contains(addr, ":") {
		addr = net.JoinHostPort(addr, constants.DefaultSSHPort)
	}

	return &SSHDialer{
		addr: addr,
		config: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKeyCallback,
			Timeout:         cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.QPS), cfg.Burst),
		logger:  logger,
	}, nil
}

// Dial opens an SSH connection and an SFTP session on top of it. The
// configured timeout bounds the connection attempt; exceeding it is a
// failure, never an indefinite hang.
func (d *SSHDialer) Dial(ctx context.Context) (Conn, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	client, err := ssh.Dial("tcp", d.addr, d.config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", d.addr, err)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to open SFTP session on %s: %w", d.addr, err)
	}

	return &sshConn{ssh: client, sftp: sftpClient}, nil
}

// Probe opens and immediately closes a connection. Used for the advisory
// startup connectivity check.
func (d *SSHDialer) Probe(ctx context.Context) error {
	conn, err := d.Dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

type sshConn struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (c *sshConn) MkdirAll(dir string) error {
	if err := c.sftp.MkdirAll(dir); err != nil {
		return fmt.Errorf("failed to create remote directory %s: %w", dir, err)
	}
	return nil
}

func (c *sshConn) WriteFile(path string, data []byte, mode os.FileMode) error {
	f, err := c.sftp.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write remote file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close remote file %s: %w", path, err)
	}
	if err := c.sftp.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to set permissions on remote file %s: %w", path, err)
	}
	return nil
}

func (c *sshConn) Close() error {
	err := c.sftp.Close()
	if cerr := c.ssh.Close(); err == nil {
		err = cerr
	}
	return err
}
