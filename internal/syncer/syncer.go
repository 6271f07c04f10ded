// Package syncer implements the per-certificate fetch, validate, transfer,
// and activate sequence against the remote proxy host.
package syncer

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/dc-tec/cert-sync-controller/internal/constants"
	"github.com/dc-tec/cert-sync-controller/internal/discovery"
	syncerrors "github.com/dc-tec/cert-sync-controller/internal/errors"
	"github.com/dc-tec/cert-sync-controller/internal/fragment"
	"github.com/dc-tec/cert-sync-controller/internal/hashstore"
	"github.com/dc-tec/cert-sync-controller/internal/logging"
	"github.com/dc-tec/cert-sync-controller/internal/remote"
)

// Result reports how a successful sync concluded.
type Result int

const (
	// ResultUnchanged means the stored hash matched and no transfer occurred.
	ResultUnchanged Result = iota
	// ResultTransferred means new material was placed on the remote host.
	ResultTransferred
)

// Config carries the remote layout options for a Syncer.
type Config struct {
	CertDir      string
	ConfigDir    string
	SkipFragment bool
}

// Syncer synchronizes one certificate source at a time. It is driven
// sequentially by the reconcile loop; it performs no internal concurrency,
// which bounds remote connections to one and keeps hash store writes single
// threaded by construction.
type Syncer struct {
	kube   kubernetes.Interface
	dialer remote.Dialer
	store  *hashstore.Store
	cfg    Config
	logger logr.Logger
}

// New returns a Syncer for the given clients and remote layout.
func New(kube kubernetes.Interface, dialer remote.Dialer, store *hashstore.Store, cfg Config, logger logr.Logger) *Syncer {
	return &Syncer{
		kube:   kube,
		dialer: dialer,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Sync runs the full sequence for one source: fetch, hash and compare,
// materialize, validate, transfer, optionally activate, and commit. Every
// failure return is scoped to this source; the caller proceeds to the next
// source regardless.
func (s *Syncer) Sync(ctx context.Context, src discovery.Source) (Result, error) {
	logger := s.logger.WithValues("namespace", src.Namespace, "secret", src.SecretName, "domain", src.Domain)

	certPEM, keyPEM, err := s.fetch(ctx, src)
	if err != nil {
		return 0, err
	}

	sum := ContentHash(certPEM, keyPEM)
	if stored, ok := s.store.Lookup(src.Domain); ok && stored == sum {
		logger.V(1).Info("Certificate unchanged, skipping transfer")
		return ResultUnchanged, nil
	}

	// Scratch storage holds the key material between fetch and transfer. It
	// is removed on every exit path, success or failure.
	scratch, err := os.MkdirTemp("", "cert-sync-")
	if err != nil {
		return 0, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Error(err, "Failed to remove scratch directory", "dir", scratch)
		}
	}()

	certPath, keyPath, err := materialize(scratch, certPEM, keyPEM)
	if err != nil {
		return 0, err
	}

	if err := validateCertificate(certPEM); err != nil {
		return 0, err
	}

	if err := s.transfer(ctx, src.Domain, certPath, keyPath, logger); err != nil {
		return 0, err
	}

	if err := s.store.Commit(src.Domain, sum); err != nil {
		return 0, fmt.Errorf("failed to commit hash for %s: %w", src.Domain, err)
	}

	logging.LogTransfer(logger, src.Namespace, src.SecretName, src.Domain, sum)
	return ResultTransferred, nil
}

// fetch reads the certificate and key bytes from the originating Secret.
func (s *Syncer) fetch(ctx context.Context, src discovery.Source) ([]byte, []byte, error) {
	secret, err := s.kube.CoreV1().Secrets(src.Namespace).Get(ctx, src.SecretName, metav1.GetOptions{})
	if err != nil {
		return nil, nil, syncerrors.WrapSourceData(
			fmt.Errorf("failed to get Secret %s/%s: %w", src.Namespace, src.SecretName, err))
	}

	certPEM := secret.Data[constants.SecretKeyCert]
	keyPEM := secret.Data[constants.SecretKeyKey]
	if len(certPEM) == 0 {
		return nil, nil, syncerrors.WrapSourceData(
			fmt.Errorf("Secret %s/%s has no %s data", src.Namespace, src.SecretName, constants.SecretKeyCert))
	}
	if len(keyPEM) == 0 {
		return nil, nil, syncerrors.WrapSourceData(
			fmt.Errorf("Secret %s/%s has no %s data", src.Namespace, src.SecretName, constants.SecretKeyKey))
	}

	return certPEM, keyPEM, nil
}

// transfer opens one connection and places the certificate files and, unless
// disabled, the Traefik fragment. Fragment failure is logged but does not
// fail the sync: the certificate files are already in place, only the reload
// side-channel is degraded.
func (s *Syncer) transfer(ctx context.Context, domain, certPath, keyPath string, logger logr.Logger) error {
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return syncerrors.WrapTransfer(err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.V(1).Info("Failed to close remote connection", "error", err.Error())
		}
	}()

	dir := path.Join(s.cfg.CertDir, domain)
	if err := conn.MkdirAll(dir); err != nil {
		return syncerrors.WrapTransfer(err)
	}

	files := []struct {
		local  string
		remote string
	}{
		{local: certPath, remote: path.Join(dir, constants.RemoteCertFileName)},
		{local: keyPath, remote: path.Join(dir, constants.RemoteKeyFileName)},
	}
	for _, f := range files {
		data, err := os.ReadFile(f.local) // #nosec G304 -- Path is inside the scratch directory this sync created
		if err != nil {
			return syncerrors.WrapTransfer(fmt.Errorf("failed to read scratch file %s: %w", f.local, err))
		}
		if err := conn.WriteFile(f.remote, data, constants.CertFileMode); err != nil {
			return syncerrors.WrapTransfer(err)
		}
	}

	if s.cfg.SkipFragment {
		return nil
	}
	if err := s.pushFragment(conn, domain); err != nil {
		logger.Error(err, "Failed to push Traefik fragment, certificate files are in place")
	}
	return nil
}

func (s *Syncer) pushFragment(conn remote.Conn, domain string) error {
	data, err := fragment.Render(s.cfg.CertDir, domain)
	if err != nil {
		return syncerrors.WrapConfigPush(err)
	}
	dst := fragment.RemotePath(s.cfg.ConfigDir, domain)
	if err := conn.WriteFile(dst, data, constants.FragmentFileMode); err != nil {
		return syncerrors.WrapConfigPush(err)
	}
	return nil
}

// materialize writes the fetched bytes into scratch with owner-only access.
func materialize(scratch string, certPEM, keyPEM []byte) (certPath, keyPath string, err error) {
	certPath = filepath.Join(scratch, constants.RemoteCertFileName)
	keyPath = filepath.Join(scratch, constants.RemoteKeyFileName)

	if err := os.WriteFile(certPath, certPEM, 0o600); err != nil {
		return "", "", fmt.Errorf("failed to write scratch certificate: %w", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return "", "", fmt.Errorf("failed to write scratch key: %w", err)
	}
	return certPath, keyPath, nil
}

// validateCertificate checks that the fetched bytes contain a structurally
// valid certificate. Chain validation and expiry are out of scope; issuance
// is owned by an external authority.
func validateCertificate(certPEM []byte) error {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return syncerrors.WrapValidation(fmt.Errorf("no PEM block found in certificate data"))
	}
	if _, err := x509.ParseCertificate(block.Bytes); err != nil {
		return syncerrors.WrapValidation(fmt.Errorf("failed to parse certificate: %w", err))
	}
	return nil
}

// ContentHash returns the hex SHA-256 digest over the concatenated
// certificate and key bytes.
func ContentHash(certPEM, keyPEM []byte) string {
	h := sha256.New()
	h.Write(certPEM)
	h.Write(keyPEM)
	return hex.EncodeToString(h.Sum(nil))
}
