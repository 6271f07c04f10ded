// Package errors defines the failure taxonomy for certificate synchronization.
// Per-source errors are isolated to the source that produced them; the
// reconcile loop uses the classification only for logging and counting, never
// to abort a tick.
package errors

import (
	"errors"
	"fmt"
)

// Fatal errors abort controller startup.

// ErrConfig indicates missing or invalid configuration. It is only produced
// during startup; a running controller never re-reads configuration.
var ErrConfig = errors.New("configuration error")

// ErrOrchestration indicates the Kubernetes API could not be queried. Fatal
// at startup; mid-loop it is logged and the affected discovery origin
// contributes zero sources for the tick.
var ErrOrchestration = errors.New("kubernetes API unreachable")

// Per-source errors. Each failure applies to exactly one certificate source
// and leaves the hash store untouched, so the next tick retries from scratch.

// ErrSourceData indicates the certificate or private key was missing or empty
// in the originating Secret. No transfer is attempted.
var ErrSourceData = errors.New("source data missing")

// ErrValidation indicates the fetched bytes do not parse as a structurally
// valid certificate. No transfer is attempted.
var ErrValidation = errors.New("certificate validation failed")

// ErrTransfer indicates connectivity, directory creation, or copy failure
// against the remote host. Files already copied in the failed attempt are
// left in place; the hash store is not updated.
var ErrTransfer = errors.New("remote transfer failed")

// ErrConfigPush indicates the Traefik configuration fragment could not be
// placed on the remote host. The certificate files are already in place, so
// this never flips the overall sync outcome to failure.
var ErrConfigPush = errors.New("config fragment push failed")

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfig, err)
}

// WrapOrchestration wraps an error as a Kubernetes API error.
func WrapOrchestration(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrOrchestration, err)
}

// WrapSourceData wraps an error as a source data error.
func WrapSourceData(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSourceData, err)
}

// WrapValidation wraps an error as a validation error.
func WrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// WrapTransfer wraps an error as a transfer error.
func WrapTransfer(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransfer, err)
}

// WrapConfigPush wraps an error as a config fragment push error.
func WrapConfigPush(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfigPush, err)
}

// Reason returns a short stable tag for an error, suitable for log fields.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceData):
		return "source_data"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTransfer):
		return "transfer"
	case errors.Is(err, ErrConfigPush):
		return "config_push"
	case errors.Is(err, ErrOrchestration):
		return "orchestration"
	case errors.Is(err, ErrConfig):
		return "config"
	default:
		return "unknown"
	}
}
