// Package logging provides audit-style log helpers for controller actions
// that change state outside the cluster.
package logging

import "github.com/go-logr/logr"

// LogTransfer emits a structured audit line for a completed certificate
// transfer. Audit lines are tagged with "audit=true" for easy filtering in
// log aggregation systems.
func LogTransfer(logger logr.Logger, namespace, secret, domain, hash string) {
	logger.WithValues(
		"audit", "true",
		"event_type", "certificate_transferred",
		"namespace", namespace,
		"secret", secret,
		"domain", domain,
		"content_hash", hash,
	).Info("Certificate transferred to remote host")
}
