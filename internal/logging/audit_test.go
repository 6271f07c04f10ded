package logging

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTransfer(t *testing.T) {
	var lines []string
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{})

	LogTransfer(logr.New(logger.GetSink()), "cert-manager", "example-tls", "example.com", "abc123")

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"audit"="true"`)
	assert.Contains(t, lines[0], `"event_type"="certificate_transferred"`)
	assert.Contains(t, lines[0], `"domain"="example.com"`)
	assert.Contains(t, lines[0], `"content_hash"="abc123"`)
}
