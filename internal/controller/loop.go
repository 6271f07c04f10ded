// Package controller runs the reconcile loop that drives certificate
// discovery and per-source synchronization, and owns the status state read by
// the observability endpoints.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"

	"github.com/dc-tec/cert-sync-controller/internal/discovery"
	syncerrors "github.com/dc-tec/cert-sync-controller/internal/errors"
	"github.com/dc-tec/cert-sync-controller/internal/syncer"
)

// scheduleParser accepts standard 5-field cron expressions for the optional
// reconcile schedule.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// SourceLister produces the current certificate source set.
type SourceLister interface {
	Sources(ctx context.Context) []discovery.Source
}

// Syncer synchronizes one certificate source.
type Syncer interface {
	Sync(ctx context.Context, src discovery.Source) (syncer.Result, error)
}

// Loop is the reconcile loop. It alternates between waiting for the next
// tick and sequentially processing every discovered source. The first tick
// runs immediately at startup.
type Loop struct {
	discoverer SourceLister
	syncer     Syncer
	status     *Status
	interval   time.Duration
	schedule   cron.Schedule // overrides interval when non-nil
	logger     logr.Logger
}

// NewLoop builds a Loop. A non-empty scheduleExpr replaces the fixed interval
// with a cron schedule; an invalid expression is a configuration error.
func NewLoop(discoverer SourceLister, s Syncer, status *Status, interval time.Duration, scheduleExpr string, logger logr.Logger) (*Loop, error) {
	l := &Loop{
		discoverer: discoverer,
		syncer:     s,
		status:     status,
		interval:   interval,
		logger:     logger,
	}
	if scheduleExpr != "" {
		schedule, err := scheduleParser.Parse(scheduleExpr)
		if err != nil {
			return nil, syncerrors.WrapConfig(fmt.Errorf("invalid sync schedule %q: %w", scheduleExpr, err))
		}
		l.schedule = schedule
	}
	return l, nil
}

// Run executes ticks until ctx is cancelled. Cancellation is graceful: an
// in-flight source finishes its transfer before the loop returns.
func (l *Loop) Run(ctx context.Context) {
	l.status.MarkUp()
	l.tick(ctx)

	for {
		timer := time.NewTimer(l.nextWait())
		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Info("Shutdown requested, stopping reconcile loop")
			return
		case <-timer.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) nextWait() time.Duration {
	if l.schedule == nil {
		return l.interval
	}
	wait := time.Until(l.schedule.Next(time.Now()))
	if wait < 0 {
		wait = 0
	}
	return wait
}

// tick performs one full discovery and sync pass. Per-source failures are
// counted and logged but never interrupt the pass; the heartbeat is updated
// once the last source has been processed.
func (l *Loop) tick(ctx context.Context) {
	start := time.Now()
	sources := l.discoverer.Sources(ctx)
	l.logger.V(1).Info("Reconcile tick started", "sources", len(sources))

	for i, src := range sources {
		if ctx.Err() != nil {
			l.logger.Info("Shutdown requested mid-tick, remaining sources are left for the next start",
				"processed", i, "remaining", len(sources)-i)
			return
		}

		result, err := l.syncer.Sync(ctx, src)
		switch {
		case err != nil:
			l.logger.Error(err, "Sync failed",
				"namespace", src.Namespace, "secret", src.SecretName, "domain", src.Domain,
				"reason", syncerrors.Reason(err))
		case result == syncer.ResultTransferred:
			l.logger.Info("Certificate synchronized",
				"namespace", src.Namespace, "secret", src.SecretName, "domain", src.Domain)
		}
		l.status.RecordAttempt(err)
	}

	l.status.RecordTick(time.Now())
	l.logger.V(1).Info("Reconcile tick finished", "duration", time.Since(start).String())
}
