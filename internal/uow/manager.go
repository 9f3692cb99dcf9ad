package uow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tbourn/go-kennel-backend/internal/uow"

// Manager runs functions inside a unit-of-work scope.
type Manager struct {
	provider Provider
	tracer   trace.Tracer
}

// NewManager returns a Manager acquiring sessions from p.
func NewManager(p Provider) *Manager {
	return &Manager{provider: p, tracer: otel.Tracer(tracerName)}
}

// Run acquires one session described by d, binds it into the context passed
// to fn, and commits or rolls back according to d and fn's outcome before
// releasing it. If acquisition fails fn is not called. Errors from fn, a
// cancelled ctx, and panics are propagated unchanged after cleanup.
func (m *Manager) Run(ctx context.Context, d Descriptor, fn func(ctx context.Context) error) (err error) {
	ctx, span := m.tracer.Start(ctx, "uow.scope", trace.WithAttributes(
		attribute.Bool("uow.read_only", d.ReadOnly),
		attribute.Bool("uow.transactional", d.Transactional),
		attribute.String("uow.cache_mode", d.CacheMode.String()),
		attribute.String("uow.flush_mode", d.FlushMode.String()),
	))
	defer span.End()

	s, err := m.provider.Acquire(ctx, d)
	if err != nil {
		acquireFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquire failed")
		return fmt.Errorf("uow: acquire session: %w", err)
	}
	sessionsOpened.Inc()

	start := time.Now()
	outcome := "panic"
	defer func() {
		if cerr := s.Close(); cerr != nil {
			zerolog.Ctx(ctx).Warn().Err(cerr).Msg("uow: close session")
		}
		sessionsClosed.Inc()
		sessionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.String("uow.outcome", outcome))
	}()
	defer func() {
		if r := recover(); r != nil {
			m.rollback(ctx, s, d)
			span.SetStatus(codes.Error, "panic")
			panic(r)
		}
	}()

	err = fn(WithSession(ctx, s))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.rollback(ctx, s, d)
		outcome = "rollback"
		span.RecordError(err)
		span.SetStatus(codes.Error, "rolled back")
		return err
	}

	switch {
	case d.commits():
		if cerr := s.Commit(); cerr != nil {
			outcome = "commit_failed"
			span.RecordError(cerr)
			span.SetStatus(codes.Error, "commit failed")
			return fmt.Errorf("uow: commit: %w", cerr)
		}
		commits.Inc()
		outcome = "commit"
	case d.Transactional:
		// Read-only transaction: nothing to keep.
		m.rollback(ctx, s, d)
		outcome = "release"
	default:
		outcome = "release"
	}
	return nil
}

// rollback ends a transactional session. Its own failure is logged and never
// replaces the error that caused it.
func (m *Manager) rollback(ctx context.Context, s Session, d Descriptor) {
	if !d.Transactional {
		return
	}
	rollbacks.Inc()
	if err := s.Rollback(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("uow: rollback")
	}
}
