package uow

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Provider opens sessions. Acquire blocks until a connection is available
// or ctx is done.
type Provider interface {
	Acquire(ctx context.Context, d Descriptor) (Session, error)
}

const readOnlyKey = "uow:read_only"

// GormProvider opens sessions on a shared *gorm.DB pool.
type GormProvider struct {
	db *gorm.DB
}

// NewGormProvider installs the read-only write guard on db and returns a
// provider over it. Installing the guard twice on the same db is a no-op.
func NewGormProvider(db *gorm.DB) (*GormProvider, error) {
	if err := registerReadOnlyGuard(db); err != nil {
		return nil, err
	}
	return &GormProvider{db: db}, nil
}

// Acquire implements Provider.
func (p *GormProvider) Acquire(ctx context.Context, d Descriptor) (Session, error) {
	db := p.db.Session(&gorm.Session{
		Context:     ctx,
		PrepareStmt: d.CacheMode == CachePrepared,
		// Statements already run inside the scope's transaction.
		SkipDefaultTransaction: d.Transactional,
	})
	if d.ReadOnly {
		db = db.Set(readOnlyKey, true).Session(&gorm.Session{})
	}

	s := &gormSession{db: db, desc: d}
	if !d.Transactional {
		return s, nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin: %w", tx.Error)
	}
	s.db, s.tx = tx, true

	if d.FlushMode == FlushCommit && !d.ReadOnly && tx.Dialector.Name() == "postgres" {
		if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("defer constraints: %w", err)
		}
	}
	return s, nil
}

// registerReadOnlyGuard rejects create, update, delete and raw exec
// statements issued through a session marked read-only.
func registerReadOnlyGuard(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		get      func(string) func(*gorm.DB)
		register func() error
	}{
		{cb.Create().Get, func() error { return cb.Create().Before("gorm:create").Register(readOnlyKey, rejectWrites) }},
		{cb.Update().Get, func() error { return cb.Update().Before("gorm:update").Register(readOnlyKey, rejectWrites) }},
		{cb.Delete().Get, func() error { return cb.Delete().Before("gorm:delete").Register(readOnlyKey, rejectWrites) }},
		{cb.Raw().Get, func() error { return cb.Raw().Before("gorm:raw").Register(readOnlyKey, rejectWrites) }},
	}
	for _, h := range hooks {
		if h.get(readOnlyKey) != nil {
			continue
		}
		if err := h.register(); err != nil {
			return fmt.Errorf("uow: register read-only guard: %w", err)
		}
	}
	return nil
}

func rejectWrites(db *gorm.DB) {
	if v, ok := db.Get(readOnlyKey); ok {
		if ro, _ := v.(bool); ro {
			_ = db.AddError(ErrReadOnly)
		}
	}
}
