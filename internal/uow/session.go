package uow

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrReadOnly is returned for writes attempted through a read-only session.
	ErrReadOnly = errors.New("uow: write attempted in read-only session")
	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("uow: session closed")
	// ErrTxDone is returned when committing a transaction that already ended.
	ErrTxDone = errors.New("uow: transaction already committed or rolled back")
)

// Session is a database session owned by exactly one scope. It must not be
// shared across goroutines.
type Session interface {
	// DB returns the GORM handle bound to this session.
	DB() *gorm.DB
	Descriptor() Descriptor
	Commit() error
	Rollback() error
	// Close releases the session; an unfinished transaction is rolled back.
	Close() error
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From returns the session bound to ctx, if any.
func From(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s != nil
}

// DB returns the bound session's handle scoped to ctx.
func DB(ctx context.Context) (*gorm.DB, bool) {
	s, ok := From(ctx)
	if !ok {
		return nil, false
	}
	return s.DB().WithContext(ctx), true
}

type gormSession struct {
	db   *gorm.DB
	desc Descriptor

	tx     bool // db is inside BEGIN
	done   bool // tx committed or rolled back
	closed bool
}

func (s *gormSession) DB() *gorm.DB           { return s.db }
func (s *gormSession) Descriptor() Descriptor { return s.desc }

func (s *gormSession) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.tx {
		return nil
	}
	if s.done {
		return ErrTxDone
	}
	s.done = true
	return s.db.Commit().Error
}

func (s *gormSession) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.tx || s.done {
		return nil
	}
	s.done = true
	return s.db.Rollback().Error
}

func (s *gormSession) Close() error {
	if s.closed {
		return nil
	}
	var err error
	if s.tx && !s.done {
		s.done = true
		err = s.db.Rollback().Error
	}
	s.closed = true
	return err
}
