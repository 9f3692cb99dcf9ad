// Package uow implements the session-per-request unit of work.
//
// A Manager acquires one database session per scope from a Provider, binds
// it into the request context, runs the handler, and then commits or rolls
// back before releasing the session. The outcome depends only on the scope's
// Descriptor and on whether the handler failed:
//
//	handler ok,   Transactional && !ReadOnly  -> commit, close
//	handler ok,   Transactional &&  ReadOnly  -> rollback, close
//	handler ok,   !Transactional              -> close
//	handler err / ctx cancelled / panic       -> rollback (if transactional), close
//
// Failures are never swallowed: the original error (or panic) continues to
// the caller once cleanup has run.
package uow

// CacheMode selects how statements are cached for the session.
type CacheMode int

const (
	// CacheNormal uses the driver's default statement handling.
	CacheNormal CacheMode = iota
	// CachePrepared reuses prepared statements across the session's queries.
	CachePrepared
)

func (m CacheMode) String() string {
	if m == CachePrepared {
		return "prepared"
	}
	return "normal"
}

// FlushMode selects when constraint checks run.
type FlushMode int

const (
	// FlushAuto checks constraints statement by statement.
	FlushAuto FlushMode = iota
	// FlushCommit defers deferrable constraints to commit time. Only
	// PostgreSQL honours it; other dialects behave as FlushAuto.
	FlushCommit
)

func (m FlushMode) String() string {
	if m == FlushCommit {
		return "commit"
	}
	return "auto"
}

// Descriptor declares how a scope's session behaves. The zero value is a
// writable, non-transactional session.
type Descriptor struct {
	ReadOnly      bool
	Transactional bool
	CacheMode     CacheMode
	FlushMode     FlushMode
}

// Default is a writable transactional scope.
func Default() Descriptor {
	return Descriptor{Transactional: true}
}

// Transactional is an alias of Default that reads better at route level.
func Transactional() Descriptor {
	return Default()
}

// ReadOnly is a transactional scope whose writes are rejected. Its
// transaction gives every query in the request the same snapshot and is
// always released with a rollback.
func ReadOnly() Descriptor {
	return Descriptor{ReadOnly: true, Transactional: true}
}

// commits reports whether a successful scope should be committed.
func (d Descriptor) commits() bool {
	return d.Transactional && !d.ReadOnly
}
