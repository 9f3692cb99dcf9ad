// Package dberr classifies storage failures. It recognizes constraint
// violations raised by the SQLite, PostgreSQL and MySQL drivers (and GORM's
// translated sentinels) and turns them into a driver-neutral
// ConstraintViolation that callers can safely show to clients.
package dberr

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Kind identifies which family of constraint was breached.
type Kind int

const (
	Unique Kind = iota + 1
	PrimaryKey
	ForeignKey
	Check
	NotNull
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case PrimaryKey:
		return "primary key"
	case ForeignKey:
		return "foreign key"
	case Check:
		return "check"
	case NotNull:
		return "not null"
	default:
		return "unknown"
	}
}

// label is the constraint family shown to clients. A primary key is a
// unique constraint as far as the caller is concerned.
func (k Kind) label() string {
	if k == PrimaryKey {
		return Unique.String()
	}
	return k.String()
}

// ConstraintViolation is a storage-layer rejection of a write. Detail holds
// the driver's human-readable text with result codes stripped.
type ConstraintViolation struct {
	Kind       Kind
	Table      string
	Constraint string
	Column     string
	Detail     string

	err error
}

func (v *ConstraintViolation) Error() string { return v.Message() }

// Unwrap exposes the driver error for errors.As.
func (v *ConstraintViolation) Unwrap() error { return v.err }

// Message renders the client-facing text, e.g.
// "unique constraint violation: UNIQUE constraint failed: dogs.name; table: DOGS".
func (v *ConstraintViolation) Message() string {
	var b strings.Builder
	b.WriteString(v.Kind.label())
	b.WriteString(" constraint violation")
	if v.Detail != "" {
		b.WriteString(": ")
		b.WriteString(v.Detail)
	} else if v.Constraint != "" {
		b.WriteString(": ")
		b.WriteString(v.Constraint)
	}
	if v.Table != "" {
		b.WriteString("; table: ")
		b.WriteString(strings.ToUpper(v.Table))
	}
	return b.String()
}

// Classify reports whether err (or anything it wraps) is a constraint
// violation and, if so, returns its classification.
func Classify(err error) (*ConstraintViolation, bool) {
	if err == nil {
		return nil, false
	}

	var cv *ConstraintViolation
	if errors.As(err, &cv) {
		return cv, true
	}
	if cv, ok := fromPostgres(err); ok {
		return cv, true
	}
	if cv, ok := fromMySQL(err); ok {
		return cv, true
	}
	if cv, ok := fromSQLite(err); ok {
		return cv, true
	}

	// Dialectors with TranslateError enabled hide the driver error.
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConstraintViolation{Kind: Unique, Detail: "duplicated key not allowed", err: err}, true
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ConstraintViolation{Kind: ForeignKey, Detail: "violates foreign key constraint", err: err}, true
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return &ConstraintViolation{Kind: Check, Detail: "violates check constraint", err: err}, true
	}
	return nil, false
}

// IsConstraintViolation is shorthand for the ok result of Classify.
func IsConstraintViolation(err error) bool {
	_, ok := Classify(err)
	return ok
}
