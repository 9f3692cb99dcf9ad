package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE class 23 (integrity constraint violation).
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

func fromPostgres(err error) (*ConstraintViolation, bool) {
	var pe *pgconn.PgError
	if !errors.As(err, &pe) {
		return nil, false
	}

	cv := &ConstraintViolation{
		Table:      pe.TableName,
		Constraint: pe.ConstraintName,
		Column:     pe.ColumnName,
		Detail:     pe.Message,
		err:        err,
	}
	switch pe.Code {
	case pgUniqueViolation:
		cv.Kind = Unique
		if strings.HasSuffix(pe.ConstraintName, "_pkey") {
			cv.Kind = PrimaryKey
		}
	case pgForeignKeyViolation:
		cv.Kind = ForeignKey
	case pgCheckViolation:
		cv.Kind = Check
	case pgNotNullViolation:
		cv.Kind = NotNull
	default:
		return nil, false
	}
	if pe.Detail != "" {
		cv.Detail = pe.Message + " (" + pe.Detail + ")"
	}
	return cv, true
}
