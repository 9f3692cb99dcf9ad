package dberr

import (
	"errors"
	"regexp"
	"strings"
)

// SQLite result codes. Extended codes keep the primary code in the low byte.
const (
	sqliteConstraint = 19

	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintNotNull    = 1299
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// coder is satisfied by the pure-Go and cgo SQLite drivers alike.
type coder interface {
	Code() int
}

var (
	// "UNIQUE constraint failed: dogs.name" / "CHECK constraint failed: chk_people_email"
	sqliteFailedRe = regexp.MustCompile(`(?i)((?:UNIQUE|PRIMARY KEY|FOREIGN KEY|CHECK|NOT NULL) constraint failed(?::\s*[^()]+)?)`)
	// trailing "(1555)" result codes
	sqliteCodeRe = regexp.MustCompile(`\s*\(\d+\)\s*$`)
)

func fromSQLite(err error) (*ConstraintViolation, bool) {
	var c coder
	if !errors.As(err, &c) {
		return nil, false
	}
	code := c.Code()
	if code&0xff != sqliteConstraint {
		return nil, false
	}

	cv := &ConstraintViolation{err: err}
	switch code {
	case sqliteConstraintPrimaryKey:
		cv.Kind = PrimaryKey
	case sqliteConstraintUnique:
		cv.Kind = Unique
	case sqliteConstraintForeignKey:
		cv.Kind = ForeignKey
	case sqliteConstraintCheck:
		cv.Kind = Check
	case sqliteConstraintNotNull:
		cv.Kind = NotNull
	default:
		cv.Kind = kindFromSQLiteText(err.Error())
	}

	msg := sqliteCodeRe.ReplaceAllString(err.Error(), "")
	if m := sqliteFailedRe.FindStringSubmatch(msg); m != nil {
		cv.Detail = strings.TrimSpace(m[1])
	} else {
		cv.Detail = strings.TrimSpace(msg)
	}

	// The part after the colon is "table.column[, table.column]" for
	// UNIQUE/PK/NOT NULL and the constraint name for CHECK.
	if _, rest, ok := strings.Cut(cv.Detail, "failed:"); ok {
		rest = strings.TrimSpace(rest)
		if cv.Kind == Check {
			cv.Constraint = rest
		} else {
			first, _, _ := strings.Cut(rest, ",")
			if table, col, ok := strings.Cut(strings.TrimSpace(first), "."); ok {
				cv.Table, cv.Column = table, col
			}
		}
	}
	return cv, true
}

func kindFromSQLiteText(s string) Kind {
	u := strings.ToUpper(s)
	switch {
	case strings.Contains(u, "PRIMARY KEY"):
		return PrimaryKey
	case strings.Contains(u, "FOREIGN KEY"):
		return ForeignKey
	case strings.Contains(u, "CHECK"):
		return Check
	case strings.Contains(u, "NOT NULL"):
		return NotNull
	default:
		return Unique
	}
}
