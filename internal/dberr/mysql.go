package dberr

import (
	"errors"
	"regexp"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers.
const (
	myDupEntry            = 1062
	myBadNull             = 1048
	myRowIsReferenced     = 1451
	myNoReferencedRow     = 1452
	myCheckConstraintFail = 3819
)

var (
	// "for key 'dogs.PRIMARY'" (8.0) or "for key 'PRIMARY'" (5.7)
	myKeyRe = regexp.MustCompile("for key '(?:([^'.]+)\\.)?([^']+)'")
	// "(`kennel`.`dogs`, CONSTRAINT `fk_dogs_owner` ..."
	myFKRe = regexp.MustCompile("\\(`[^`]+`\\.`([^`]+)`, CONSTRAINT `([^`]+)`")
	// "Column 'name' cannot be null"
	myColumnRe = regexp.MustCompile(`Column '([^']+)'`)
	// "Check constraint 'chk_people_email' is violated."
	myCheckRe = regexp.MustCompile(`constraint '([^']+)'`)
)

func fromMySQL(err error) (*ConstraintViolation, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return nil, false
	}

	cv := &ConstraintViolation{Detail: me.Message, err: err}
	switch me.Number {
	case myDupEntry:
		cv.Kind = Unique
		if m := myKeyRe.FindStringSubmatch(me.Message); m != nil {
			cv.Table, cv.Constraint = m[1], m[2]
			if m[2] == "PRIMARY" {
				cv.Kind = PrimaryKey
			}
		}
	case myRowIsReferenced, myNoReferencedRow:
		cv.Kind = ForeignKey
		if m := myFKRe.FindStringSubmatch(me.Message); m != nil {
			cv.Table, cv.Constraint = m[1], m[2]
		}
	case myCheckConstraintFail:
		cv.Kind = Check
		if m := myCheckRe.FindStringSubmatch(me.Message); m != nil {
			cv.Constraint = m[1]
		}
	case myBadNull:
		cv.Kind = NotNull
		if m := myColumnRe.FindStringSubmatch(me.Message); m != nil {
			cv.Column = m[1]
		}
	default:
		return nil, false
	}
	return cv, true
}
