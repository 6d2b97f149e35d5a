package storage

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	pqUniqueViolation       = "23505"
	mysqlDuplicateEntry     = 1062
	mysqlDuplicateIndexName = 1061
)

// IsUniqueViolation reports whether err was raised by a unique constraint on
// any of the supported drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return false
}

// IsDuplicateIndex reports a mysql attempt to create an index that exists.
func IsDuplicateIndex(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateIndexName
}

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}
