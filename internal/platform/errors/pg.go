package errors

// Postgres helpers for the read-only catalogue source

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes a catalogue read can hit
const (
	pgErrUndefinedTable         = "42P01"
	pgErrUndefinedColumn        = "42703"
	pgErrInsufficientPrivilege  = "42501"
	pgErrQueryCanceled          = "57014"
	pgErrCannotConnectNow       = "57P03" // startup in progress
	pgErrAdminShutdown          = "57P01"
	pgErrSerializationFailure   = "40001"
	pgErrInvalidTextRepresent   = "22P02"
	pgErrConnectionExceptionCls = "08"
)

// ExtractPgError returns (*pgconn.PgError, true) if the root cause is a PgError
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(Root(err), &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether the error is a Postgres error with the given SQLSTATE code
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// IsUndefinedTable reports whether the catalogue table does not exist
func IsUndefinedTable(err error) bool { return IsSQLState(err, pgErrUndefinedTable) }

// DBErrorCode maps a Postgres error to an ErrorCode.
// !ok means err wasn't a PgError
func DBErrorCode(err error) (ErrorCode, bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}

	switch {
	case pgErr.Code == pgErrUndefinedTable,
		pgErr.Code == pgErrUndefinedColumn,
		pgErr.Code == pgErrInvalidTextRepresent:
		return ErrorCodeCatalogue, true
	case pgErr.Code == pgErrCannotConnectNow,
		pgErr.Code == pgErrAdminShutdown,
		pgErr.Code == pgErrInsufficientPrivilege,
		strings.HasPrefix(pgErr.Code, pgErrConnectionExceptionCls):
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a pg error with a mapped ErrorCode and message.
// If err is nil, returns nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, _ := DBErrorCode(err)
	if code == ErrorCodeUnknown {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is the formatted variant of FromPostgres
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a catalogue read may succeed if repeated.
// Local cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	if pgErr, ok := ExtractPgError(err); ok {
		switch {
		case pgErr.Code == pgErrSerializationFailure,
			pgErr.Code == pgErrQueryCanceled,
			pgErr.Code == pgErrCannotConnectNow,
			strings.HasPrefix(pgErr.Code, pgErrConnectionExceptionCls):
			return true
		}
		return false
	}

	s := strings.ToLower(Root(err).Error())
	return strings.Contains(s, "terminating connection due to administrator command") ||
		strings.Contains(s, "conn closed")
}
