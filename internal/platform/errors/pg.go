package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes that change how an error is classified
const (
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
	pgNotNullViolation      = "23502"
	pgCheckViolation        = "23514"
	pgStringTruncation      = "22001"
	pgInvalidText           = "22P02"
	pgSerializationFailure  = "40001"
	pgDeadlockDetected      = "40P01"
	pgLockNotAvailable      = "55P03"
	pgReadOnlyTransaction   = "25006"
	pgCannotConnectNow      = "57P03"
	pgAdminShutdown         = "57P01"
	pgQueryCanceledByServer = "57014"
)

// DBErrorCode classifies a *pgconn.PgError, ok is false for anything else
func DBErrorCode(err error) (ErrorCode, bool) {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeUnknown, false
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return ErrorCodeDuplicateKey, true
	case pgForeignKeyViolation, pgStringTruncation, pgInvalidText:
		return ErrorCodeInvalidArgument, true
	case pgNotNullViolation, pgCheckViolation:
		return ErrorCodeValidation, true
	case pgReadOnlyTransaction, pgCannotConnectNow, pgAdminShutdown:
		return ErrorCodeUnavailable, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a driver error with its mapped code, nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// IsRetryable reports contention a second attempt may get past
// local cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		case pgQueryCanceledByServer:
			return strings.Contains(pgErr.Message, "lock timeout")
		}
		return false
	}
	// pgx reports a failed commit as plain text
	return strings.Contains(strings.ToLower(Root(err).Error()), "commit unexpectedly resulted in rollback")
}
