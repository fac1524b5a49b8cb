package persistence

import (
	"context"
	"errors"

	"github.com/bioinsight/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes that signal a transient transaction failure
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// TranslateTxError maps driver-level transaction failures onto the domain
// error taxonomy. Domain errors returned by the transaction body pass through
// untouched; anything unrecognized is returned as is.
func TranslateTxError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return shared.ErrSerializationConflict.Wrap(err)
		case pgQueryCanceled:
			return shared.ErrTransactionTimeout.Wrap(err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return shared.ErrTransactionTimeout.Wrap(err)
	}

	return err
}
