package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by the repositories.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgStringTooLong       = "22001"

	pnrConstraint = "bookings_pnr_key"
)

var (
	// ErrDuplicatePNR reports a PNR collision on insert. It is always wrapped
	// in a Conflict.
	ErrDuplicatePNR = errors.New("duplicate PNR")
	// ErrStaleState reports a conditional status write that matched no row.
	ErrStaleState = errors.New("booking status changed concurrently")
)

// translate maps driver errors onto the application taxonomy.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == pnrConstraint {
				return apperror.Wrap(apperror.KindConflict, "booking reference already taken", ErrDuplicatePNR)
			}
			return apperror.Wrap(apperror.KindConflict, "duplicate entry", err)
		case pgForeignKeyViolation:
			return apperror.Wrap(apperror.KindInvalidReference, "invalid reference", err)
		case pgStringTooLong:
			return apperror.Wrap(apperror.KindValidation, "value too long", err)
		}
	}
	return apperror.Internal(fmt.Errorf("storage: %w", err))
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func withTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v, original error: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
