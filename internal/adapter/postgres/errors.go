package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

// pgCodes maps SQLSTATE codes to domain sentinels. Transient codes keep the
// driver error in the chain for logging.
var pgCodes = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation
	"23503": domain.ErrNotFound,      // foreign_key_violation
	"23514": domain.ErrValidation,    // check_violation
	"22P02": domain.ErrValidation,    // invalid_text_representation
	"22P05": domain.ErrValidation,    // untranslatable_character
	"40001": domain.ErrTransient,     // serialization_failure
	"40P01": domain.ErrTransient,     // deadlock_detected
	"55P03": domain.ErrTransient,     // lock_not_available
	"57P01": domain.ErrTransient,     // admin_shutdown
	"57P03": domain.ErrTransient,     // cannot_connect_now
}

// pgClasses maps whole SQLSTATE classes: 08 connection exceptions and 53
// insufficient resources.
var pgClasses = map[string]error{
	"08": domain.ErrTransient,
	"53": domain.ErrTransient,
}

// MapError converts pgx errors to domain errors, prefixed with the entity
// and id. Context cancellation is wrapped but not mapped so callers see why
// the request stopped.
func MapError(err error, entity string, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sentinel, ok := pgCodes[pgErr.Code]
		if !ok && len(pgErr.Code) == 5 {
			sentinel, ok = pgClasses[pgErr.Code[:2]]
		}
		switch {
		case !ok:
		case errors.Is(sentinel, domain.ErrTransient):
			return fmt.Errorf("%s %s: %w: %w", entity, id, sentinel, err)
		default:
			return fmt.Errorf("%s %s: %w", entity, id, sentinel)
		}
	}

	// The server never answered.
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%s %s: %w: %w", entity, id, domain.ErrTransient, err)
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
