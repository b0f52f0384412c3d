package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Farmacia-api/internal/domain"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx: los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// mapError traduce los SQLSTATE que tienen significado de dominio. Un fallo de serialización
// o un deadlock es ErrConcurrencyConflict (el motor reintenta); el resto se devuelve envuelto
// con op y el motor lo clasifica como ErrPersistence.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConcurrencyConflict, pgErr.Message)
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrDuplicate, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, pgErr.ConstraintName)
		case codeCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pgErr.ConstraintName)
		case codeNumericOutOfRange:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// persistenceError es mapError para caminos que no pasan por el motor del libro: lo que no tiene
// significado de dominio (ni es cancelación) queda marcado como ErrPersistence.
func persistenceError(op string, err error) error {
	mapped := mapError(op, err)
	switch {
	case mapped == nil:
		return nil
	case errors.Is(mapped, context.Canceled), errors.Is(mapped, context.DeadlineExceeded):
		return mapped
	case domain.IsTerminal(mapped),
		errors.Is(mapped, domain.ErrDuplicate),
		errors.Is(mapped, domain.ErrConcurrencyConflict):
		return mapped
	default:
		return fmt.Errorf("%w: %v", domain.ErrPersistence, mapped)
	}
}
