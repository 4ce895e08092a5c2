package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stockledger/internal/domain"
)

// Querier abstrae pool y tx: los repositorios funcionan igual dentro o fuera de una transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql builder de squirrel con placeholders $n.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Códigos SQLSTATE usados en el mapeo de errores.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// stockCheckConstraint CHECK (current_stock >= 0) de products.
const stockCheckConstraint = "products_current_stock_check"

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// isTransient errores tras los que la operación completa puede reintentarse.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return true
		}
		// Clase 08: errores de conexión.
		return strings.HasPrefix(pgErr.Code, "08")
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr) || pgconn.SafeToRetry(err)
}

// mapError traduce errores de PostgreSQL al vocabulario de dominio. Los errores de dominio pasan intactos.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *domain.TransactionError
	if errors.As(err, &te) {
		return err
	}
	if isTransient(err) {
		return &domain.TransactionError{Op: op, Err: err}
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
		case codeCheckViolation:
			if pgErr.ConstraintName == stockCheckConstraint {
				return fmt.Errorf("%s: %w", op, domain.ErrInsufficientStock)
			}
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapTxError como mapError, pero deja intactos los errores que no vienen del driver
// (rechazos de negocio devueltos por el callback de la transacción).
func mapTxError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := pgError(err); ok || isTransient(err) {
		return mapError(op, err)
	}
	return err
}

// likePattern escapa comodines de LIKE y envuelve el término para búsqueda por contenido.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func orderDir(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// countMovementRefs cuenta movimientos que referencian una fila. Solo informa el detalle de un
// conflicto de borrado, así que un error de consulta se reporta como 0.
func countMovementRefs(ctx context.Context, q Querier, column, id string) int64 {
	var n int64
	_ = q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE `+column+` = $1`, id).Scan(&n)
	return n
}
