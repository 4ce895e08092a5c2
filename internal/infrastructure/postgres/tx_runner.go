package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var tracer = otel.Tracer("stockledger/postgres")

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// La serialización por producto la da el SELECT ... FOR UPDATE de los repositorios.
type TxRunner struct {
	pool             *pgxpool.Pool
	lockTimeout      time.Duration
	statementTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout viene de DB_LOCK_TIMEOUT_MS;
// con 0 la transacción hereda el lock_timeout de la conexión.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout, statementTimeout: 30 * time.Second}
}

// sessionSettings sentencias SET LOCAL aplicadas al inicio de cada transacción.
func (r *TxRunner) sessionSettings() []string {
	var out []string
	if r.lockTimeout > 0 {
		out = append(out, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds()))
	}
	if r.statementTimeout > 0 {
		out = append(out, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", r.statementTimeout.Milliseconds()))
	}
	return out
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los fallos de infraestructura (begin, commit, deadlock, timeout) se devuelven como TransactionError.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) (err error) {
	ctx, span := tracer.Start(ctx, "transaction", trace.WithAttributes(
		attribute.String("tx.isolation", string(pgx.ReadCommitted)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rollback")
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return mapError("begin transaction", err)
	}
	// Rollback con contexto propio: debe completarse aunque ctx esté cancelado.
	defer func() { _ = tx.Rollback(context.Background()) }()

	for _, stmt := range r.sessionSettings() {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return mapError("session settings", err)
		}
	}

	if err := fn(ctx, NewMovementRepository(tx), NewProductRepository(tx)); err != nil {
		return mapTxError("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}
