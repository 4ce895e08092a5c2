package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%tornillo%", likePattern("tornillo"))
	assert.Equal(t, `%50\%\_a\\b%`, likePattern(`50%_a\b`))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		retryable bool
	}{
		{"unique", &pgconn.PgError{Code: codeUniqueViolation}, domain.ErrDuplicate, false},
		{"stock check", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: stockCheckConstraint}, domain.ErrInsufficientStock, false},
		{"otro check", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "movements_quantity_check"}, domain.ErrInvalidInput, false},
		{"serialización", &pgconn.PgError{Code: codeSerializationFailure}, domain.ErrTransactionFailure, true},
		{"deadlock", &pgconn.PgError{Code: codeDeadlockDetected}, domain.ErrTransactionFailure, true},
		{"conexión", &pgconn.PgError{Code: "08006"}, domain.ErrTransactionFailure, true},
		{"deadline", context.DeadlineExceeded, domain.ErrTransactionFailure, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError("op", tt.err)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
		})
	}

	assert.NoError(t, mapError("op", nil))
	plain := errors.New("boom")
	assert.ErrorIs(t, mapError("op", plain), plain)
	assert.False(t, domain.IsRetryable(mapError("op", plain)))
}

func TestMapTxError_KeepsBusinessErrors(t *testing.T) {
	rejection := &domain.InsufficientStockError{ProductID: "p1", Current: 5, Requested: 8}
	err := mapTxError("stock out", rejection)
	assert.Same(t, rejection, err)

	wrapped := mapTxError("stock out", fmt.Errorf("lock: %w", &pgconn.PgError{Code: codeLockNotAvailable}))
	assert.True(t, domain.IsRetryable(wrapped))
}

func TestMovementsFrom_Filters(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := repository.MovementQuery{
		ProductID: "p1",
		Type:      entity.MovementOutbound,
		From:      &from,
		Search:    "caja",
	}
	sqlStr, args, err := movementsFrom(psql.Select("COUNT(*)"), q).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sqlStr, "FROM movements m JOIN products p ON p.id = m.product_id LEFT JOIN merchants mc ON mc.id = m.merchant_id")
	assert.Contains(t, sqlStr, "m.product_id = $1")
	assert.Contains(t, sqlStr, "m.type = $2")
	assert.Contains(t, sqlStr, "m.date >= $3")
	assert.Contains(t, sqlStr, "p.name ILIKE $4")
	assert.Contains(t, sqlStr, "m.notes ILIKE $7")
	assert.NotContains(t, sqlStr, "m.merchant_id =")
	require.Len(t, args, 7)
	assert.Equal(t, "p1", args[0])
	assert.Equal(t, "OUTBOUND", args[1])
	assert.Equal(t, "%caja%", args[3])
}

func TestMovementsFrom_NoFilters(t *testing.T) {
	sqlStr, args, err := movementsFrom(psql.Select("COUNT(*)"), repository.MovementQuery{}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sqlStr, "WHERE")
	assert.Empty(t, args)
}
