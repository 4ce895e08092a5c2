package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTxRunner_SessionSettings(t *testing.T) {
	r := NewTxRunner(nil, 1500*time.Millisecond)
	assert.Equal(t, []string{
		"SET LOCAL lock_timeout = '1500ms'",
		"SET LOCAL statement_timeout = '30000ms'",
	}, r.sessionSettings())

	// Sin DB_LOCK_TIMEOUT_MS se respeta el lock_timeout de la conexión.
	r = NewTxRunner(nil, 0)
	assert.Equal(t, []string{"SET LOCAL statement_timeout = '30000ms'"}, r.sessionSettings())
}
