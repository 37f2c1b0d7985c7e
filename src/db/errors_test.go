package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), apperrors.ErrUpstreamUnavailable},
		{"bad conn", driver.ErrBadConn, apperrors.ErrUpstreamUnavailable},
		{"net timeout", timeoutErr{}, apperrors.ErrUpstreamUnavailable},
		{"unique violation", &pgconn.PgError{Code: "23505"}, apperrors.ErrConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: years.year"), apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tt.err), tt.want)
		})
	}

	plain := errors.New("syntax error")
	assert.Equal(t, plain, classify(plain))
	assert.NoError(t, classify(nil))
}
