package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{dsn: "postgres://u:p@localhost:5432/db", want: "pgx5://u:p@localhost:5432/db"},
		{dsn: "postgresql://localhost/db?sslmode=disable", want: "pgx5://localhost/db?sslmode=disable"},
		{dsn: "pgx5://localhost/db", want: "pgx5://localhost/db"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, migrateURL(tt.dsn))
		})
	}
}

func TestDB_ErrorCode(t *testing.T) {
	db := &DB{}

	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.Equal(t, pgerrcode.UniqueViolation, db.ErrorCode(wrapped))
	assert.Equal(t, "", db.ErrorCode(errors.New("boom")))
}
