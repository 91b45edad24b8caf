package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: UniqueViolation, ConstraintName: "idx_documents_account_email"}
	wrapped := fmt.Errorf("error creating document in accounts: %w", dup)

	assert.True(t, IsUniqueViolation(wrapped))
	assert.True(t, IsDuplicateConstraintError(wrapped, "idx_documents_account_email"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "idx_documents_application_once"))

	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
