package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var ErrInvalidTenant = errors.New("invalid tenant schema")

// ValidateTenant rejects schema names that must never be selected as a
// studio's schema.
func ValidateTenant(schema string) error {
	s := strings.ToLower(strings.TrimSpace(schema))
	switch {
	case s == "":
		return fmt.Errorf("%w: empty schema", ErrInvalidTenant)
	case s == "public", s == "information_schema", strings.HasPrefix(s, "pg_"):
		return fmt.Errorf("%w: %q is reserved", ErrInvalidTenant, schema)
	case len(s) > 63:
		return fmt.Errorf("%w: %q is too long", ErrInvalidTenant, schema)
	}
	return nil
}

// SearchPathStatement returns the statement that scopes a transaction to the
// studio schema, falling back to public for the shared tables.
func SearchPathStatement(schema string) string {
	return "SET LOCAL search_path TO " + pq.QuoteIdentifier(schema) + ", public"
}

// WithTenant runs fn in a transaction whose search_path is the studio schema.
// SET LOCAL ends with the transaction, so pooled connections are never left
// pointing at a tenant.
func WithTenant(ctx context.Context, db *gorm.DB, schema string, fn func(tx *gorm.DB) error) error {
	if err := ValidateTenant(schema); err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(SearchPathStatement(schema)).Error; err != nil {
			return fmt.Errorf("failed to select tenant schema: %w", err)
		}
		return fn(tx)
	})
}
