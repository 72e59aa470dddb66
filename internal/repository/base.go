// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/models"

	"gorm.io/gorm"
)

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// lookupError maps a failed single-row read onto the domain error kinds.
func lookupError(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// applyView restricts db to one lifecycle view of table and applies scope,
// ordering and paging. The deleted view bypasses gorm's soft-delete filter.
func applyView(db *gorm.DB, table string, q lifecycle.Query) *gorm.DB {
	q = q.Normalize()

	if q.View == lifecycle.Deleted {
		db = db.Unscoped().Where(table + ".deleted_at IS NOT NULL")
	}
	if !q.Scope.IsAll() {
		db = db.Where(table+".user_id = ?", q.Scope.OwnerID)
	}

	return db.
		Order(fmt.Sprintf("%s.created_at %s", table, q.Order)).
		Order(fmt.Sprintf("%s.id %s", table, q.Order)).
		Limit(q.Limit).
		Offset(q.Offset)
}
