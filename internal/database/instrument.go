package database

import (
	"fmt"

	"github.com/ChakCage/Borlas/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const spanKey = "borlas:span"

// Instrument registers gorm callbacks that wrap every statement in a span.
func Instrument(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, h := range hooks {
		if err := h.before("borlas:before_"+h.op, startSpan(h.op)); err != nil {
			return fmt.Errorf("register %s span callback: %w", h.op, err)
		}
		if err := h.after("borlas:after_"+h.op, endSpan); err != nil {
			return fmt.Errorf("register %s span callback: %w", h.op, err)
		}
	}
	return nil
}

func startSpan(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		ctx, span := observability.StartSpan(tx.Statement.Context, "db."+op,
			attribute.String("db.system", tx.Dialector.Name()),
			attribute.String("db.table", tx.Statement.Table),
		)
		tx.Statement.Context = ctx
		tx.InstanceSet(spanKey, span)
	}
}

func endSpan(tx *gorm.DB) {
	v, ok := tx.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	var err error
	if tx.Error != nil && tx.Error != gorm.ErrRecordNotFound {
		err = tx.Error
	}
	observability.EndSpan(span, err)
}
