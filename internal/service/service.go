package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"stockwise/internal/cache"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested product or sale does not exist.
var ErrNotFound = errors.New("not found")

// ErrProductHasSales marks a refused hard delete; see ProductHasSalesError.
var ErrProductHasSales = errors.New("product has sales records")

// ProductHasSalesError is returned when a product with sale history is deleted.
type ProductHasSalesError struct {
	Name string
}

func (e *ProductHasSalesError) Error() string {
	return fmt.Sprintf("Cannot delete %q because it has sales records. Mark as inactive instead.", e.Name)
}

func (e *ProductHasSalesError) Is(target error) bool { return target == ErrProductHasSales }

// ValidationError carries business-rule failures back to the handler, which
// renders them as 422 with one message per field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// ValidationMessage is the summary line of a multi-field validation failure.
const ValidationMessage = "Please correct the errors below."

func newValidation(message string) *ValidationError {
	return &ValidationError{Message: message, Fields: map[string]string{}}
}

// fieldError builds a ValidationError for a single field.
func fieldError(field, msg string) *ValidationError {
	v := newValidation(msg)
	v.add(field, msg)
	return v
}

func (e *ValidationError) add(field, msg string) {
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = msg
}

func (e *ValidationError) empty() bool { return len(e.Fields) == 0 }

// orNil returns e as an error, or nil when no field failed.
func (e *ValidationError) orNil() error {
	if e.empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// mapNotFound turns gorm's not-found error into ErrNotFound.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// invalidate drops cached lookups. A failure only costs freshness up to the
// TTL, so it is logged rather than returned.
func invalidate(ctx context.Context, c cache.ProductCache, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	if err := c.Invalidate(ctx, ids...); err != nil {
		log.Warn().Err(err).Uints("product_ids", ids).Msg("product cache invalidation failed")
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
