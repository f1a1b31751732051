// Package repository holds the gorm-backed stores used by the services.
// Every method takes a dbctx.Context so callers can run it inside a transaction.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrStaleRecord is returned by optimistic saves when the row changed since it was loaded.
var ErrStaleRecord = errors.New("record was modified concurrently")

// Page is a 1-based pagination request.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Normalized(defaultLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func likePattern(search string) string {
	search = strings.ToLower(strings.TrimSpace(search))
	search = strings.NewReplacer("%", `\%`, "_", `\_`).Replace(search)
	return "%" + search + "%"
}

// IsNotFound reports whether err is gorm's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
