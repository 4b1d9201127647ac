package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is a typed read helper over a single gorm model.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...QueryOption) ([]T, error)
	Count(ctx context.Context, query *T) (int64, error)
}

// QueryOption mutates the statement before it runs.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryOptionFunc func(db *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// OrderBy sorts results by the given SQL fragment, e.g. "name ASC".
func OrderBy(order string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

// Where adds a raw condition.
func Where(cond string, args ...any) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(cond, args...)
	})
}
