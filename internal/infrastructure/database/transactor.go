package database

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs a function inside a single database transaction. Use cases
// depend on this interface instead of calling gorm directly so tests can run
// the same orchestration against in-memory fakes.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
