// Package store is the gorm-backed document store. Every method takes a
// context and returns apperror kinds for the failures callers branch on;
// anything else is wrapped and surfaces as an internal error.
package store

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"marketplace/apperror"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and health checks
func (s *Store) DB() *gorm.DB { return s.db }

// Page is an offset/limit window over a listing
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.New(apperror.NotFound, what+" not found")
	}
	return errors.Wrapf(err, "loading %s", what)
}
