// Package store persists conversations, bookings, scheduled messages,
// and the message log. It is the only package that writes these tables.
package store

import (
	"fmt"

	"gorm.io/gorm"
)

// Store wraps the GORM handle with domain persistence operations.
type Store struct {
	db *gorm.DB
}

// New creates a Store.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is required")
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for read-only composition (resolver,
// availability). Writes go through Store methods.
func (s *Store) DB() *gorm.DB {
	return s.db
}
