package store

import "gorm.io/gorm"

// Store provides persistence for the checkout pipeline.
type Store struct {
	db *gorm.DB
}

// New constructs a Store over the given gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
