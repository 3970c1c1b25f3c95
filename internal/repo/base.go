package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is the shared foundation domain repositories embed: it holds the GORM
// connection and binds request contexts onto it.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a GORM connection (or an open transaction) for embedding.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx, or the raw connection when ctx is nil.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
