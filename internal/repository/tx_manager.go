package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs work that spans products and orders in one database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, products ProductRepository, orders OrderRepository) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over db.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

// WithTransaction executes fn with repositories bound to a single transaction.
// Any error returned by fn rolls the whole transaction back.
func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, products ProductRepository, orders OrderRepository) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &productRepository{db: tx}, &orderRepository{db: tx})
	})
}
