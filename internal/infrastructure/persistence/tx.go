package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// session returns the transaction carried by ctx when one is open, otherwise
// the fallback connection. Every repository method goes through this so a
// flow wrapped in TxManager.InTx has all its writes on one transaction.
func session(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// TxManager runs functions inside a database transaction. The transaction is
// threaded through the context, so the repositories already held by a service
// pick it up without rewiring.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager on the given connection
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// InTx executes fn atomically: every repository write made with the derived
// context commits together or rolls back together.
func (m *TxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
