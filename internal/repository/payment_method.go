package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/usedgoods/marketplace/internal/model"
)

type PaymentMethodRepository interface {
	All(ctx context.Context) ([]model.PaymentMethod, error)
	ByKeys(ctx context.Context, keys []string) ([]model.PaymentMethod, error)
	Upsert(ctx context.Context, pm model.PaymentMethod) error
}

type paymentMethodRepository struct {
	db *sqlx.DB
}

func NewPaymentMethodRepository(db *sqlx.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) All(ctx context.Context) ([]model.PaymentMethod, error) {
	methods := []model.PaymentMethod{}
	query := `SELECT key, name FROM payment_methods ORDER BY key`

	err := r.db.SelectContext(ctx, &methods, query)
	if err != nil {
		return nil, err
	}

	return methods, nil
}

// ByKeys returns the vocabulary entries matching keys in a single query.
// Unknown keys are simply absent from the result.
func (r *paymentMethodRepository) ByKeys(ctx context.Context, keys []string) ([]model.PaymentMethod, error) {
	methods := []model.PaymentMethod{}
	if len(keys) == 0 {
		return methods, nil
	}

	query, args, err := sqlx.In(`SELECT key, name FROM payment_methods WHERE key IN (?) ORDER BY key`, keys)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &methods, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return methods, nil
}

// Upsert inserts pm unless its key already exists. Existing names are kept.
func (r *paymentMethodRepository) Upsert(ctx context.Context, pm model.PaymentMethod) error {
	query := `INSERT INTO payment_methods (key, name) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, pm.Key, pm.Name)
	return err
}
