package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/usedgoods/marketplace/internal/model"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing, paymentMethodKeys []string) error
	ByID(ctx context.Context, id string) (*model.Listing, error)
	Listings(ctx context.Context, filter model.ListingFilter) ([]*model.Listing, error)
	UserListings(ctx context.Context, userID string) ([]*model.Listing, error)
	Update(ctx context.Context, id string, changes model.ListingChanges) error
	Delete(ctx context.Context, id string) error
}

type listingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create inserts the listing and connects its payment methods in one transaction.
func (r *listingRepository) Create(ctx context.Context, listing *model.Listing, paymentMethodKeys []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO listings (id, user_id, name, description, price_cents, is_new, accept_trade, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.ExecContext(ctx, query,
		listing.ID,
		listing.UserID,
		listing.Name,
		listing.Description,
		listing.PriceCents,
		listing.IsNew,
		listing.AcceptTrade,
		listing.IsActive,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		return err
	}

	err = connectPaymentMethods(ctx, tx, listing.ID, paymentMethodKeys)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ByID returns the listing with its payment methods loaded.
func (r *listingRepository) ByID(ctx context.Context, id string) (*model.Listing, error) {
	listing := &model.Listing{}
	query := `SELECT * FROM listings WHERE id = $1`

	err := r.db.GetContext(ctx, listing, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.attachPaymentMethods(ctx, []*model.Listing{listing})
	if err != nil {
		return nil, err
	}

	return listing, nil
}

// Listings returns active listings matching filter, newest first.
func (r *listingRepository) Listings(ctx context.Context, filter model.ListingFilter) ([]*model.Listing, error) {
	conds := []string{"l.is_active = ?"}
	args := []any{true}

	if filter.ExcludeUserID != "" {
		conds = append(conds, "l.user_id <> ?")
		args = append(args, filter.ExcludeUserID)
	}
	if filter.IsNew != nil {
		conds = append(conds, "l.is_new = ?")
		args = append(args, *filter.IsNew)
	}
	if filter.AcceptTrade != nil {
		conds = append(conds, "l.accept_trade = ?")
		args = append(args, *filter.AcceptTrade)
	}
	if filter.Query != "" {
		conds = append(conds, `LOWER(l.name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(filter.Query))+"%")
	}
	if len(filter.PaymentMethods) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM listing_payment_methods lpm
		                               WHERE lpm.listing_id = l.id AND lpm.payment_method_key IN (?))`)
		args = append(args, filter.PaymentMethods)
	}

	query := `SELECT l.* FROM listings l WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY l.created_at DESC, l.id`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	listings := []*model.Listing{}
	err = r.db.SelectContext(ctx, &listings, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	err = r.attachPaymentMethods(ctx, listings)
	if err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *listingRepository) UserListings(ctx context.Context, userID string) ([]*model.Listing, error) {
	listings := []*model.Listing{}
	query := `SELECT * FROM listings WHERE user_id = $1 ORDER BY created_at DESC, id`

	err := r.db.SelectContext(ctx, &listings, query, userID)
	if err != nil {
		return nil, err
	}

	err = r.attachPaymentMethods(ctx, listings)
	if err != nil {
		return nil, err
	}

	return listings, nil
}

// Update writes the present fields of changes and applies the payment method
// connect/disconnect sets in one transaction.
func (r *listingRepository) Update(ctx context.Context, id string, changes model.ListingChanges) error {
	sets := []string{"updated_at = ?"}
	args := []any{changes.UpdatedAt}

	if changes.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *changes.Name)
	}
	if changes.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *changes.Description)
	}
	if changes.PriceCents != nil {
		sets = append(sets, "price_cents = ?")
		args = append(args, *changes.PriceCents)
	}
	if changes.IsNew != nil {
		sets = append(sets, "is_new = ?")
		args = append(args, *changes.IsNew)
	}
	if changes.AcceptTrade != nil {
		sets = append(sets, "accept_trade = ?")
		args = append(args, *changes.AcceptTrade)
	}
	if changes.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *changes.IsActive)
	}
	args = append(args, id)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := tx.Rebind(`UPDATE listings SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrListingNotFound
	}

	if len(changes.Disconnect) > 0 {
		query, args, err := sqlx.In(`DELETE FROM listing_payment_methods WHERE listing_id = ? AND payment_method_key IN (?)`, id, changes.Disconnect)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return fmt.Errorf("failed to disconnect payment methods: %w", err)
		}
	}

	err = connectPaymentMethods(ctx, tx, id, changes.Connect)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the listing. Image and payment method rows go with it via ON DELETE CASCADE.
func (r *listingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM listings WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrListingNotFound
	}

	return nil
}

func (r *listingRepository) attachPaymentMethods(ctx context.Context, listings []*model.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	byID := make(map[string]*model.Listing, len(listings))
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		l.PaymentMethods = []model.PaymentMethod{}
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	query, args, err := sqlx.In(`SELECT lpm.listing_id, pm.key, pm.name
	          FROM listing_payment_methods lpm
	          JOIN payment_methods pm ON pm.key = lpm.payment_method_key
	          WHERE lpm.listing_id IN (?)
	          ORDER BY pm.key`, ids)
	if err != nil {
		return err
	}

	var rows []struct {
		ListingID string `db:"listing_id"`
		model.PaymentMethod
	}
	err = r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to load payment methods: %w", err)
	}

	for _, row := range rows {
		l := byID[row.ListingID]
		l.PaymentMethods = append(l.PaymentMethods, row.PaymentMethod)
	}

	return nil
}

func connectPaymentMethods(ctx context.Context, tx *sqlx.Tx, listingID string, keys []string) error {
	query := `INSERT INTO listing_payment_methods (listing_id, payment_method_key) VALUES ($1, $2)`
	for _, key := range keys {
		_, err := tx.ExecContext(ctx, query, listingID, key)
		if err != nil {
			return fmt.Errorf("failed to connect payment method %q: %w", key, err)
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
