package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/usedgoods/marketplace/internal/model"
)

var (
	ErrImageNotFound = errors.New("image not found")
)

type ListingImageRepository interface {
	Create(ctx context.Context, image *model.ListingImage) error
	ByID(ctx context.Context, id string) (*model.ListingImage, error)
	ByListingID(ctx context.Context, listingID string) ([]model.ListingImage, error)
	ByListingIDs(ctx context.Context, listingIDs []string) (map[string][]model.ListingImage, error)
	WithOwners(ctx context.Context, ids []string) ([]model.OwnedImage, error)
	NextSortOrder(ctx context.Context, listingID string) (int, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	Paths(ctx context.Context) ([]string, error)
}

type listingImageRepository struct {
	db *sqlx.DB
}

func NewListingImageRepository(db *sqlx.DB) ListingImageRepository {
	return &listingImageRepository{db: db}
}

func (r *listingImageRepository) Create(ctx context.Context, image *model.ListingImage) error {
	query := `INSERT INTO listing_images (id, listing_id, path, sort_order, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		image.ID,
		image.ListingID,
		image.Path,
		image.SortOrder,
		image.CreatedAt,
	)

	return err
}

func (r *listingImageRepository) ByID(ctx context.Context, id string) (*model.ListingImage, error) {
	image := &model.ListingImage{}
	query := `SELECT * FROM listing_images WHERE id = $1`

	err := r.db.GetContext(ctx, image, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrImageNotFound
	}

	return image, err
}

func (r *listingImageRepository) ByListingID(ctx context.Context, listingID string) ([]model.ListingImage, error) {
	images := []model.ListingImage{}
	query := `SELECT * FROM listing_images WHERE listing_id = $1 ORDER BY sort_order`

	err := r.db.SelectContext(ctx, &images, query, listingID)
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (r *listingImageRepository) ByListingIDs(ctx context.Context, listingIDs []string) (map[string][]model.ListingImage, error) {
	grouped := make(map[string][]model.ListingImage, len(listingIDs))
	if len(listingIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM listing_images WHERE listing_id IN (?) ORDER BY listing_id, sort_order`, listingIDs)
	if err != nil {
		return nil, err
	}

	var images []model.ListingImage
	err = r.db.SelectContext(ctx, &images, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, image := range images {
		grouped[image.ListingID] = append(grouped[image.ListingID], image)
	}

	return grouped, nil
}

// WithOwners fetches the images with the owner of each image's listing in one query.
func (r *listingImageRepository) WithOwners(ctx context.Context, ids []string) ([]model.OwnedImage, error) {
	images := []model.OwnedImage{}
	if len(ids) == 0 {
		return images, nil
	}

	query, args, err := sqlx.In(`SELECT li.id, li.listing_id, li.path, li.sort_order, li.created_at, l.user_id AS owner_id
	          FROM listing_images li
	          JOIN listings l ON l.id = li.listing_id
	          WHERE li.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &images, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (r *listingImageRepository) NextSortOrder(ctx context.Context, listingID string) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(sort_order), -1) + 1 FROM listing_images WHERE listing_id = $1`
	err := r.db.QueryRowContext(ctx, query, listingID).Scan(&next)
	return next, err
}

func (r *listingImageRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM listing_images WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Paths lists every stored file id referenced by an image row.
func (r *listingImageRepository) Paths(ctx context.Context) ([]string, error) {
	var paths []string
	query := `SELECT path FROM listing_images ORDER BY path`

	err := r.db.SelectContext(ctx, &paths, query)
	if err != nil {
		return nil, err
	}

	return paths, nil
}
