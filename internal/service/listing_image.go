package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/repository"
	"github.com/usedgoods/marketplace/internal/storage"
)

// ImageService owns the lifecycle of listing images: staged upload, saved
// file, database row, and the compensating cleanup between them.
type ImageService struct {
	listingRepo repository.ListingRepository
	imageRepo   repository.ListingImageRepository
	storage     storage.Storage
}

func NewImageService(
	listingRepo repository.ListingRepository,
	imageRepo repository.ListingImageRepository,
	storage storage.Storage,
) *ImageService {
	return &ImageService{
		listingRepo: listingRepo,
		imageRepo:   imageRepo,
		storage:     storage,
	}
}

// ImageDeletion reports the outcome of a bulk image delete.
type ImageDeletion struct {
	Deleted []string        `json:"deleted"`
	Failed  []*StorageError `json:"-"`
}

// CreateImages saves the staged uploads and records one image row per saved
// file. Images are processed in order; the first failure stops the batch and
// the handles not yet processed are discarded. The returned images are the
// ones created before the failure and are valid even when err is non-nil.
func (s *ImageService) CreateImages(ctx context.Context, listingID, actorID string, handles []string) ([]model.ListingImage, error) {
	if len(handles) == 0 {
		return nil, validationError("at least one image is required")
	}
	for _, h := range handles {
		if err := storage.ValidateHandle(h); err != nil {
			s.discard(ctx, handles)
			return nil, validationError("%v", err)
		}
	}

	listing, err := s.listingRepo.ByID(ctx, listingID)
	if err != nil {
		s.discard(ctx, handles)
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, notFoundError("product %s", listingID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	err = Authorize(actorID, listing.UserID)
	if err != nil {
		s.discard(ctx, handles)
		return nil, err
	}

	next, err := s.imageRepo.NextSortOrder(ctx, listingID)
	if err != nil {
		s.discard(ctx, handles)
		return nil, fmt.Errorf("failed to get image position: %w", err)
	}

	created := make([]model.ListingImage, 0, len(handles))
	for i, handle := range handles {
		path, err := s.storage.Save(ctx, handle)
		if err != nil {
			s.discard(ctx, handles[i:])
			return created, &StorageError{Op: "save", Index: i, Item: handle, Err: err}
		}

		image := model.ListingImage{
			ID:        uuid.New().String(),
			ListingID: listingID,
			Path:      path,
			SortOrder: next + len(created),
			CreatedAt: time.Now(),
		}

		err = s.imageRepo.Create(ctx, &image)
		if err != nil {
			// If DB insert fails, remove the file we just saved
			delErr := s.storage.Delete(ctx, path)
			if delErr != nil {
				slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", path)
			}
			s.discard(ctx, handles[i+1:])
			return created, fmt.Errorf("failed to create image record for item %d: %w", i, err)
		}

		created = append(created, image)
	}

	slog.Info("product images created", "product_id", listingID, "count", len(created))
	return created, nil
}

// DeleteImages removes the given images, files first and rows second. Every
// image must exist and belong to actorID before anything is touched. Images
// whose file could not be deleted keep their row and are reported in Failed.
func (s *ImageService) DeleteImages(ctx context.Context, ids []string, actorID string) (*ImageDeletion, error) {
	ids = uniqueKeys(ids)
	if len(ids) == 0 {
		return nil, validationError("at least one image id is required")
	}

	images, err := s.imageRepo.WithOwners(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}

	if len(images) != len(ids) {
		return nil, notFoundError("%d of %d images do not exist", len(ids)-len(images), len(ids))
	}

	for _, img := range images {
		err = Authorize(actorID, img.OwnerID)
		if err != nil {
			return nil, err
		}
	}

	result := &ImageDeletion{Deleted: []string{}}
	var errs []error
	for i, img := range images {
		err = s.storage.Delete(ctx, img.Path)
		if err != nil {
			failure := &StorageError{Op: "delete", Index: i, Item: img.ID, Err: err}
			result.Failed = append(result.Failed, failure)
			errs = append(errs, failure)
			continue
		}
		result.Deleted = append(result.Deleted, img.ID)
	}

	if len(result.Deleted) > 0 {
		_, err = s.imageRepo.DeleteMany(ctx, result.Deleted)
		if err != nil {
			// Files are gone, rows remain until the sweep reports them
			slog.Error("failed to delete image records", "error", err, "ids", result.Deleted)
			return nil, fmt.Errorf("failed to delete image records: %w", err)
		}
	}

	return result, errors.Join(errs...)
}

// URL returns the public address of a stored image.
func (s *ImageService) URL(path string) string {
	return s.storage.URL(path)
}

func (s *ImageService) discard(ctx context.Context, handles []string) {
	for _, h := range handles {
		err := s.storage.Discard(ctx, h)
		if err != nil {
			slog.Error("failed to discard staged upload", "error", err, "handle", h)
		}
	}
}
