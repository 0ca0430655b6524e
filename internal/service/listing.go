package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/repository"
	"github.com/usedgoods/marketplace/internal/storage"
	"github.com/usedgoods/marketplace/internal/validation"
)

type ListingService struct {
	listingRepo repository.ListingRepository
	imageRepo   repository.ListingImageRepository
	methodRepo  repository.PaymentMethodRepository
	userRepo    repository.UserRepository
	storage     storage.Storage
}

func NewListingService(
	listingRepo repository.ListingRepository,
	imageRepo repository.ListingImageRepository,
	methodRepo repository.PaymentMethodRepository,
	userRepo repository.UserRepository,
	storage storage.Storage,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		imageRepo:   imageRepo,
		methodRepo:  methodRepo,
		userRepo:    userRepo,
		storage:     storage,
	}
}

// NewListing is the input of Create. Every field is required.
type NewListing struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	PriceCents     int64    `json:"price"`
	IsNew          *bool    `json:"is_new"`
	AcceptTrade    *bool    `json:"accept_trade"`
	PaymentMethods []string `json:"payment_methods"`
}

// ListingPatch is the input of Update. Nil fields are left unchanged.
type ListingPatch struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	PriceCents     *int64    `json:"price"`
	IsNew          *bool     `json:"is_new"`
	AcceptTrade    *bool     `json:"accept_trade"`
	PaymentMethods *[]string `json:"payment_methods"`
}

// ListingUpdate reports the payment method keys an update connected and disconnected.
type ListingUpdate struct {
	Connected    []string `json:"connected"`
	Disconnected []string `json:"disconnected"`
}

func (s *ListingService) Create(ctx context.Context, actorID string, in NewListing) (*model.Listing, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: sign in to create a product", ErrUnauthorized)
	}

	err := validateText(in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	err = validation.ValidatePrice(in.PriceCents)
	if err != nil {
		return nil, validationError("%v", err)
	}
	if in.IsNew == nil {
		return nil, validationError("is_new is required")
	}
	if in.AcceptTrade == nil {
		return nil, validationError("accept_trade is required")
	}

	keys, err := s.verifyPaymentMethods(ctx, in.PaymentMethods)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	listing := &model.Listing{
		ID:          uuid.New().String(),
		UserID:      actorID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		IsNew:       *in.IsNew,
		AcceptTrade: *in.AcceptTrade,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.listingRepo.Create(ctx, listing, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	slog.Info("product created", "product_id", listing.ID, "user_id", actorID)
	return s.ByID(ctx, listing.ID)
}

// ByID returns the listing with its payment methods, images and seller.
func (s *ListingService) ByID(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.decorate(ctx, []*model.Listing{listing}, true)
	if err != nil {
		return nil, err
	}

	return listing, nil
}

// Listings returns the active listings of other sellers matching filter.
func (s *ListingService) Listings(ctx context.Context, actorID string, filter model.ListingFilter) ([]*model.Listing, error) {
	filter.ExcludeUserID = actorID
	filter.Query = strings.TrimSpace(filter.Query)

	listings, err := s.listingRepo.Listings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	err = s.decorate(ctx, listings, true)
	if err != nil {
		return nil, err
	}

	return listings, nil
}

// UserListings returns every listing of actorID, active or not.
func (s *ListingService) UserListings(ctx context.Context, actorID string) ([]*model.Listing, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: sign in to see your products", ErrUnauthorized)
	}

	listings, err := s.listingRepo.UserListings(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	err = s.decorate(ctx, listings, false)
	if err != nil {
		return nil, err
	}

	return listings, nil
}

// Update applies the present fields of patch. When PaymentMethods is present
// the stored set is reconciled against it and only the difference is written.
// Field writes and association changes commit together.
func (s *ListingService) Update(ctx context.Context, listingID, actorID string, patch ListingPatch) (*ListingUpdate, error) {
	changes := model.ListingChanges{UpdatedAt: time.Now()}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		err := validation.ValidateRequiredText("name", name, validation.MaxListingNameLength)
		if err != nil {
			return nil, validationError("%v", err)
		}
		changes.Name = &name
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		err := validation.ValidateRequiredText("description", description, validation.MaxListingDescriptionLength)
		if err != nil {
			return nil, validationError("%v", err)
		}
		changes.Description = &description
	}
	if patch.PriceCents != nil {
		err := validation.ValidatePrice(*patch.PriceCents)
		if err != nil {
			return nil, validationError("%v", err)
		}
		changes.PriceCents = patch.PriceCents
	}
	changes.IsNew = patch.IsNew
	changes.AcceptTrade = patch.AcceptTrade

	var keys []string
	if patch.PaymentMethods != nil {
		var err error
		keys, err = s.verifyPaymentMethods(ctx, *patch.PaymentMethods)
		if err != nil {
			return nil, err
		}
	}

	listing, err := s.find(ctx, listingID)
	if err != nil {
		return nil, err
	}

	err = Authorize(actorID, listing.UserID)
	if err != nil {
		return nil, err
	}

	result := &ListingUpdate{Connected: []string{}, Disconnected: []string{}}
	if patch.PaymentMethods != nil {
		changes.Connect, changes.Disconnect = Reconcile(listing.PaymentMethodKeys(), keys)
		result.Connected = append(result.Connected, changes.Connect...)
		result.Disconnected = append(result.Disconnected, changes.Disconnect...)
	}

	err = s.listingRepo.Update(ctx, listingID, changes)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, notFoundError("product %s", listingID)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	slog.Info("product updated",
		"product_id", listingID,
		"connected", changes.Connect,
		"disconnected", changes.Disconnect,
	)
	return result, nil
}

// SetActive toggles whether the listing shows up in the public index.
func (s *ListingService) SetActive(ctx context.Context, listingID, actorID string, active bool) error {
	listing, err := s.find(ctx, listingID)
	if err != nil {
		return err
	}

	err = Authorize(actorID, listing.UserID)
	if err != nil {
		return err
	}

	err = s.listingRepo.Update(ctx, listingID, model.ListingChanges{IsActive: &active, UpdatedAt: time.Now()})
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return notFoundError("product %s", listingID)
		}
		return fmt.Errorf("failed to update product status: %w", err)
	}

	return nil
}

// Delete removes the listing and every image it owns. Image files go first;
// if any of them cannot be deleted the listing is kept and only the rows of
// images whose files are gone are removed.
func (s *ListingService) Delete(ctx context.Context, listingID, actorID string) error {
	listing, err := s.find(ctx, listingID)
	if err != nil {
		return err
	}

	err = Authorize(actorID, listing.UserID)
	if err != nil {
		return err
	}

	images, err := s.imageRepo.ByListingID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("failed to get product images: %w", err)
	}

	var errs []error
	removed := make([]string, 0, len(images))
	for i, img := range images {
		err = s.storage.Delete(ctx, img.Path)
		if err != nil {
			errs = append(errs, &StorageError{Op: "delete", Index: i, Item: img.ID, Err: err})
			continue
		}
		removed = append(removed, img.ID)
	}

	if len(errs) > 0 {
		if len(removed) > 0 {
			_, delErr := s.imageRepo.DeleteMany(ctx, removed)
			if delErr != nil {
				slog.Error("failed to delete image records", "error", delErr, "product_id", listingID)
			}
		}
		slog.Warn("product kept, some image files could not be deleted",
			"product_id", listingID,
			"deleted", len(removed),
			"failed", len(errs),
		)
		return errors.Join(errs...)
	}

	err = s.listingRepo.Delete(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return notFoundError("product %s", listingID)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	slog.Info("product deleted", "product_id", listingID, "images", len(images))
	return nil
}

func (s *ListingService) find(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.listingRepo.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, notFoundError("product %s", id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return listing, nil
}

// verifyPaymentMethods checks that keys is non-empty and that every key is
// part of the vocabulary, using one batched lookup. It returns the distinct keys.
func (s *ListingService) verifyPaymentMethods(ctx context.Context, keys []string) ([]string, error) {
	keys = uniqueKeys(keys)
	if len(keys) == 0 {
		return nil, validationError("at least one payment method is required")
	}

	found, err := s.methodRepo.ByKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment methods: %w", err)
	}

	if len(found) != len(keys) {
		known := make(map[string]struct{}, len(found))
		for _, pm := range found {
			known[pm.Key] = struct{}{}
		}
		var unknown []string
		for _, k := range keys {
			if _, ok := known[k]; !ok {
				unknown = append(unknown, k)
			}
		}
		return nil, validationError("unknown payment methods: %s", strings.Join(unknown, ", "))
	}

	return keys, nil
}

// decorate loads images (and sellers when withSeller is set) for listings in batched queries.
func (s *ListingService) decorate(ctx context.Context, listings []*model.Listing, withSeller bool) error {
	if len(listings) == 0 {
		return nil
	}

	ids := make([]string, 0, len(listings))
	owners := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
		owners = append(owners, l.UserID)
	}

	images, err := s.imageRepo.ByListingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to get product images: %w", err)
	}

	var sellers map[string]*model.Seller
	if withSeller {
		sellers, err = s.userRepo.Sellers(ctx, uniqueKeys(owners))
		if err != nil {
			return fmt.Errorf("failed to get sellers: %w", err)
		}
	}

	for _, l := range listings {
		l.Images = images[l.ID]
		if l.Images == nil {
			l.Images = []model.ListingImage{}
		}
		for i := range l.Images {
			l.Images[i].URL = s.storage.URL(l.Images[i].Path)
		}
		if seller, ok := sellers[l.UserID]; ok {
			if seller.Avatar != nil {
				seller.AvatarURL = s.storage.URL(*seller.Avatar)
			}
			l.Seller = seller
		}
	}

	return nil
}

func validateText(name, description string) error {
	err := validation.ValidateRequiredText("name", strings.TrimSpace(name), validation.MaxListingNameLength)
	if err != nil {
		return validationError("%v", err)
	}
	err = validation.ValidateRequiredText("description", strings.TrimSpace(description), validation.MaxListingDescriptionLength)
	if err != nil {
		return validationError("%v", err)
	}
	return nil
}
