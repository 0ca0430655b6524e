package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usedgoods/marketplace/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestListingCreate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")

	l := e.listing(t, alice, "pix", "cash", "pix")

	assert.Equal(t, alice.ID, l.UserID)
	assert.True(t, l.IsActive)
	assert.Equal(t, []string{"cash", "pix"}, l.PaymentMethodKeys())
	assert.Empty(t, l.Images)
	require.NotNil(t, l.Seller)
	assert.Equal(t, "alice", l.Seller.Name)

	_, err := e.listingService.Create(ctx, alice.ID, NewListing{
		Name: "Lamp", Description: "Desk lamp", PriceCents: 100,
		IsNew: ptr(true), AcceptTrade: ptr(false), PaymentMethods: []string{"pix", "bitcoin"},
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "bitcoin")

	_, err = e.listingService.Create(ctx, alice.ID, NewListing{
		Name: "Lamp", Description: "Desk lamp", PriceCents: 0,
		IsNew: ptr(true), AcceptTrade: ptr(false), PaymentMethods: []string{"pix"},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.listingService.Create(ctx, alice.ID, NewListing{
		Name: "Lamp", Description: "Desk lamp", PriceCents: 100,
		IsNew: ptr(true), AcceptTrade: ptr(false),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.listingService.Create(ctx, "", NewListing{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListingUpdateReconcilesPaymentMethods(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix", "cash")

	result, err := e.listingService.Update(ctx, l.ID, alice.ID, ListingPatch{
		PaymentMethods: &[]string{"cash", "card"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"card"}, result.Connected)
	assert.Equal(t, []string{"pix"}, result.Disconnected)

	got, err := e.listingService.ByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"card", "cash"}, got.PaymentMethodKeys())
}

func TestListingUpdateSameSetIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix", "cash")

	result, err := e.listingService.Update(ctx, l.ID, alice.ID, ListingPatch{
		PaymentMethods: &[]string{"cash", "pix"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Connected)
	assert.Empty(t, result.Disconnected)
}

func TestListingUpdateUnknownPaymentMethodKeepsAssociations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix", "cash")

	_, err := e.listingService.Update(ctx, l.ID, alice.ID, ListingPatch{
		Name:           ptr("Renamed"),
		PaymentMethods: &[]string{"cash", "gold"},
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "gold")

	got, err := e.listingService.ByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cash", "pix"}, got.PaymentMethodKeys())
	assert.Equal(t, "Road bike", got.Name)

	_, err = e.listingService.Update(ctx, l.ID, alice.ID, ListingPatch{PaymentMethods: &[]string{}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListingUpdatePatchesPresentFieldsOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")

	_, err := e.listingService.Update(ctx, l.ID, alice.ID, ListingPatch{
		PriceCents: ptr(int64(39900)),
		IsNew:      ptr(true),
	})
	require.NoError(t, err)

	got, err := e.listingService.ByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(39900), got.PriceCents)
	assert.True(t, got.IsNew)
	assert.True(t, got.AcceptTrade)
	assert.Equal(t, "Road bike", got.Name)
	assert.Equal(t, []string{"pix"}, got.PaymentMethodKeys())

	_, err = e.listingService.Update(ctx, l.ID, alice.ID, ListingPatch{Name: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.listingService.Update(ctx, l.ID, alice.ID, ListingPatch{PriceCents: ptr(int64(-1))})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListingUpdateChecksExistenceThenOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	l := e.listing(t, alice, "pix")

	_, err := e.listingService.Update(ctx, "missing", alice.ID, ListingPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.listingService.Update(ctx, l.ID, bob.ID, ListingPatch{
		Name:           ptr("Stolen"),
		PaymentMethods: &[]string{"card"},
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	got, err := e.listingService.ByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Road bike", got.Name)
	assert.Equal(t, []string{"pix"}, got.PaymentMethodKeys())
}

func TestListingSetActive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	l := e.listing(t, alice, "pix")

	assert.ErrorIs(t, e.listingService.SetActive(ctx, l.ID, bob.ID, false), ErrUnauthorized)
	assert.ErrorIs(t, e.listingService.SetActive(ctx, "missing", alice.ID, false), ErrNotFound)
	require.NoError(t, e.listingService.SetActive(ctx, l.ID, alice.ID, false))

	public, err := e.listingService.Listings(ctx, bob.ID, model.ListingFilter{})
	require.NoError(t, err)
	assert.Empty(t, public)

	mine, err := e.listingService.UserListings(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.False(t, mine[0].IsActive)
}

func TestListingsExcludeActorAndFilter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	e.listing(t, alice, "pix")
	bobs := e.listing(t, bob, "card")

	forAlice, err := e.listingService.Listings(ctx, alice.ID, model.ListingFilter{})
	require.NoError(t, err)
	require.Len(t, forAlice, 1)
	assert.Equal(t, bobs.ID, forAlice[0].ID)
	require.NotNil(t, forAlice[0].Seller)
	assert.Equal(t, "bob", forAlice[0].Seller.Name)

	anon, err := e.listingService.Listings(ctx, "", model.ListingFilter{PaymentMethods: []string{"pix"}})
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, alice.ID, anon[0].UserID)

	none, err := e.listingService.Listings(ctx, "", model.ListingFilter{Query: "sofa"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListingDeleteRemovesFilesAndRows(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	l := e.listing(t, alice, "pix")

	created, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, e.stage(t, 3))
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, 3, e.storedCount(t))

	assert.ErrorIs(t, e.listingService.Delete(ctx, l.ID, bob.ID), ErrUnauthorized)
	assert.Equal(t, 3, e.storedCount(t))

	require.NoError(t, e.listingService.Delete(ctx, l.ID, alice.ID))
	assert.Equal(t, 0, e.storedCount(t))
	assert.Len(t, e.store.Deletes(), 3)

	_, err = e.listingService.ByID(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	paths, err := e.images.Paths(ctx)
	require.NoError(t, err)
	assert.Empty(t, paths)

	assert.ErrorIs(t, e.listingService.Delete(ctx, l.ID, alice.ID), ErrNotFound)
}

func TestListingDeleteKeepsListingWhenFileDeleteFails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")

	created, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, e.stage(t, 2))
	require.NoError(t, err)
	e.store.FailDelete(created[1].Path)

	err = e.listingService.Delete(ctx, l.ID, alice.ID)
	assert.ErrorIs(t, err, ErrStorage)

	got, err := e.listingService.ByID(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, created[1].ID, got.Images[0].ID)
	assert.Equal(t, 1, e.storedCount(t))
}
