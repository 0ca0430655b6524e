package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/usedgoods/marketplace/internal/db/dbtest"
	"github.com/usedgoods/marketplace/internal/model"
)

type fixture struct {
	db       *sqlx.DB
	users    UserRepository
	listings ListingRepository
	images   ListingImageRepository
	methods  PaymentMethodRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := dbtest.New(t)
	f := &fixture{
		db:       database,
		users:    NewUserRepository(database),
		listings: NewListingRepository(database),
		images:   NewListingImageRepository(database),
		methods:  NewPaymentMethodRepository(database),
	}
	for _, pm := range []model.PaymentMethod{
		{Key: "card", Name: "Credit Card"},
		{Key: "cash", Name: "Cash"},
		{Key: "pix", Name: "Pix"},
	} {
		require.NoError(t, f.methods.Upsert(context.Background(), pm))
	}
	return f
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.NewString(),
		Name:         "Seller " + email,
		Email:        email,
		Tel:          email + "-tel",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) listing(t *testing.T, ownerID, name string, keys ...string) *model.Listing {
	t.Helper()
	now := time.Now().UTC()
	l := &model.Listing{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Name:        name,
		Description: "description of " + name,
		PriceCents:  1500,
		IsNew:       true,
		AcceptTrade: false,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.listings.Create(context.Background(), l, keys))
	return l
}

func (f *fixture) image(t *testing.T, listingID, path string, order int) *model.ListingImage {
	t.Helper()
	img := &model.ListingImage{
		ID:        uuid.NewString(),
		ListingID: listingID,
		Path:      path,
		SortOrder: order,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.images.Create(context.Background(), img))
	return img
}
