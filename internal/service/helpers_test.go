package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usedgoods/marketplace/internal/db/dbtest"
	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/repository"
	"github.com/usedgoods/marketplace/internal/storage"
	"github.com/usedgoods/marketplace/internal/storage/storagetest"
)

const testSecret = "test-secret"

type env struct {
	disk     *storage.DiskStorage
	store    *storagetest.Recorder
	users    repository.UserRepository
	listings repository.ListingRepository
	images   *flakyImageRepo
	methods  repository.PaymentMethodRepository

	listingService *ListingService
	imageService   *ImageService
	authService    *AuthService
	sweepService   *SweepService

	seq int
}

func newEnv(t *testing.T) *env {
	t.Helper()
	database := dbtest.New(t)

	disk, err := storage.NewDiskStorage(t.TempDir(), "http://localhost/images")
	require.NoError(t, err)

	e := &env{
		disk:     disk,
		store:    storagetest.NewRecorder(disk),
		users:    repository.NewUserRepository(database),
		listings: repository.NewListingRepository(database),
		images:   &flakyImageRepo{ListingImageRepository: repository.NewListingImageRepository(database)},
		methods:  repository.NewPaymentMethodRepository(database),
	}
	e.listingService = NewListingService(e.listings, e.images, e.methods, e.users, e.store)
	e.imageService = NewImageService(e.listings, e.images, e.store)
	e.authService = NewAuthService(e.users, e.store, testSecret, time.Hour)
	e.sweepService = NewSweepService(e.images, e.users, e.store)

	_, err = NewPaymentMethodService(e.methods).Seed(context.Background())
	require.NoError(t, err)
	return e
}

func (e *env) user(t *testing.T, name string) *model.User {
	t.Helper()
	e.seq++
	u, err := e.authService.Register(context.Background(), Registration{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Tel:      fmt.Sprintf("+55119%08d", e.seq),
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func (e *env) listing(t *testing.T, owner *model.User, keys ...string) *model.Listing {
	t.Helper()
	yes, no := true, false
	l, err := e.listingService.Create(context.Background(), owner.ID, NewListing{
		Name:           "Road bike",
		Description:    "Barely used",
		PriceCents:     45000,
		IsNew:          &no,
		AcceptTrade:    &yes,
		PaymentMethods: keys,
	})
	require.NoError(t, err)
	return l
}

// stage writes n fake uploads to the staging area and returns their handles.
func (e *env) stage(t *testing.T, n int) []string {
	t.Helper()
	handles := make([]string, 0, n)
	for i := 0; i < n; i++ {
		h, err := e.disk.Stage(context.Background(), "photo.png", strings.NewReader("png bytes"))
		require.NoError(t, err)
		handles = append(handles, h)
	}
	return handles
}

func (e *env) stagedCount(t *testing.T) int {
	t.Helper()
	staged, err := e.disk.Staged()
	require.NoError(t, err)
	return len(staged)
}

func (e *env) storedCount(t *testing.T) int {
	t.Helper()
	stored, err := e.disk.List(context.Background())
	require.NoError(t, err)
	return len(stored)
}

var errInsert = errors.New("insert failed")

// flakyImageRepo fails Create once the given number of rows was written.
type flakyImageRepo struct {
	repository.ListingImageRepository
	failAfter int
	created   int
	enabled   bool
}

func (r *flakyImageRepo) failCreateAfter(n int) {
	r.enabled = true
	r.failAfter = n
}

func (r *flakyImageRepo) Create(ctx context.Context, image *model.ListingImage) error {
	if r.enabled && r.created >= r.failAfter {
		return errInsert
	}
	r.created++
	return r.ListingImageRepository.Create(ctx, image)
}
