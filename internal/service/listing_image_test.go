package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usedgoods/marketplace/internal/repository"
)

func TestCreateImagesSavesAndOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")

	first, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, e.stage(t, 2))
	require.NoError(t, err)
	second, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, e.stage(t, 1))
	require.NoError(t, err)

	assert.Equal(t, 0, first[0].SortOrder)
	assert.Equal(t, 1, first[1].SortOrder)
	assert.Equal(t, 2, second[0].SortOrder)
	assert.Equal(t, 3, e.storedCount(t))
	assert.Equal(t, 0, e.stagedCount(t))

	got, err := e.listingService.ByID(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	assert.Equal(t, "http://localhost/images/"+got.Images[0].Path, got.Images[0].URL)
}

func TestCreateImagesMissingListingPurgesHandles(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	handles := e.stage(t, 3)

	_, err := e.imageService.CreateImages(context.Background(), "missing", alice.ID, handles)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ElementsMatch(t, handles, e.store.Discards())
	assert.Empty(t, e.store.Saves())
	assert.Equal(t, 0, e.stagedCount(t))
	assert.Equal(t, 0, e.storedCount(t))
}

func TestCreateImagesNotOwnerPurgesHandles(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	l := e.listing(t, alice, "pix")

	_, err := e.imageService.CreateImages(context.Background(), l.ID, bob.ID, e.stage(t, 2))
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, e.store.Saves())
	assert.Equal(t, 0, e.stagedCount(t))
}

func TestCreateImagesRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")

	_, err := e.imageService.CreateImages(context.Background(), l.ID, alice.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)

	handles := append(e.stage(t, 1), "../etc/passwd")
	_, err = e.imageService.CreateImages(context.Background(), l.ID, alice.ID, handles)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, e.store.Saves())
	assert.Equal(t, 0, e.stagedCount(t))
}

func TestCreateImagesSaveFailureKeepsEarlierImages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")
	handles := e.stage(t, 3)
	e.store.FailSave(handles[1])

	created, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, handles)
	assert.ErrorIs(t, err, ErrStorage)
	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, handles[1], se.Item)

	require.Len(t, created, 1)
	assert.Equal(t, 1, e.storedCount(t))
	assert.Equal(t, 0, e.stagedCount(t))
	assert.ElementsMatch(t, handles[1:], e.store.Discards())
}

func TestCreateImagesRowFailureDeletesSavedFile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")
	handles := e.stage(t, 3)
	e.images.failCreateAfter(1)

	created, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, handles)
	assert.ErrorIs(t, err, errInsert)
	require.Len(t, created, 1)

	// second file was saved then removed again, third never left staging
	assert.Equal(t, handles[:2], e.store.Saves())
	assert.Len(t, e.store.Deletes(), 1)
	assert.Equal(t, 1, e.storedCount(t))
	assert.Equal(t, 0, e.stagedCount(t))
}

func TestDeleteImagesOwned(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")
	created, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, e.stage(t, 3))
	require.NoError(t, err)

	ids := []string{created[0].ID, created[1].ID, created[2].ID}
	result, err := e.imageService.DeleteImages(ctx, ids, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, result.Deleted)
	assert.Empty(t, result.Failed)
	assert.Len(t, e.store.Deletes(), 3)
	assert.Equal(t, 0, e.storedCount(t))

	for _, id := range ids {
		_, err := e.images.ByID(ctx, id)
		assert.ErrorIs(t, err, repository.ErrImageNotFound)
	}

	_, err = e.imageService.DeleteImages(ctx, ids[:1], alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteImagesForeignItemRejectsBatch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	mine := e.listing(t, alice, "pix")
	theirs := e.listing(t, bob, "cash")

	own, err := e.imageService.CreateImages(ctx, mine.ID, alice.ID, e.stage(t, 2))
	require.NoError(t, err)
	foreign, err := e.imageService.CreateImages(ctx, theirs.ID, bob.ID, e.stage(t, 1))
	require.NoError(t, err)

	_, err = e.imageService.DeleteImages(ctx, []string{own[0].ID, foreign[0].ID, own[1].ID}, alice.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, e.store.Deletes())
	assert.Equal(t, 3, e.storedCount(t))
}

func TestDeleteImagesUnknownIDRejectsBatch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")
	own, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, e.stage(t, 1))
	require.NoError(t, err)

	_, err = e.imageService.DeleteImages(ctx, []string{own[0].ID, "nope"}, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, e.store.Deletes())

	_, err = e.imageService.DeleteImages(ctx, nil, alice.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteImagesReportsPerItemFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	l := e.listing(t, alice, "pix")
	created, err := e.imageService.CreateImages(ctx, l.ID, alice.ID, e.stage(t, 2))
	require.NoError(t, err)
	e.store.FailDelete(created[0].Path)

	result, err := e.imageService.DeleteImages(ctx, []string{created[0].ID, created[1].ID}, alice.ID)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, []string{created[1].ID}, result.Deleted)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, created[0].ID, result.Failed[0].Item)

	_, err = e.images.ByID(ctx, created[0].ID)
	assert.NoError(t, err)
}
