// ABOUTME: Tests for the KV-backed record store and client helpers
// ABOUTME: Runs against a BadgerDB test client so no charm server is needed

package charm

import (
	"context"
	"testing"

	"github.com/harperreed/dealboard/db"
	"github.com/harperreed/dealboard/db/dbtest"
	"github.com/harperreed/dealboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSuite(t *testing.T) {
	dbtest.RunRecordStoreSuite(t, func(t *testing.T) db.RecordStore {
		return NewStore(NewTestClient(t))
	})
}

func TestStoreSequencesArePerEntity(t *testing.T) {
	store := NewStore(NewTestClient(t))
	ctx := context.Background()

	deal := &models.Deal{Title: "First"}
	require.NoError(t, store.CreateDeal(ctx, deal))
	contact := &models.Contact{FirstName: "A", LastName: "B", Email: "a@b.co", Phone: "1"}
	require.NoError(t, store.CreateContact(ctx, contact))

	assert.Equal(t, int64(1), deal.ID)
	assert.Equal(t, int64(1), contact.ID)

	second := &models.Deal{Title: "Second"}
	require.NoError(t, store.CreateDeal(ctx, second))
	assert.Equal(t, int64(2), second.ID)

	// ids are never reused after a delete
	require.NoError(t, store.DeleteDeal(ctx, second.ID))
	third := &models.Deal{Title: "Third"}
	require.NoError(t, store.CreateDeal(ctx, third))
	assert.Equal(t, int64(3), third.ID)
}

func TestClientKeysWithPrefix(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("deal:1"), []byte("{}")))
	require.NoError(t, c.Set([]byte("deal:2"), []byte("{}")))
	require.NoError(t, c.Set([]byte("contact:1"), []byte("{}")))

	keys, err := c.KeysWithPrefix([]byte("deal:"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, c.Reset())
	keys, err = c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalClientIsNotConnected(t *testing.T) {
	c := NewTestClient(t)
	assert.False(t, c.IsConnected())
	assert.NoError(t, c.Sync())
	assert.False(t, c.Config().AutoSync)
}
