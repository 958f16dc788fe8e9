package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStorageContract runs a suite of tests to verify that a Storage
// implementation adheres to the defined interface contract.
func RunStorageContract(t *testing.T, storage Storage) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		err := storage.SetItem(ctx, key, `{"answers":{}}`)
		require.NoError(t, err, "SetItem should not return error")

		val, ok, err := storage.GetItem(ctx, key)
		require.NoError(t, err, "GetItem should not return error")
		assert.True(t, ok)
		assert.Equal(t, `{"answers":{}}`, val)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, ok, err := storage.GetItem(ctx, "non-existent-"+key)
		require.NoError(t, err)
		assert.False(t, ok, "missing key must report not-present, not an error")
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, storage.SetItem(ctx, key, "first"))
		require.NoError(t, storage.SetItem(ctx, key, "second"))

		val, ok, err := storage.GetItem(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "second", val)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, storage.SetItem(ctx, key, "value"))
		require.NoError(t, storage.RemoveItem(ctx, key))

		_, ok, err := storage.GetItem(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok)

		// Removing again must stay silent.
		assert.NoError(t, storage.RemoveItem(ctx, key))
	})
}
