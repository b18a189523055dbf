// Package storetest holds behavior checks shared by every store backend.
package storetest

import (
	"context"
	"testing"

	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises s. The store must start empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, store.KeyCategories)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, store.KeyMessages, []byte(`[{"id":"m1"}]`)))
		got, err := s.Get(ctx, store.KeyMessages)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"m1"}]`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, store.KeyMessages, []byte(`[{"id":"m2"}]`)))
		got, err := s.Get(ctx, store.KeyMessages)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"m2"}]`, string(got))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Remove(ctx, store.KeyMessages))
		_, err := s.Get(ctx, store.KeyMessages)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.NoError(t, s.Remove(ctx, store.KeyMessages))
	})

	t.Run("export import round trip", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, store.KeyAccounts, []byte(`[{"id":"acc1","senderID":"HDFCBK"}]`)))

		doc, err := store.Export(ctx, s)
		require.NoError(t, err)
		assert.Len(t, doc, 4)
		assert.JSONEq(t, `[]`, string(doc["TRANSACTIONS"]))

		require.NoError(t, s.Remove(ctx, store.KeyAccounts))
		require.NoError(t, store.Import(ctx, s, doc))

		got, err := s.Get(ctx, store.KeyAccounts)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"acc1","senderID":"HDFCBK"}]`, string(got))
	})
}
