package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/aqlanhadi/kwgn-sms/store/storetest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kwgn.db")
	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	return db, path
}

func TestStore(t *testing.T) {
	db, _ := openTemp(t)
	defer db.Close()
	storetest.Run(t, db)
}

func TestReopenKeepsValues(t *testing.T) {
	db, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, db.Set(ctx, store.KeyCategories, []byte(`[{"id":"c1","name":"Food"}]`)))
	require.NoError(t, db.Close())

	reopened, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, store.KeyCategories)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"c1","name":"Food"}]`, string(got))
}
