package store_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/aqlanhadi/kwgn-sms/store/storetest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, store.NewMemory())
}

func TestFile(t *testing.T) {
	s, err := store.NewFile(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	storetest.Run(t, s)
}

func TestFile_Layout(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := store.NewFile(fs, "/data")
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), store.KeyTransactions, []byte(`[]`)))

	exists, err := afero.Exists(fs, "/data/transactions.json")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, "/data/transactions.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	msgs, err := store.Load[common.Message](ctx, s, store.KeyMessages)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)

	in := []common.Message{{ID: "m1", Sender: "HDFCBK", Body: "hello", Timestamp: 1708002625123}}
	require.NoError(t, store.Save(ctx, s, store.KeyMessages, in))

	out, err := store.Load[common.Message](ctx, s, store.KeyMessages)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoad_CorruptValue(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, store.KeyMessages, []byte(`{not json`)))

	_, err := store.Load[common.Message](ctx, s, store.KeyMessages)
	assert.ErrorContains(t, err, "failed to decode @messages")
}

func TestSave_NilIsEmptyArray(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, store.Save[common.Transaction](ctx, s, store.KeyTransactions, nil))

	raw, err := s.Get(ctx, store.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestImport_RejectsUnknownKey(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	err := store.Import(ctx, s, store.Document{
		"MESSAGES": json.RawMessage(`[]`),
		"BUDGETS":  json.RawMessage(`[]`),
	})
	assert.ErrorContains(t, err, `unknown key "BUDGETS"`)

	_, err = s.Get(ctx, store.KeyMessages)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImport_RejectsWrongShape(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, store.KeyTransactions, []byte(`[]`)))

	err := store.Import(ctx, s, store.Document{
		"MESSAGES":     json.RawMessage(`[{"id":"m1","sender":"HDFCBK","body":"hi","timestamp":1}]`),
		"TRANSACTIONS": json.RawMessage(`{"id":"x"}`),
	})
	assert.ErrorContains(t, err, `invalid value for key "TRANSACTIONS"`)

	raw, err := s.Get(ctx, store.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	_, err = s.Get(ctx, store.KeyMessages)
	assert.ErrorIs(t, err, store.ErrNotFound)

	txs, err := store.Load[common.Transaction](ctx, s, store.KeyTransactions)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestImport_NullIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	require.NoError(t, store.Import(ctx, s, store.Document{
		"CATEGORIES": json.RawMessage(`null`),
	}))

	raw, err := s.Get(ctx, store.KeyCategories)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

// failingStore fails every Set on one key.
type failingStore struct {
	store.Store
	fail store.Key
}

func (f failingStore) Set(ctx context.Context, key store.Key, value []byte) error {
	if key == f.fail {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestImport_RestoresOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, store.KeyTransactions, []byte(`[{"id":"t1"}]`)))

	s := failingStore{Store: mem, fail: store.KeyCategories}
	err := store.Import(ctx, s, store.Document{
		"TRANSACTIONS": json.RawMessage(`[]`),
		"MESSAGES":     json.RawMessage(`[]`),
		"CATEGORIES":   json.RawMessage(`[]`),
	})
	assert.ErrorContains(t, err, "failed to import @categories: disk full")

	raw, err := mem.Get(ctx, store.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"t1"}]`, string(raw))

	_, err = mem.Get(ctx, store.KeyMessages)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCSV_RoundTrip(t *testing.T) {
	doc := store.Document{
		"TRANSACTIONS": json.RawMessage(`[{"id":"t1","purpose":"Coffee, large"}]`),
		"ACCOUNTS":     json.RawMessage(`[]`),
	}

	var buf bytes.Buffer
	require.NoError(t, store.WriteCSV(&buf, doc))
	assert.Equal(t, "TRANSACTIONS,\"[{\"\"id\"\":\"\"t1\"\",\"\"purpose\"\":\"\"Coffee, large\"\"}]\"\nACCOUNTS,[]\n", buf.String())

	got, err := store.ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := store.ReadCSV(bytes.NewBufferString("MESSAGES,[],extra\n"))
	assert.ErrorContains(t, err, "failed to read CSV")

	_, err = store.ReadCSV(bytes.NewBufferString("MESSAGES,[]\nMESSAGES,[]\n"))
	assert.ErrorContains(t, err, `duplicate key "MESSAGES"`)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "TRANSACTIONS", store.KeyTransactions.ExportName())
	assert.True(t, store.KeyAccounts.Valid())
	assert.False(t, store.Key("@budgets").Valid())
}
