// Package store persists the pipeline's collections as JSON values under a
// small set of logical keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Key names one persisted collection.
type Key string

const (
	KeyTransactions Key = "@transactions"
	KeyMessages     Key = "@messages"
	KeyCategories   Key = "@categories"
	KeyAccounts     Key = "@accounts"
)

// Keys lists every logical key in export order.
var Keys = []Key{KeyTransactions, KeyMessages, KeyCategories, KeyAccounts}

// ErrNotFound is returned by Get when nothing is stored under a key.
var ErrNotFound = errors.New("key not found")

// Store is a key value store for JSON documents.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Remove(ctx context.Context, key Key) error
}

// ExportName is the key as it appears in an export document: TRANSACTIONS.
func (k Key) ExportName() string {
	return strings.ToUpper(strings.TrimPrefix(string(k), "@"))
}

// Valid reports whether k is one of Keys.
func (k Key) Valid() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Load decodes the JSON array stored under key. A missing key is an empty list.
func Load[T any](ctx context.Context, s Store, key Key) ([]T, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return items, nil
}

// Save encodes items as a JSON array and stores it under key.
func Save[T any](ctx context.Context, s Store, key Key, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
