package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
)

// Document is an export of every key, named by Key.ExportName.
type Document map[string]json.RawMessage

// Export reads every key. Missing keys are exported as empty arrays.
func Export(ctx context.Context, s Store) (Document, error) {
	doc := Document{}
	for _, key := range Keys {
		raw, err := s.Get(ctx, key)
		if errors.Is(err, ErrNotFound) || (err == nil && len(raw) == 0) {
			raw = []byte("[]")
		} else if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", key, err)
		}
		doc[key.ExportName()] = json.RawMessage(raw)
	}
	return doc, nil
}

// Import writes every key present in doc. Every value is checked against the
// collection it replaces before anything is written, and a failed write
// restores the keys already replaced.
func Import(ctx context.Context, s Store, doc Document) error {
	byName := map[string]Key{}
	for _, key := range Keys {
		byName[key.ExportName()] = key
	}

	values := map[Key][]byte{}
	for name, raw := range doc {
		key, ok := byName[name]
		if !ok {
			return fmt.Errorf("unknown key %q in import", name)
		}
		value, err := checkValue(key, raw)
		if err != nil {
			return fmt.Errorf("invalid value for key %q: %w", name, err)
		}
		values[key] = value
	}

	var written []snapshot
	for _, key := range Keys {
		value, ok := values[key]
		if !ok {
			continue
		}
		old, err := s.Get(ctx, key)
		found := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			restore(ctx, s, written)
			return fmt.Errorf("failed to read %s before import: %w", key, err)
		}
		if err := s.Set(ctx, key, value); err != nil {
			restore(ctx, s, written)
			return fmt.Errorf("failed to import %s: %w", key, err)
		}
		written = append(written, snapshot{key: key, value: old, found: found})
	}
	return nil
}

type snapshot struct {
	key   Key
	value []byte
	found bool
}

// restore puts back the values replaced by a partial import. It is best
// effort: the import error is what the caller reports.
func restore(ctx context.Context, s Store, written []snapshot) {
	for i := len(written) - 1; i >= 0; i-- {
		prev := written[i]
		if prev.found {
			_ = s.Set(ctx, prev.key, prev.value)
		} else {
			_ = s.Remove(ctx, prev.key)
		}
	}
}

// checkValue decodes raw as the collection stored under key and returns the
// bytes to store. null is accepted as an empty collection.
func checkValue(key Key, raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []byte("[]"), nil
	}

	var err error
	switch key {
	case KeyTransactions:
		err = decodeStrict[common.Transaction](trimmed)
	case KeyMessages:
		err = decodeStrict[common.Message](trimmed)
	case KeyCategories:
		err = decodeStrict[common.Category](trimmed)
	case KeyAccounts:
		err = decodeStrict[common.Account](trimmed)
	}
	if err != nil {
		return nil, err
	}
	return trimmed, nil
}

func decodeStrict[T any](raw []byte) error {
	var items []T
	return json.Unmarshal(raw, &items)
}

// WriteCSV writes doc as one KEY,<json> record per key in export order.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	for _, key := range Keys {
		raw, ok := doc[key.ExportName()]
		if !ok {
			continue
		}
		if err := cw.Write([]string{key.ExportName(), string(raw)}); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the KEY,<json> records written by WriteCSV.
func ReadCSV(r io.Reader) (Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	doc := Document{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if _, dup := doc[record[0]]; dup {
			return nil, fmt.Errorf("duplicate key %q in CSV", record[0])
		}
		doc[record[0]] = json.RawMessage(record[1])
	}
	return doc, nil
}
