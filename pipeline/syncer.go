// Package pipeline owns the stored transaction set and runs
// compile, merge and persist cycles against it one at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aqlanhadi/kwgn-sms/extractor"
	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/aqlanhadi/kwgn-sms/reconcile"
	"github.com/aqlanhadi/kwgn-sms/store"
	"github.com/rs/zerolog"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrMessageNotFound     = errors.New("message not found")
)

// Options configures a Syncer. Zero values fall back to defaults.
type Options struct {
	// Accounts are used when nothing is stored under @accounts.
	Accounts []common.Account
	Window   time.Duration
	Compiler *extractor.Compiler
	Log      zerolog.Logger
	// AfterSync runs inside the cycle once transactions are saved. An error
	// fails the cycle but the saved transactions stay.
	AfterSync func(ctx context.Context, accounts []common.Account, transactions []common.Transaction) error
}

// Result summarizes one sync cycle.
type Result struct {
	Messages int `json:"messages"`
	Compiled int `json:"compiled"`
	Added    int `json:"added"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// Syncer serializes access to the stored collections.
type Syncer struct {
	mu       sync.Mutex
	store    store.Store
	accounts []common.Account
	window   time.Duration
	compiler *extractor.Compiler
	log      zerolog.Logger
	after    func(ctx context.Context, accounts []common.Account, transactions []common.Transaction) error

	state     sync.Mutex
	trigger   chan struct{}
	closeChan chan struct{}
	wg        sync.WaitGroup
	started   bool
	closed    bool
}

func New(s store.Store, opts Options) *Syncer {
	if opts.Window == 0 {
		opts.Window = reconcile.DefaultWindow
	}
	if opts.Compiler == nil {
		opts.Compiler = extractor.NewCompiler(opts.Log)
	}
	return &Syncer{
		store:     s,
		accounts:  opts.Accounts,
		window:    opts.Window,
		compiler:  opts.Compiler,
		log:       opts.Log,
		after:     opts.AfterSync,
		trigger:   make(chan struct{}, 1),
		closeChan: make(chan struct{}),
	}
}

// Store returns the underlying store.
func (s *Syncer) Store() store.Store {
	return s.store
}

// Compiler returns the compiler used by sync cycles.
func (s *Syncer) Compiler() *extractor.Compiler {
	return s.compiler
}

// Accounts returns the stored accounts, or the configured ones when none are stored.
func (s *Syncer) Accounts(ctx context.Context) ([]common.Account, error) {
	accounts, err := store.Load[common.Account](ctx, s.store, store.KeyAccounts)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return s.accounts, nil
	}
	return accounts, nil
}

// Sync compiles every stored message and merges the result into the stored
// transactions. Running it again over the same messages adds nothing.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync(ctx)
}

func (s *Syncer) sync(ctx context.Context) (Result, error) {
	start := time.Now()

	messages, err := store.Load[common.Message](ctx, s.store, store.KeyMessages)
	if err != nil {
		return Result{}, err
	}
	accounts, err := s.Accounts(ctx)
	if err != nil {
		return Result{}, err
	}
	existing, err := store.Load[common.Transaction](ctx, s.store, store.KeyTransactions)
	if err != nil {
		return Result{}, err
	}

	candidates := s.compiler.Compile(messages, accounts)
	merged := reconcile.MergeReport(candidates, existing, s.window)

	res := Result{
		Messages: len(messages),
		Compiled: len(candidates),
		Added:    merged.Added,
		Skipped:  merged.Skipped,
		Total:    len(merged.Transactions),
	}

	if merged.Added > 0 {
		if err := store.Save(ctx, s.store, store.KeyTransactions, merged.Transactions); err != nil {
			return res, err
		}
	}

	if s.after != nil {
		if err := s.after(ctx, accounts, merged.Transactions); err != nil {
			return res, fmt.Errorf("failed to run post-sync hook: %w", err)
		}
	}

	s.log.Info().
		Int("messages", res.Messages).
		Int("compiled", res.Compiled).
		Int("added", res.Added).
		Int("skipped", res.Skipped).
		Dur("took", time.Since(start)).
		Msg("sync complete")
	return res, nil
}

// AddMessages appends messages whose id is not stored yet and returns how
// many were appended.
func (s *Syncer) AddMessages(ctx context.Context, messages []common.Message) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addMessages(ctx, messages)
}

func (s *Syncer) addMessages(ctx context.Context, messages []common.Message) (int, error) {
	stored, err := store.Load[common.Message](ctx, s.store, store.KeyMessages)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(stored))
	for _, m := range stored {
		seen[m.ID] = true
	}

	added := 0
	for _, m := range messages {
		if m.ID == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		stored = append(stored, m)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := store.Save(ctx, s.store, store.KeyMessages, stored); err != nil {
		return 0, err
	}
	return added, nil
}

// AddMessage appends one message and runs a cycle in the same critical section.
func (s *Syncer) AddMessage(ctx context.Context, message common.Message) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.addMessages(ctx, []common.Message{message}); err != nil {
		return Result{}, err
	}
	return s.sync(ctx)
}

// AddTransaction stores a manually entered transaction unless it duplicates
// a stored one.
func (s *Syncer) AddTransaction(ctx context.Context, tx common.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := store.Load[common.Transaction](ctx, s.store, store.KeyTransactions)
	if err != nil {
		return false, err
	}
	merged, added := reconcile.Add(tx, existing)
	if !added {
		return false, nil
	}
	return true, store.Save(ctx, s.store, store.KeyTransactions, merged)
}

// Recompile extracts the transaction with id again from its source message
// and replaces it in place. Category, remarks, id and creation time are kept.
// The returned bool is false when the message no longer yields a transaction,
// in which case nothing is written.
func (s *Syncer) Recompile(ctx context.Context, id string) (common.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions, err := store.Load[common.Transaction](ctx, s.store, store.KeyTransactions)
	if err != nil {
		return common.Transaction{}, false, err
	}
	idx := -1
	for i, tx := range transactions {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return common.Transaction{}, false, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	existing := transactions[idx]

	messages, err := store.Load[common.Message](ctx, s.store, store.KeyMessages)
	if err != nil {
		return common.Transaction{}, false, err
	}
	var source *common.Message
	for i := range messages {
		if existing.MessageID != "" && messages[i].ID == existing.MessageID {
			source = &messages[i]
			break
		}
	}
	if source == nil {
		return common.Transaction{}, false, fmt.Errorf("%w: %s", ErrMessageNotFound, existing.MessageID)
	}

	accounts, err := s.Accounts(ctx)
	if err != nil {
		return common.Transaction{}, false, err
	}
	account, ok := extractor.MatchAccount(*source, accounts)
	if !ok {
		return common.Transaction{}, false, nil
	}
	tx, ok := s.compiler.Recompile(*source, account, &existing)
	if !ok {
		return common.Transaction{}, false, nil
	}

	transactions[idx] = tx
	if err := store.Save(ctx, s.store, store.KeyTransactions, transactions); err != nil {
		return common.Transaction{}, false, err
	}
	s.log.Info().Str("transaction", id).Str("message", source.ID).Msg("transaction recompiled")
	return tx, true, nil
}

// Transactions returns the stored transactions.
func (s *Syncer) Transactions(ctx context.Context) ([]common.Transaction, error) {
	return store.Load[common.Transaction](ctx, s.store, store.KeyTransactions)
}

// Categories returns the stored categories.
func (s *Syncer) Categories(ctx context.Context) ([]common.Category, error) {
	return store.Load[common.Category](ctx, s.store, store.KeyCategories)
}

// Export snapshots every key under the sync lock.
func (s *Syncer) Export(ctx context.Context) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Export(ctx, s.store)
}

// Import replaces the keys present in doc under the sync lock.
func (s *Syncer) Import(ctx context.Context, doc store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Import(ctx, s.store, doc)
}
