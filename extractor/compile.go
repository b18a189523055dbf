// Package extractor turns raw bank notifications into transactions using the
// regex templates configured on each account.
package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

// DefaultPatternExpiry is how long a compiled template stays cached.
const DefaultPatternExpiry = 30 * time.Minute

// Compiler matches messages to accounts and builds candidate transactions.
type Compiler struct {
	Patterns *Patterns
	Now      func() time.Time
	NewID    func() string
	// Workers > 1 compiles messages concurrently. Output order is unchanged.
	Workers int
	Log     zerolog.Logger
}

func NewCompiler(logger zerolog.Logger) *Compiler {
	return &Compiler{
		Patterns: NewPatterns(DefaultPatternExpiry, logger),
		Now:      time.Now,
		NewID:    NewTransactionID,
		Workers:  1,
		Log:      logger,
	}
}

// NewTransactionID returns txn_<unix millis>_<uuid>.
func NewTransactionID() string {
	return fmt.Sprintf("txn_%d_%s", time.Now().UnixMilli(), uuid.NewString())
}

// Compile uses a compiler that logs through the global zerolog logger.
func Compile(messages []common.Message, accounts []common.Account) []common.Transaction {
	return NewCompiler(log.Logger).Compile(messages, accounts)
}

// Compile returns one transaction per message that belongs to an account and
// matches one of its templates, in message order. For each message the first
// account whose SenderID is contained in the sender is used, and within that
// account the first template that matches (with a parseable amount) wins.
// Matches missing the amount, date or time are discarded.
// The result is not deduplicated.
func (c *Compiler) Compile(messages []common.Message, accounts []common.Account) []common.Transaction {
	var compiled []*common.Transaction
	if c.Workers > 1 {
		mapper := iter.Mapper[common.Message, *common.Transaction]{MaxGoroutines: c.Workers}
		compiled = mapper.Map(messages, func(m *common.Message) *common.Transaction {
			return c.compileOne(*m, accounts)
		})
	} else {
		compiled = make([]*common.Transaction, 0, len(messages))
		for _, m := range messages {
			compiled = append(compiled, c.compileOne(m, accounts))
		}
	}

	transactions := []common.Transaction{}
	for _, tx := range compiled {
		if tx != nil {
			transactions = append(transactions, *tx)
		}
	}

	c.Log.Debug().Int("messages", len(messages)).Int("transactions", len(transactions)).Msg("compiled messages")
	return transactions
}

func (c *Compiler) compileOne(message common.Message, accounts []common.Account) *common.Transaction {
	account, ok := MatchAccount(message, accounts)
	if !ok {
		c.Log.Debug().Str("message", message.ID).Str("sender", message.Sender).Msg("no account for sender")
		return nil
	}
	tx, ok := c.CompileMessage(message, account)
	if !ok {
		return nil
	}
	return &tx
}

// MatchAccount returns the first account whose SenderID is a substring of the
// message sender.
func MatchAccount(message common.Message, accounts []common.Account) (common.Account, bool) {
	for _, account := range accounts {
		if strings.Contains(message.Sender, account.SenderID) {
			return account, true
		}
	}
	return common.Account{}, false
}

// CompileMessage extracts a transaction from one message using one account.
func (c *Compiler) CompileMessage(message common.Message, account common.Account) (common.Transaction, bool) {
	var fields Fields
	matched := c.Patterns.each(message.Body, account, func(pattern string, groups map[string]string) bool {
		f, err := Normalize(groups)
		if err != nil {
			c.Log.Debug().Err(err).Str("message", message.ID).Str("pattern", pattern).Msg("template matched but fields did not normalize")
			return false
		}
		fields = f
		return true
	})
	if !matched {
		c.Log.Debug().Str("message", message.ID).Str("account", account.ID).Msg("no template matched")
		return common.Transaction{}, false
	}

	// Templates only describe spend alerts for now.
	txType := common.TransactionTypeDebit

	if !fields.Complete() || txType == "" {
		c.Log.Debug().Str("message", message.ID).Str("account", account.ID).Msg("discarding partial extraction")
		return common.Transaction{}, false
	}

	tx := common.Transaction{
		ID:        c.NewID(),
		MessageID: message.ID,
		CreatedAt: c.Now().UTC(),
		Account:   account.ID,
		Amount:    fields.Amount,
		Date:      fields.Date,
		Time:      fields.Time,
		Type:      txType,
		Purpose:   fields.Purpose,
		Category:  common.DefaultCategory,
	}
	return tx, true
}

// Recompile extracts a transaction from a single message. When existing is
// set the result keeps its identity and the fields a user may have edited.
func (c *Compiler) Recompile(message common.Message, account common.Account, existing *common.Transaction) (common.Transaction, bool) {
	tx, ok := c.CompileMessage(message, account)
	if !ok {
		return common.Transaction{}, false
	}
	if existing != nil {
		tx.ID = existing.ID
		tx.Category = existing.Category
		tx.CreatedAt = existing.CreatedAt
		tx.Remarks = existing.Remarks
	}
	return tx, true
}
