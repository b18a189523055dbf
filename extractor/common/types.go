package common

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeSavings    AccountType = "Savings"
	AccountTypeCreditCard AccountType = "Credit Card"
	AccountTypeLoan       AccountType = "Loan"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Valid reports whether t is credit or debit.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// DefaultCategory is assigned to every compiled transaction.
const DefaultCategory = "Others"

// Message is a captured notification. Timestamp is epoch millis.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
}

// Account carries the extraction templates for one financial source.
// MessageRegex is ordered; the first template that matches wins.
type Account struct {
	ID                    string      `json:"id" mapstructure:"id"`
	SenderID              string      `json:"senderID" mapstructure:"sender_id"`
	AccountNumberEndsWith string      `json:"accountNumberEndsWith" mapstructure:"account_number_ends_with"`
	MessageRegex          []string    `json:"messageRegex" mapstructure:"message_regex"`
	BankName              string      `json:"bankName" mapstructure:"bank_name"`
	AccountType           AccountType `json:"accountType" mapstructure:"account_type"`
}

type Transaction struct {
	ID        string              `json:"id"`
	MessageID string              `json:"messageId"`
	CreatedAt time.Time           `json:"createdAt"`
	Account   string              `json:"account"`
	Amount    decimal.NullDecimal `json:"amount"`
	Date      string              `json:"date"`
	Time      string              `json:"time"`
	Type      TransactionType     `json:"type"`
	Purpose   string              `json:"purpose"`
	Category  string              `json:"category"`
	Remarks   string              `json:"remarks,omitempty"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}
