package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	AccountCash  AccountType = "cash"
	AccountCard  AccountType = "card"
	AccountOther AccountType = "other"
)

type (
	TransactionType string

	AccountType string

	// Money is an amount in minor currency units (kopecks, cents).
	// Balances are signed; transaction amounts are strictly positive.
	Money int64

	Account struct {
		ID       string      `json:"id"`
		Type     AccountType `json:"type"`
		Name     string      `json:"name"`
		Currency string      `json:"currency"`
	}

	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"` // income or expense, never transfer
		Color string          `json:"color"`
		Icon  string          `json:"icon"`
	}

	// Transaction is a single ledger entry. Currency, AccountName and
	// CategoryName are denormalized snapshots taken at write time; they are
	// never re-derived from the live account or category, so editing an
	// account's currency does not rewrite history.
	Transaction struct {
		ID           string          `json:"id"`
		Type         TransactionType `json:"type"`
		Amount       Money           `json:"amount"`
		Currency     string          `json:"currency"`
		AccountID    string          `json:"accountId"`
		AccountName  string          `json:"accountName"`
		CategoryID   string          `json:"categoryId"`
		CategoryName string          `json:"categoryName"`
		ToID         string          `json:"toId,omitempty"`
		Comment      string          `json:"comment,omitempty"`
		Date         string          `json:"date"` // RFC 3339 timestamp
	}

	// FinanceData is the aggregate root: one user's whole ledger.
	FinanceData struct {
		Accounts        []Account     `json:"accounts"`
		Categories      []Category    `json:"categories"`
		Transactions    []Transaction `json:"transactions"`
		DefaultCurrency string        `json:"defaultCurrency,omitempty"`
	}
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrEmptyName           = errors.New("empty name")
	ErrMissingAccount      = errors.New("missing account id")
	ErrMissingDate         = errors.New("missing date")
	ErrInvalidDate         = errors.New("invalid date")
	ErrSameAccount         = errors.New("transfer source and destination are the same account")
	ErrCurrencyMismatch    = errors.New("transfer accounts must share a currency")
	ErrTransferCategory    = errors.New("transfer must not carry a category")
	ErrTransferDestination = errors.New("transfer requires a destination account")
	ErrUnexpectedToID      = errors.New("only transfers may set a destination account")

	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	default:
		return false
	}
}

// Valid accepts the empty string: accounts may carry no declared type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountCard, AccountOther, "":
		return true
	default:
		return false
	}
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Type != Income && c.Type != Expense {
		return ErrInvalidType
	}
	return nil
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	if tx.AccountID == "" {
		return ErrMissingAccount
	}
	if tx.Date == "" {
		return ErrMissingDate
	}
	if _, err := time.Parse(time.RFC3339, tx.Date); err != nil {
		return ErrInvalidDate
	}
	if tx.Type == Transfer {
		if tx.ToID == "" {
			return ErrTransferDestination
		}
		if tx.ToID == tx.AccountID {
			return ErrSameAccount
		}
		if tx.CategoryID != "" || tx.CategoryName != "" {
			return ErrTransferCategory
		}
		return nil
	}
	if tx.ToID != "" {
		return ErrUnexpectedToID
	}
	return nil
}

// NewTransfer builds a transfer transaction between two owned accounts.
// Both accounts must exist and share a currency; the amount must be
// positive. The caller assigns the ID.
func NewTransfer(from, to *Account, amount Money, comment, date, defaultCurrency string) (Transaction, error) {
	if from == nil || to == nil {
		return Transaction{}, ErrAccountNotFound
	}
	if from.ID == to.ID {
		return Transaction{}, ErrSameAccount
	}
	if from.Currency != to.Currency {
		return Transaction{}, ErrCurrencyMismatch
	}
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	currency := from.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	if comment == "" {
		comment = "Transfer between accounts"
	}
	if date == "" {
		date = time.Now().UTC().Format(time.RFC3339)
	}
	return Transaction{
		Type:        Transfer,
		Amount:      amount,
		Currency:    currency,
		AccountID:   from.ID,
		AccountName: from.Name,
		ToID:        to.ID,
		Comment:     comment,
		Date:        date,
	}, nil
}

// FindAccount returns the account with the given id, or nil.
func FindAccount(accounts []Account, id string) *Account {
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i]
		}
	}
	return nil
}

// FindCategory returns the category with the given id, or nil.
func FindCategory(categories []Category, id string) *Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}
