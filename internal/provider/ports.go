// Package provider defines the storage-agnostic ledger data contract and the
// factory that selects a concrete backend at startup.
package provider

import (
	"context"

	"kopilka/internal/core"
)

// Ports for ledger storage backends. Updates are full replacements by id;
// deletes cascade as described on each method.
type (
	AccountStore interface {
		Accounts(ctx context.Context) ([]core.Account, error)
		AddAccount(ctx context.Context, a core.Account) (core.Account, error)
		UpdateAccount(ctx context.Context, a core.Account) error
		// DeleteAccount removes the account and every transaction touching
		// it as source or transfer destination.
		DeleteAccount(ctx context.Context, id string) error
	}

	CategoryStore interface {
		// Categories lists categories, optionally filtered by type
		// (income or expense); the zero value lists all.
		Categories(ctx context.Context, typ core.TransactionType) ([]core.Category, error)
		AddCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) error
		// DeleteCategory removes the category and every transaction
		// referencing it.
		DeleteCategory(ctx context.Context, id string) error
	}

	TransactionStore interface {
		Transactions(ctx context.Context) ([]core.Transaction, error)
		// AddTransaction stamps the denormalized currency and name
		// snapshots from the source account before persisting.
		AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		// AddTransfer validates and records a same-currency movement
		// between two owned accounts as a single transfer transaction.
		AddTransfer(ctx context.Context, req TransferRequest) (core.Transaction, error)
	}

	SettingsStore interface {
		DefaultCurrency(ctx context.Context) (string, error)
		SetDefaultCurrency(ctx context.Context, currency string) error
	}

	// Provider is the unified contract the rest of the application sees.
	Provider interface {
		AccountStore
		CategoryStore
		TransactionStore
		SettingsStore
	}
)

// TransferRequest carries the combined transfer operation's input.
type TransferRequest struct {
	FromID  string     `json:"fromId"`
	ToID    string     `json:"toId"`
	Amount  core.Money `json:"amount"`
	Comment string     `json:"comment,omitempty"`
	Date    string     `json:"date,omitempty"`
}

// CleanupFunc releases a backend's resources.
type CleanupFunc func() error

// Result bundles a ready provider with its optional cleanup.
type Result struct {
	Provider Provider
	Cleanup  CleanupFunc
}
