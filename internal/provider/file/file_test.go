package file

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kopilka/internal/core"
	"kopilka/internal/provider"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), DefaultFilename))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestEmptyLedgerDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	accounts, err := s.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts() error = %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("fresh store has %d accounts, want 0", len(accounts))
	}

	def, err := s.DefaultCurrency(ctx)
	if err != nil {
		t.Fatalf("DefaultCurrency() error = %v", err)
	}
	if def != core.FallbackCurrency {
		t.Errorf("DefaultCurrency = %s, want %s", def, core.FallbackCurrency)
	}
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.AddAccount(ctx, core.Account{Name: "Wallet", Type: core.AccountCash})
	if err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("AddAccount() assigned no id")
	}
	if created.Currency != core.FallbackCurrency {
		t.Errorf("Currency = %s, want default %s", created.Currency, core.FallbackCurrency)
	}

	created.Name = "Main Wallet"
	if err := s.UpdateAccount(ctx, created); err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}

	accounts, _ := s.Accounts(ctx)
	if len(accounts) != 1 || accounts[0].Name != "Main Wallet" {
		t.Errorf("accounts = %v, want the renamed wallet", accounts)
	}

	if err := s.UpdateAccount(ctx, core.Account{ID: "missing", Name: "X"}); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("update of missing account = %v, want ErrAccountNotFound", err)
	}

	if err := s.DeleteAccount(ctx, created.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	accounts, _ = s.Accounts(ctx)
	if len(accounts) != 0 {
		t.Errorf("accounts after delete = %v, want empty", accounts)
	}
}

func TestDeleteAccountCascadesBothLegs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.AddAccount(ctx, core.Account{Name: "A"})
	b, _ := s.AddAccount(ctx, core.Account{Name: "B"})

	if _, err := s.AddTransaction(ctx, core.Transaction{
		Type: core.Income, Amount: 1000, AccountID: a.ID, Date: "2026-08-01T10:00:00Z",
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if _, err := s.AddTransfer(ctx, provider.TransferRequest{FromID: a.ID, ToID: b.ID, Amount: 500}); err != nil {
		t.Fatalf("AddTransfer() error = %v", err)
	}
	if _, err := s.AddTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: 200, AccountID: b.ID, Date: "2026-08-02T10:00:00Z",
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	// Deleting B removes its expense and the transfer into it, leaving only
	// A's income.
	if err := s.DeleteAccount(ctx, b.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	txs, _ := s.Transactions(ctx)
	if len(txs) != 1 || txs[0].Type != core.Income {
		t.Errorf("transactions after cascade = %v, want only A's income", txs)
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.AddAccount(ctx, core.Account{Name: "A"})
	food, _ := s.AddCategory(ctx, core.Category{Name: "Продукты", Type: core.Expense})

	if _, err := s.AddTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: 300, AccountID: a.ID, CategoryID: food.ID,
		Date: "2026-08-01T10:00:00Z",
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if _, err := s.AddTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: 100, AccountID: a.ID, Date: "2026-08-02T10:00:00Z",
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	if err := s.DeleteCategory(ctx, food.ID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	txs, _ := s.Transactions(ctx)
	if len(txs) != 1 || txs[0].Amount != 100 {
		t.Errorf("transactions after cascade = %v, want only the uncategorized one", txs)
	}
}

func TestCategoriesTypeFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.AddCategory(ctx, core.Category{Name: "Продукты", Type: core.Expense})
	s.AddCategory(ctx, core.Category{Name: "Зарплата", Type: core.Income})

	expense, err := s.Categories(ctx, core.Expense)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(expense) != 1 || expense[0].Type != core.Expense {
		t.Errorf("expense categories = %v", expense)
	}

	all, _ := s.Categories(ctx, "")
	if len(all) != 2 {
		t.Errorf("all categories = %d, want 2", len(all))
	}
}

func TestTransactionNormalizationOnWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.AddAccount(ctx, core.Account{Name: "Wallet", Currency: "EUR"})
	cat, _ := s.AddCategory(ctx, core.Category{Name: "Кафе", Type: core.Expense})

	created, err := s.AddTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: 500, AccountID: a.ID, CategoryID: cat.ID,
		Currency: "XXX", // overwritten by the account snapshot
		Date:     "2026-08-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if created.Currency != "EUR" {
		t.Errorf("Currency = %s, want EUR from account", created.Currency)
	}
	if created.AccountName != "Wallet" || created.CategoryName != "Кафе" {
		t.Errorf("snapshots = %q/%q, want Wallet/Кафе", created.AccountName, created.CategoryName)
	}

	// Update keeps the id and re-normalizes.
	created.Amount = 900
	if err := s.UpdateTransaction(ctx, created); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	txs, _ := s.Transactions(ctx)
	if len(txs) != 1 || txs[0].ID != created.ID || txs[0].Amount != 900 {
		t.Errorf("after update = %v", txs)
	}

	if err := s.UpdateTransaction(ctx, core.Transaction{ID: "missing", Type: core.Expense, Amount: 1, AccountID: a.ID, Date: "2026-08-01T10:00:00Z"}); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("update of missing transaction = %v, want ErrTransactionNotFound", err)
	}
}

func TestPersistenceAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := first.SetDefaultCurrency(ctx, "USD"); err != nil {
		t.Fatalf("SetDefaultCurrency() error = %v", err)
	}
	a, _ := first.AddAccount(ctx, core.Account{Name: "Wallet"})

	second, err := New(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	def, _ := second.DefaultCurrency(ctx)
	if def != "USD" {
		t.Errorf("DefaultCurrency after reopen = %s, want USD", def)
	}
	accounts, _ := second.Accounts(ctx)
	if len(accounts) != 1 || accounts[0].ID != a.ID {
		t.Errorf("accounts after reopen = %v", accounts)
	}
	if accounts[0].Currency != "USD" {
		t.Errorf("account currency = %s, want the USD default", accounts[0].Currency)
	}
}

func TestSnapshotReturnsWholeLedger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.AddAccount(ctx, core.Account{Name: "Wallet"})
	s.AddCategory(ctx, core.Category{Name: "Продукты", Type: core.Expense})
	s.AddTransaction(ctx, core.Transaction{Type: core.Income, Amount: 100, AccountID: a.ID, Date: "2026-08-01T10:00:00Z"})

	data, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(data.Accounts) != 1 || len(data.Categories) != 1 || len(data.Transactions) != 1 {
		t.Errorf("snapshot = %d/%d/%d entities, want 1/1/1",
			len(data.Accounts), len(data.Categories), len(data.Transactions))
	}
}
