// Package storage implements the ledger provider on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kopilka/internal/core"
	"kopilka/internal/provider"
)

// ChangePublisher receives a notification after every successful write.
// Publishing is best-effort: failures are logged, never surfaced to the
// caller, the local write already succeeded.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, entity, op, id string) error
}

type SQLiteRepository struct {
	db        *sql.DB
	publisher ChangePublisher
}

var _ provider.Provider = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, publisher ChangePublisher) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, publisher: publisher}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) notify(ctx context.Context, entity, op, id string) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishLedgerChange(ctx, entity, op, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"entity", entity, "op", op, "id", id, "error", err)
	}
}

func (r *SQLiteRepository) Accounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, name, currency FROM accounts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Type, &a.Name, &a.Currency); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if a.Currency == "" {
		def, err := r.DefaultCurrency(ctx)
		if err != nil {
			return core.Account{}, err
		}
		if def == "" {
			def = core.FallbackCurrency
		}
		a.Currency = def
	}
	a.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, type, name, currency) VALUES (?, ?, ?, ?)`,
		a.ID, a.Type, a.Name, a.Currency)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	r.notify(ctx, "account", "create", a.ID)
	return a, nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET type = ?, name = ?, currency = ? WHERE id = ?`,
		a.Type, a.Name, a.Currency, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrAccountNotFound
	}
	r.notify(ctx, "account", "update", a.ID)
	return nil
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete account: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	// Cascade both legs.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE account_id = ? OR to_id = ?`, id, id); err != nil {
		return fmt.Errorf("delete account transactions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete account: %w", err)
	}
	r.notify(ctx, "account", "delete", id)
	return nil
}

func (r *SQLiteRepository) Categories(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	query := `SELECT id, name, type, color, icon FROM categories`
	args := []any{}
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, typ)
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, color, icon) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Type, c.Color, c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	r.notify(ctx, "category", "create", c.ID)
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, color = ?, icon = ? WHERE id = ?`,
		c.Name, c.Type, c.Color, c.Icon, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrCategoryNotFound
	}
	r.notify(ctx, "category", "update", c.ID)
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("delete category transactions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete category: %w", err)
	}
	r.notify(ctx, "category", "delete", id)
	return nil
}

func (r *SQLiteRepository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount, currency, account_id, account_name,
		        category_id, category_name, to_id, comment, date
		   FROM transactions ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Currency, &t.AccountID,
			&t.AccountName, &t.CategoryID, &t.CategoryName, &t.ToID, &t.Comment, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	accounts, err := r.Accounts(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	categories, err := r.Categories(ctx, "")
	if err != nil {
		return core.Transaction{}, err
	}
	def, err := r.DefaultCurrency(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	tx, err = core.NormalizeTransaction(tx, accounts, categories, def)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()
	if err := r.insertTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID, "type", tx.Type, "amount", int64(tx.Amount), "currency", tx.Currency)
	r.notify(ctx, "transaction", "create", tx.ID)
	return tx, nil
}

func (r *SQLiteRepository) insertTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions
		    (id, type, amount, currency, account_id, account_name,
		     category_id, category_name, to_id, comment, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Type, tx.Amount, tx.Currency, tx.AccountID, tx.AccountName,
		tx.CategoryID, tx.CategoryName, tx.ToID, tx.Comment, tx.Date)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	accounts, err := r.Accounts(ctx)
	if err != nil {
		return err
	}
	categories, err := r.Categories(ctx, "")
	if err != nil {
		return err
	}
	def, err := r.DefaultCurrency(ctx)
	if err != nil {
		return err
	}

	id := tx.ID
	tx, err = core.NormalizeTransaction(tx, accounts, categories, def)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		    SET type = ?, amount = ?, currency = ?, account_id = ?, account_name = ?,
		        category_id = ?, category_name = ?, to_id = ?, comment = ?, date = ?
		  WHERE id = ?`,
		tx.Type, tx.Amount, tx.Currency, tx.AccountID, tx.AccountName,
		tx.CategoryID, tx.CategoryName, tx.ToID, tx.Comment, tx.Date, id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrTransactionNotFound
	}
	r.notify(ctx, "transaction", "update", id)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	r.notify(ctx, "transaction", "delete", id)
	return nil
}

func (r *SQLiteRepository) AddTransfer(ctx context.Context, req provider.TransferRequest) (core.Transaction, error) {
	accounts, err := r.Accounts(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	def, err := r.DefaultCurrency(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	if def == "" {
		def = core.FallbackCurrency
	}

	from := core.FindAccount(accounts, req.FromID)
	to := core.FindAccount(accounts, req.ToID)
	tx, err := core.NewTransfer(from, to, req.Amount, req.Comment, req.Date, def)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()
	if err := r.insertTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transfer saved",
		"id", tx.ID, "from", tx.AccountID, "to", tx.ToID, "amount", int64(tx.Amount))
	r.notify(ctx, "transaction", "create", tx.ID)
	return tx, nil
}

func (r *SQLiteRepository) DefaultCurrency(ctx context.Context) (string, error) {
	var currency string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'default_currency'`).Scan(&currency)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read default currency: %w", err)
	}
	return currency, nil
}

func (r *SQLiteRepository) SetDefaultCurrency(ctx context.Context, currency string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ('default_currency', ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, currency)
	if err != nil {
		return fmt.Errorf("set default currency: %w", err)
	}
	r.notify(ctx, "settings", "update", "default_currency")
	return nil
}

// Snapshot assembles the whole ledger document, used by the snapshot worker.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.FinanceData, error) {
	accounts, err := r.Accounts(ctx)
	if err != nil {
		return core.FinanceData{}, err
	}
	categories, err := r.Categories(ctx, "")
	if err != nil {
		return core.FinanceData{}, err
	}
	txs, err := r.Transactions(ctx)
	if err != nil {
		return core.FinanceData{}, err
	}
	def, err := r.DefaultCurrency(ctx)
	if err != nil {
		return core.FinanceData{}, err
	}
	return core.FinanceData{
		Accounts:        accounts,
		Categories:      categories,
		Transactions:    txs,
		DefaultCurrency: def,
	}, nil
}
