// Package file persists the whole ledger as a single JSON document on disk,
// the local counterpart of the remote API backend. Writes replace the whole
// document; concurrent writers are last-writer-wins, there is no versioning.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"kopilka/internal/core"
	"kopilka/internal/provider"
)

// DefaultFilename matches the storage key the original browser client used.
const DefaultFilename = "finance_data.json"

// Store reads and writes a FinanceData document under a single mutex.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ provider.Provider = (*Store)(nil)

func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{path: path}, nil
}

// load returns the current document, or an empty ledger with the fallback
// currency when no file exists yet.
func (s *Store) load() (core.FinanceData, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.FinanceData{
			Accounts:        []core.Account{},
			Categories:      []core.Category{},
			Transactions:    []core.Transaction{},
			DefaultCurrency: core.FallbackCurrency,
		}, nil
	}
	if err != nil {
		return core.FinanceData{}, fmt.Errorf("read ledger file: %w", err)
	}
	var data core.FinanceData
	if err := json.Unmarshal(raw, &data); err != nil {
		return core.FinanceData{}, fmt.Errorf("decode ledger file: %w", err)
	}
	return data, nil
}

// save writes the document atomically: temp file in the same directory, then
// rename over the target.
func (s *Store) save(data core.FinanceData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close temp ledger file: %w", err)
	}
	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *Store) Accounts(context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data.Accounts, nil
}

func (s *Store) AddAccount(_ context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return core.Account{}, err
	}
	a.ID = uuid.NewString()
	if a.Currency == "" {
		a.Currency = orFallback(data.DefaultCurrency)
	}
	data.Accounts = append(data.Accounts, a)
	if err := s.save(data); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	found := false
	for i := range data.Accounts {
		if data.Accounts[i].ID == a.ID {
			data.Accounts[i] = a
			found = true
			break
		}
	}
	if !found {
		return core.ErrAccountNotFound
	}
	return s.save(data)
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	accounts := data.Accounts[:0]
	for _, a := range data.Accounts {
		if a.ID != id {
			accounts = append(accounts, a)
		}
	}
	data.Accounts = accounts

	// Cascade: drop every transaction touching the account on either leg.
	txs := data.Transactions[:0]
	for _, tx := range data.Transactions {
		if tx.AccountID != id && tx.ToID != id {
			txs = append(txs, tx)
		}
	}
	data.Transactions = txs
	return s.save(data)
}

func (s *Store) Categories(_ context.Context, typ core.TransactionType) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return data.Categories, nil
	}
	out := make([]core.Category, 0, len(data.Categories))
	for _, c := range data.Categories {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) AddCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return core.Category{}, err
	}
	c.ID = uuid.NewString()
	data.Categories = append(data.Categories, c)
	if err := s.save(data); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	found := false
	for i := range data.Categories {
		if data.Categories[i].ID == c.ID {
			data.Categories[i] = c
			found = true
			break
		}
	}
	if !found {
		return core.ErrCategoryNotFound
	}
	return s.save(data)
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	categories := data.Categories[:0]
	for _, c := range data.Categories {
		if c.ID != id {
			categories = append(categories, c)
		}
	}
	data.Categories = categories

	// Cascade: transactions of a deleted category go with it.
	txs := data.Transactions[:0]
	for _, tx := range data.Transactions {
		if tx.CategoryID != id {
			txs = append(txs, tx)
		}
	}
	data.Transactions = txs
	return s.save(data)
}

func (s *Store) Transactions(context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data.Transactions, nil
}

func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return core.Transaction{}, err
	}
	tx, err = core.NormalizeTransaction(tx, data.Accounts, data.Categories, data.DefaultCurrency)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()
	data.Transactions = append(data.Transactions, tx)
	if err := s.save(data); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	idx := -1
	for i := range data.Transactions {
		if data.Transactions[i].ID == tx.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrTransactionNotFound
	}
	id := tx.ID
	tx, err = core.NormalizeTransaction(tx, data.Accounts, data.Categories, data.DefaultCurrency)
	if err != nil {
		return err
	}
	tx.ID = id
	data.Transactions[idx] = tx
	return s.save(data)
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	txs := data.Transactions[:0]
	for _, tx := range data.Transactions {
		if tx.ID != id {
			txs = append(txs, tx)
		}
	}
	data.Transactions = txs
	return s.save(data)
}

func (s *Store) AddTransfer(_ context.Context, req provider.TransferRequest) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return core.Transaction{}, err
	}
	from := core.FindAccount(data.Accounts, req.FromID)
	to := core.FindAccount(data.Accounts, req.ToID)
	tx, err := core.NewTransfer(from, to, req.Amount, req.Comment, req.Date, orFallback(data.DefaultCurrency))
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()
	data.Transactions = append(data.Transactions, tx)
	if err := s.save(data); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) DefaultCurrency(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", err
	}
	return data.DefaultCurrency, nil
}

func (s *Store) SetDefaultCurrency(_ context.Context, currency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data.DefaultCurrency = currency
	return s.save(data)
}

// Snapshot returns the whole ledger document, used by the snapshot worker.
func (s *Store) Snapshot(context.Context) (core.FinanceData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func orFallback(currency string) string {
	if currency == "" {
		return core.FallbackCurrency
	}
	return currency
}
