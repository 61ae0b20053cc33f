// Package rest implements the ledger provider against a remote HTTP API
// speaking the same JSON surface this service exposes.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"kopilka/internal/core"
	"kopilka/internal/provider"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

var _ provider.Provider = (*Client)(nil)

func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("rest client: empty base URL")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

// do runs one JSON request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return notFoundError(path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: unexpected status %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// notFoundError maps a 404 back to the sentinel for the resource the path
// addresses so callers can match with errors.Is across backends.
func notFoundError(path string) error {
	switch {
	case strings.Contains(path, "/accounts/"):
		return core.ErrAccountNotFound
	case strings.Contains(path, "/categories/"):
		return core.ErrCategoryNotFound
	case strings.Contains(path, "/transactions/"):
		return core.ErrTransactionNotFound
	}
	return fmt.Errorf("remote: %s not found", path)
}

func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	var out []core.Account
	if err := c.do(ctx, http.MethodGet, "/api/accounts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	var out core.Account
	if err := c.do(ctx, http.MethodPost, "/api/accounts", a, &out); err != nil {
		return core.Account{}, err
	}
	return out, nil
}

func (c *Client) UpdateAccount(ctx context.Context, a core.Account) error {
	return c.do(ctx, http.MethodPut, "/api/accounts/"+url.PathEscape(a.ID), a, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/accounts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Categories(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	path := "/api/categories"
	if typ != "" {
		path += "?type=" + url.QueryEscape(string(typ))
	}
	var out []core.Category
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	var out core.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", cat, &out); err != nil {
		return core.Category{}, err
	}
	return out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, cat core.Category) error {
	return c.do(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(cat.ID), cat, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, http.MethodPost, "/api/transactions", tx, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	return c.do(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(tx.ID), tx, nil)
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddTransfer(ctx context.Context, req provider.TransferRequest) (core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, http.MethodPost, "/api/transfers", req, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

func (c *Client) DefaultCurrency(ctx context.Context) (string, error) {
	var out struct {
		DefaultCurrency string `json:"defaultCurrency"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/settings/defaultCurrency", nil, &out); err != nil {
		return "", err
	}
	return out.DefaultCurrency, nil
}

func (c *Client) SetDefaultCurrency(ctx context.Context, currency string) error {
	in := struct {
		DefaultCurrency string `json:"defaultCurrency"`
	}{DefaultCurrency: currency}
	return c.do(ctx, http.MethodPut, "/api/settings/defaultCurrency", in, nil)
}

// Snapshot fetches all four collections concurrently and assembles the
// ledger document.
func (c *Client) Snapshot(ctx context.Context) (core.FinanceData, error) {
	var data core.FinanceData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		accounts, err := c.Accounts(ctx)
		if err != nil {
			return err
		}
		data.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		categories, err := c.Categories(ctx, "")
		if err != nil {
			return err
		}
		data.Categories = categories
		return nil
	})
	g.Go(func() error {
		txs, err := c.Transactions(ctx)
		if err != nil {
			return err
		}
		data.Transactions = txs
		return nil
	})
	g.Go(func() error {
		def, err := c.DefaultCurrency(ctx)
		if err != nil {
			return err
		}
		data.DefaultCurrency = def
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.FinanceData{}, fmt.Errorf("fetch remote ledger: %w", err)
	}
	return data, nil
}
