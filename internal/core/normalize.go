package core

import "time"

// FallbackCurrency is used when neither the account nor the ledger settings
// declare one.
const FallbackCurrency = "RUB"

// NormalizeTransaction stamps the write-time snapshots onto a transaction:
// currency and account name from the source account (falling back to the
// ledger default currency), category name from the referenced category. The
// source account must exist. Non-transfers get an empty destination. The
// result is validated before being returned.
func NormalizeTransaction(tx Transaction, accounts []Account, categories []Category, defaultCurrency string) (Transaction, error) {
	acc := FindAccount(accounts, tx.AccountID)
	if acc == nil {
		return Transaction{}, ErrAccountNotFound
	}

	currency := acc.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	if currency == "" {
		currency = FallbackCurrency
	}
	tx.Currency = currency
	tx.AccountName = acc.Name

	if tx.Type != Transfer {
		tx.ToID = ""
		if tx.CategoryID != "" {
			if cat := FindCategory(categories, tx.CategoryID); cat != nil {
				tx.CategoryName = cat.Name
			}
		}
	}

	if tx.Date == "" {
		tx.Date = time.Now().UTC().Format(time.RFC3339)
	}

	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}
