package ledger

import (
	"math/rand"
	"testing"
	"time"

	"kopilka/internal/core"
)

func tx(typ core.TransactionType, amount core.Money, currency, accountID, toID, categoryID, date string) core.Transaction {
	return core.Transaction{
		Type:       typ,
		Amount:     amount,
		Currency:   currency,
		AccountID:  accountID,
		ToID:       toID,
		CategoryID: categoryID,
		Date:       date,
	}
}

func TestAccountBalance(t *testing.T) {
	accounts := []core.Account{
		{ID: "wallet", Name: "Wallet", Currency: "RUB"},
		{ID: "card", Name: "Card", Currency: "RUB"},
		{ID: "usd", Name: "USD Account", Currency: "USD"},
	}

	t.Run("income minus expense", func(t *testing.T) {
		txs := []core.Transaction{
			tx(core.Income, 100000, "RUB", "wallet", "", "", "2026-08-01T10:00:00Z"),
			tx(core.Expense, 30000, "RUB", "wallet", "", "", "2026-08-02T10:00:00Z"),
		}
		if got := AccountBalance("wallet", txs, accounts, "RUB"); got != 70000 {
			t.Errorf("AccountBalance = %d, want 70000", got)
		}
	})

	t.Run("transfer moves money between legs", func(t *testing.T) {
		txs := []core.Transaction{
			tx(core.Income, 100000, "RUB", "wallet", "", "", "2026-08-01T10:00:00Z"),
			tx(core.Transfer, 50000, "RUB", "wallet", "card", "", "2026-08-02T10:00:00Z"),
		}
		if got := AccountBalance("wallet", txs, accounts, "RUB"); got != 50000 {
			t.Errorf("source balance = %d, want 50000", got)
		}
		if got := AccountBalance("card", txs, accounts, "RUB"); got != 50000 {
			t.Errorf("destination balance = %d, want 50000", got)
		}
	})

	t.Run("other currency excluded", func(t *testing.T) {
		txs := []core.Transaction{
			tx(core.Income, 100000, "RUB", "wallet", "", "", "2026-08-01T10:00:00Z"),
			tx(core.Income, 5000, "USD", "wallet", "", "", "2026-08-01T11:00:00Z"),
		}
		if got := AccountBalance("wallet", txs, accounts, "RUB"); got != 100000 {
			t.Errorf("AccountBalance = %d, want 100000 with USD excluded", got)
		}
	})

	t.Run("unknown account falls back to default currency", func(t *testing.T) {
		txs := []core.Transaction{
			tx(core.Income, 100000, "RUB", "ghost", "", "", "2026-08-01T10:00:00Z"),
			tx(core.Income, 5000, "USD", "ghost", "", "", "2026-08-01T11:00:00Z"),
		}
		if got := AccountBalance("ghost", txs, accounts, "RUB"); got != 100000 {
			t.Errorf("AccountBalance = %d, want 100000", got)
		}
	})

	t.Run("empty input is zero", func(t *testing.T) {
		if got := AccountBalance("wallet", nil, accounts, "RUB"); got != 0 {
			t.Errorf("AccountBalance = %d, want 0", got)
		}
	})

	t.Run("order independent", func(t *testing.T) {
		txs := []core.Transaction{
			tx(core.Income, 100000, "RUB", "wallet", "", "", "2026-08-01T10:00:00Z"),
			tx(core.Expense, 30000, "RUB", "wallet", "", "", "2026-08-02T10:00:00Z"),
			tx(core.Transfer, 20000, "RUB", "wallet", "card", "", "2026-08-03T10:00:00Z"),
			tx(core.Income, 1500, "RUB", "card", "", "", "2026-08-04T10:00:00Z"),
		}
		want := AccountBalance("wallet", txs, accounts, "RUB")
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 10; i++ {
			shuffled := make([]core.Transaction, len(txs))
			copy(shuffled, txs)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})
			if got := AccountBalance("wallet", shuffled, accounts, "RUB"); got != want {
				t.Fatalf("permutation %d: balance = %d, want %d", i, got, want)
			}
		}
	})
}

func TestTotalBalance(t *testing.T) {
	t.Run("transfers excluded", func(t *testing.T) {
		txs := []core.Transaction{
			tx(core.Income, 100000, "RUB", "wallet", "", "", "2026-08-01T10:00:00Z"),
			tx(core.Expense, 30000, "RUB", "wallet", "", "", "2026-08-02T10:00:00Z"),
			tx(core.Transfer, 50000, "RUB", "wallet", "card", "", "2026-08-03T10:00:00Z"),
		}
		if got := TotalBalance(txs, "RUB"); got != 70000 {
			t.Errorf("TotalBalance = %d, want 70000 with transfer excluded", got)
		}
	})

	t.Run("currency partition", func(t *testing.T) {
		txs := []core.Transaction{
			tx(core.Income, 100000, "RUB", "wallet", "", "", "2026-08-01T10:00:00Z"),
			tx(core.Income, 5000, "USD", "usd", "", "", "2026-08-01T11:00:00Z"),
		}
		if got := TotalBalance(txs, "USD"); got != 5000 {
			t.Errorf("TotalBalance(USD) = %d, want 5000", got)
		}
	})

	t.Run("empty input is zero", func(t *testing.T) {
		if got := TotalBalance(nil, "RUB"); got != 0 {
			t.Errorf("TotalBalance = %d, want 0", got)
		}
	})
}

func TestTopCategoriesBySpend(t *testing.T) {
	categories := []core.Category{
		{ID: "food", Name: "Продукты", Type: core.Expense},
		{ID: "transport", Name: "Транспорт", Type: core.Expense},
		{ID: "fun", Name: "Развлечения", Type: core.Expense},
		{ID: "salary", Name: "Зарплата", Type: core.Income},
	}
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		tx(core.Expense, 5000, "RUB", "wallet", "", "food", "2026-08-05T10:00:00Z"),
		tx(core.Expense, 3000, "RUB", "wallet", "", "food", "2026-08-06T10:00:00Z"),
		tx(core.Expense, 4000, "RUB", "wallet", "", "transport", "2026-08-07T10:00:00Z"),
		// Income never counts toward spend.
		tx(core.Income, 90000, "RUB", "wallet", "", "salary", "2026-08-08T10:00:00Z"),
		// Outside the window.
		tx(core.Expense, 9999, "RUB", "wallet", "", "fun", "2026-07-31T23:59:59Z"),
		// Exactly at the exclusive end.
		tx(core.Expense, 9999, "RUB", "wallet", "", "fun", "2026-09-01T00:00:00Z"),
	}

	t.Run("ranked descending, zeros dropped", func(t *testing.T) {
		got := TopCategoriesBySpend(txs, categories, start, end, 0)
		if len(got) != 2 {
			t.Fatalf("got %d categories, want 2", len(got))
		}
		if got[0].Category.ID != "food" || got[0].Total != 8000 {
			t.Errorf("top = %s/%d, want food/8000", got[0].Category.ID, got[0].Total)
		}
		if got[1].Category.ID != "transport" || got[1].Total != 4000 {
			t.Errorf("second = %s/%d, want transport/4000", got[1].Category.ID, got[1].Total)
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		got := TopCategoriesBySpend(txs, categories, start, end, 1)
		if len(got) != 1 || got[0].Category.ID != "food" {
			t.Errorf("limit 1 = %v, want only food", got)
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		tied := []core.Transaction{
			tx(core.Expense, 1000, "RUB", "wallet", "", "transport", "2026-08-05T10:00:00Z"),
			tx(core.Expense, 1000, "RUB", "wallet", "", "food", "2026-08-05T11:00:00Z"),
		}
		got := TopCategoriesBySpend(tied, categories, start, end, 0)
		if len(got) != 2 {
			t.Fatalf("got %d categories, want 2", len(got))
		}
		// food precedes transport in the category list.
		if got[0].Category.ID != "food" {
			t.Errorf("tie broken to %s, want food first", got[0].Category.ID)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := TopCategoriesBySpend(nil, categories, start, end, 5); len(got) != 0 {
			t.Errorf("got %v, want empty", got)
		}
	})
}

func TestTypeSumOnDay(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, 5000, "RUB", "wallet", "", "", "2026-08-28T09:00:00Z"),
		tx(core.Income, 2500, "RUB", "wallet", "", "", "2026-08-28T18:00:00Z"),
		tx(core.Expense, 1000, "RUB", "wallet", "", "", "2026-08-28T12:00:00Z"),
		tx(core.Income, 9000, "RUB", "wallet", "", "", "2026-08-27T12:00:00Z"),
		tx(core.Transfer, 7000, "RUB", "wallet", "card", "", "2026-08-28T13:00:00Z"),
	}

	if got := TypeSumOnDay(txs, core.Income, "2026-08-28"); got != 7500 {
		t.Errorf("income sum = %d, want 7500", got)
	}
	if got := TypeSumOnDay(txs, core.Expense, "2026-08-28"); got != 1000 {
		t.Errorf("expense sum = %d, want 1000", got)
	}
	if got := TypeSumOnDay(txs, core.Expense, "2026-08-29"); got != 0 {
		t.Errorf("empty day sum = %d, want 0", got)
	}
}
