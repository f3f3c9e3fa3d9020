// Package sync pulls raw records from the aggregator, normalizes them and
// diffs them against the stores. It is the only writer of both stores.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/finwatch-dev/finwatch/internal/aggregator"
	"github.com/finwatch-dev/finwatch/internal/model"
	"github.com/finwatch-dev/finwatch/internal/store"
)

// ErrAccountMissing marks a transaction whose account ID is not present
// in the account store. Callers treat it as fatal to the cycle.
var ErrAccountMissing = errors.New("account not in store")

// Aggregator is the slice of the aggregator client the engine needs.
type Aggregator interface {
	FetchTransactions(ctx context.Context, start, end time.Time, includePending bool) ([]aggregator.RawTransaction, error)
	FetchAccounts(ctx context.Context) ([]aggregator.RawAccount, error)
}

// Engine orchestrates fetch, normalize, diff-against-store and persist for
// both accounts and transactions.
type Engine struct {
	agg        Aggregator
	accounts   *store.AccountStore
	txns       *store.TransactionStore
	windowDays int
	log        *zap.Logger

	now func() time.Time // swapped in tests
}

// NewEngine creates an Engine. windowDays bounds each transaction fetch;
// the overlap with prior fetches is intentional so pending transactions
// can settle.
func NewEngine(agg Aggregator, accounts *store.AccountStore, txns *store.TransactionStore, windowDays int, log *zap.Logger) *Engine {
	return &Engine{
		agg:        agg,
		accounts:   accounts,
		txns:       txns,
		windowDays: windowDays,
		log:        log,
		now:        time.Now,
	}
}

// SyncTransactions fetches the recent window (pending included), upserts
// every record into the transaction store, and returns only the
// transactions whose IDs were absent from the store before this sync, in
// fetch order. An ID is reported as unseen at most once across the
// store's lifetime: replays within the window overlap refresh stored
// fields but are never returned again.
func (e *Engine) SyncTransactions(ctx context.Context) ([]model.Transaction, error) {
	end := e.now()
	start := end.AddDate(0, 0, -e.windowDays)

	raw, err := e.agg.FetchTransactions(ctx, start, end, true)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}

	var unseen []model.Transaction
	for _, r := range raw {
		txn, err := normalizeTransaction(r)
		if err != nil {
			return nil, err
		}

		seen, err := e.txns.Contains(txn.ID)
		if err != nil {
			return nil, err
		}
		if !seen {
			unseen = append(unseen, txn)
		}
		// Upsert regardless: the store is the sole source of truth, and
		// replays carry field updates such as the pending flag settling.
		if err := e.txns.Upsert(txn); err != nil {
			return nil, err
		}
	}

	e.log.Info("transaction sync complete",
		zap.Int("fetched", len(raw)),
		zap.Int("unseen", len(unseen)))
	return unseen, nil
}

// SyncAccounts fetches the full account set and replaces each snapshot in
// the account store by ID. Accounts absent from the fetch are not pruned;
// they linger until the process restarts.
func (e *Engine) SyncAccounts(ctx context.Context) error {
	raw, err := e.agg.FetchAccounts(ctx)
	if err != nil {
		return fmt.Errorf("fetching accounts: %w", err)
	}

	for _, r := range raw {
		e.accounts.Upsert(normalizeAccount(r))
	}

	e.log.Info("account sync complete", zap.Int("fetched", len(raw)))
	return nil
}

// ActiveAccountsByType refreshes the account store and returns the active
// accounts grouped by type. Group key order is the order each type was
// first encountered; accounts keep their encounter order within a group.
func (e *Engine) ActiveAccountsByType(ctx context.Context) (*AccountGroups, error) {
	if err := e.SyncAccounts(ctx); err != nil {
		return nil, err
	}

	active := e.accounts.Query(func(a model.Account) bool { return a.Active })

	groups := &AccountGroups{byType: make(map[model.AccountType][]model.Account)}
	for _, a := range active {
		if _, ok := groups.byType[a.Type]; !ok {
			groups.order = append(groups.order, a.Type)
		}
		groups.byType[a.Type] = append(groups.byType[a.Type], a)
	}
	return groups, nil
}

// AccountGroups holds active accounts grouped by account type.
type AccountGroups struct {
	order  []model.AccountType
	byType map[model.AccountType][]model.Account
}

// Types returns the group keys in first-occurrence order.
func (g *AccountGroups) Types() []model.AccountType {
	return g.order
}

// Get returns the accounts of one type, in encounter order. Missing types
// yield an empty slice.
func (g *AccountGroups) Get(t model.AccountType) []model.Account {
	return g.byType[t]
}

func normalizeTransaction(r aggregator.RawTransaction) (model.Transaction, error) {
	date, err := time.Parse(model.DateFormat, r.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: parsing date %q: %w", r.ID, r.Date, err)
	}
	return model.Transaction{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Date:        date,
		Description: r.FIData.Description,
		Amount:      r.FIData.Amount,
		Pending:     r.IsPending,
	}, nil
}

func normalizeAccount(r aggregator.RawAccount) model.Account {
	a := model.Account{
		ID:       r.ID,
		Type:     model.AccountType(r.Type),
		Name:     r.Name,
		FIName:   r.FIName,
		Balance:  r.Value,
		Currency: r.Currency,
		Active:   r.IsActive,
	}
	// Timestamps are informational; a record with a malformed one is
	// still a valid snapshot.
	if t, err := time.Parse(model.DateFormat, r.CreatedDate); err == nil {
		a.CreatedAt = t
	}
	if t, err := time.Parse(model.DateFormat, r.LastUpdatedDate); err == nil {
		a.UpdatedAt = t
	}
	return a
}
