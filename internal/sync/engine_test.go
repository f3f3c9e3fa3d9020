package sync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finwatch-dev/finwatch/internal/aggregator"
	"github.com/finwatch-dev/finwatch/internal/model"
	"github.com/finwatch-dev/finwatch/internal/store"
)

type fakeAggregator struct {
	txns     []aggregator.RawTransaction
	accounts []aggregator.RawAccount
	txnErr   error
	acctErr  error

	lastStart   time.Time
	lastEnd     time.Time
	lastPending bool
}

func (f *fakeAggregator) FetchTransactions(_ context.Context, start, end time.Time, includePending bool) ([]aggregator.RawTransaction, error) {
	f.lastStart, f.lastEnd, f.lastPending = start, end, includePending
	if f.txnErr != nil {
		return nil, f.txnErr
	}
	return f.txns, nil
}

func (f *fakeAggregator) FetchAccounts(context.Context) ([]aggregator.RawAccount, error) {
	if f.acctErr != nil {
		return nil, f.acctErr
	}
	return f.accounts, nil
}

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func rawTxn(id, date, amount string, pending bool) aggregator.RawTransaction {
	return aggregator.RawTransaction{
		ID:        id,
		AccountID: "a1",
		Date:      date,
		FIData: aggregator.FIData{
			Description: "Coffee Co",
			Amount:      mustDecimal(amount),
		},
		IsPending: pending,
	}
}

func rawAcct(id, typ, value string, active bool) aggregator.RawAccount {
	return aggregator.RawAccount{
		ID:       id,
		Type:     typ,
		Name:     "Account " + id,
		Value:    mustDecimal(value),
		Currency: "USD",
		FIName:   "Bank X",
		IsActive: active,
	}
}

func newTestEngine(t *testing.T, agg *fakeAggregator) (*Engine, *store.AccountStore) {
	t.Helper()
	txns, err := store.NewTransactionStore(filepath.Join(t.TempDir(), "txns.db"))
	require.NoError(t, err)
	t.Cleanup(func() { txns.Close() })

	accounts := store.NewAccountStore()
	e := NewEngine(agg, accounts, txns, 14, zap.NewNop())
	e.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	return e, accounts
}

func TestSyncTransactionsFirstSightIsUnseen(t *testing.T) {
	agg := &fakeAggregator{txns: []aggregator.RawTransaction{
		rawTxn("t1", "2026-08-27", "-4.5", false),
		rawTxn("t2", "2026-08-28", "-12.00", true),
	}}
	e, _ := newTestEngine(t, agg)

	unseen, err := e.SyncTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, unseen, 2)
	assert.Equal(t, "t1", unseen[0].ID, "fetch order must be preserved")
	assert.Equal(t, "t2", unseen[1].ID)
}

func TestSyncTransactionsNeverReportsTwice(t *testing.T) {
	agg := &fakeAggregator{txns: []aggregator.RawTransaction{
		rawTxn("t1", "2026-08-27", "-4.5", true),
	}}
	e, _ := newTestEngine(t, agg)

	unseen, err := e.SyncTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, unseen, 1)

	// Same ID replayed in the next window, now settled.
	agg.txns = []aggregator.RawTransaction{rawTxn("t1", "2026-08-27", "-4.5", false)}
	unseen, err = e.SyncTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unseen, "a replayed ID must never be re-notified")
}

func TestSyncTransactionsReplayRefreshesPending(t *testing.T) {
	agg := &fakeAggregator{txns: []aggregator.RawTransaction{
		rawTxn("t1", "2026-08-27", "-4.5", true),
	}}
	e, _ := newTestEngine(t, agg)

	_, err := e.SyncTransactions(context.Background())
	require.NoError(t, err)

	agg.txns = []aggregator.RawTransaction{rawTxn("t1", "2026-08-27", "-4.5", false)}
	_, err = e.SyncTransactions(context.Background())
	require.NoError(t, err)

	all, err := e.txns.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Pending, "replay must refresh the stored pending flag")
}

func TestSyncTransactionsWindow(t *testing.T) {
	agg := &fakeAggregator{}
	e, _ := newTestEngine(t, agg)

	_, err := e.SyncTransactions(context.Background())
	require.NoError(t, err)

	assert.True(t, agg.lastPending, "pending transactions must be included")
	assert.Equal(t, "08/28/26", agg.lastEnd.Format(aggregator.WindowDateFormat))
	assert.Equal(t, "08/14/26", agg.lastStart.Format(aggregator.WindowDateFormat))
}

func TestSyncTransactionsFetchErrorPropagates(t *testing.T) {
	wantErr := &aggregator.FetchError{Op: "transactions", StatusCode: 502}
	agg := &fakeAggregator{txnErr: wantErr}
	e, _ := newTestEngine(t, agg)

	_, err := e.SyncTransactions(context.Background())
	require.Error(t, err)
	var fetchErr *aggregator.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestSyncAccountsReplacesByID(t *testing.T) {
	agg := &fakeAggregator{accounts: []aggregator.RawAccount{
		rawAcct("a1", "bank", "100", true),
	}}
	e, accounts := newTestEngine(t, agg)

	require.NoError(t, e.SyncAccounts(context.Background()))

	agg.accounts = []aggregator.RawAccount{rawAcct("a1", "bank", "250.75", true)}
	require.NoError(t, e.SyncAccounts(context.Background()))

	require.Equal(t, 1, accounts.Len())
	got, ok := accounts.Get("a1")
	require.True(t, ok)
	assert.Equal(t, "250.75", got.Balance.StringFixed(2))
}

func TestSyncAccountsDoesNotPrune(t *testing.T) {
	agg := &fakeAggregator{accounts: []aggregator.RawAccount{
		rawAcct("a1", "bank", "100", true),
		rawAcct("a2", "credit", "-40", true),
	}}
	e, accounts := newTestEngine(t, agg)
	require.NoError(t, e.SyncAccounts(context.Background()))

	// a2 vanishes from the next fetch but stays cached.
	agg.accounts = []aggregator.RawAccount{rawAcct("a1", "bank", "100", true)}
	require.NoError(t, e.SyncAccounts(context.Background()))

	assert.Equal(t, 2, accounts.Len())
}

func TestActiveAccountsByType(t *testing.T) {
	agg := &fakeAggregator{accounts: []aggregator.RawAccount{
		rawAcct("a1", "credit", "-40", true),
		rawAcct("a2", "bank", "100", true),
		rawAcct("a3", "bank", "55", false),
		rawAcct("a4", "bank", "7", true),
	}}
	e, _ := newTestEngine(t, agg)

	groups, err := e.ActiveAccountsByType(context.Background())
	require.NoError(t, err)

	require.Equal(t, []model.AccountType{model.AccountTypeCredit, model.AccountTypeBank}, groups.Types(),
		"group key order follows first occurrence")

	banks := groups.Get(model.AccountTypeBank)
	require.Len(t, banks, 2, "inactive accounts are filtered out")
	assert.Equal(t, "a2", banks[0].ID)
	assert.Equal(t, "a4", banks[1].ID)

	assert.Empty(t, groups.Get("brokerage"))
}

func TestActiveAccountsByTypeFetchError(t *testing.T) {
	agg := &fakeAggregator{acctErr: errors.New("aggregator down")}
	e, _ := newTestEngine(t, agg)

	_, err := e.ActiveAccountsByType(context.Background())
	require.Error(t, err)
}
