// Package render turns account and transaction snapshots into display
// blocks and summary lines.
package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finwatch-dev/finwatch/internal/block"
	"github.com/finwatch-dev/finwatch/internal/model"
	"github.com/finwatch-dev/finwatch/internal/store"
	"github.com/finwatch-dev/finwatch/internal/sync"
)

var one = decimal.NewFromInt(1)

// Builder composes sync results into blocks.
type Builder struct {
	engine   *sync.Engine
	accounts *store.AccountStore
}

// NewBuilder creates a Builder over the given engine and account store.
func NewBuilder(engine *sync.Engine, accounts *store.AccountStore) *Builder {
	return &Builder{engine: engine, accounts: accounts}
}

// UnseenTransactionBlocks runs a transaction sync and returns one section
// block per unseen transaction, in fetch order. A transaction whose
// account is not in the store fails the build with
// sync.ErrAccountMissing; the transaction is already persisted as seen at
// that point, so dropping it silently would lose the notification for
// good.
func (b *Builder) UnseenTransactionBlocks(ctx context.Context) ([]block.Block, error) {
	unseen, err := b.engine.SyncTransactions(ctx)
	if err != nil {
		return nil, err
	}

	blocks := make([]block.Block, 0, len(unseen))
	for _, txn := range unseen {
		account, ok := b.accounts.Get(txn.AccountID)
		if !ok {
			return nil, fmt.Errorf("transaction %s references account %s: %w",
				txn.ID, txn.AccountID, sync.ErrAccountMissing)
		}
		blocks = append(blocks, transactionBlock(txn, account))
	}
	return blocks, nil
}

// AccountsBlocks runs an account sync and renders the balances summary:
// a "Credit cards" section followed by a "Bank accounts" section. Both
// sections are emitted even when empty. Accounts with a balance inside
// (0, 1) are suppressed as rounding noise; 0 and 1 themselves stay.
func (b *Builder) AccountsBlocks(ctx context.Context) ([]block.Block, error) {
	groups, err := b.engine.ActiveAccountsByType(ctx)
	if err != nil {
		return nil, err
	}

	return []block.Block{
		block.Header{Text: block.Plain("Credit cards")},
		accountsSection(withoutLowBalances(groups.Get(model.AccountTypeCredit))),
		block.Header{Text: block.Plain("Bank accounts")},
		accountsSection(withoutLowBalances(groups.Get(model.AccountTypeBank))),
	}, nil
}

// MoneyBuffer runs an account sync and renders the liquidity line:
// cash (bank balances) plus credit (credit balances) equals the buffer.
func (b *Builder) MoneyBuffer(ctx context.Context) (block.Text, error) {
	groups, err := b.engine.ActiveAccountsByType(ctx)
	if err != nil {
		return block.Text{}, err
	}

	cash := sumBalances(groups.Get(model.AccountTypeBank))
	credit := sumBalances(groups.Get(model.AccountTypeCredit))
	buffer := cash.Add(credit)

	return block.Markdown(fmt.Sprintf("Cash: %s, credit: %s, buffer: *%s*",
		cash.StringFixed(2), credit.StringFixed(2), buffer.StringFixed(2))), nil
}

func transactionBlock(txn model.Transaction, account model.Account) block.Block {
	pending := ""
	if txn.Pending {
		pending = " (pending)"
	}

	return block.Section{
		Text: block.Markdown(fmt.Sprintf("*%s* — %s%s", txn.Description, txn.Amount.String(), pending)),
		Accessory: &block.Overflow{Options: []block.Option{
			{Value: "fi", Label: account.FIName},
			{Value: "account", Label: account.Name},
			{Value: "date", Label: "Date: " + txn.Date.Format(model.DateFormat)},
			{Value: "id", Label: "ID: " + txn.ID},
		}},
	}
}

func accountsSection(accounts []model.Account) block.Block {
	lines := make([]string, len(accounts))
	for i, a := range accounts {
		lines[i] = fmt.Sprintf("%s %s — %s %s", a.FIName, a.Name, a.Currency, a.Balance.StringFixed(2))
	}
	return block.Section{Text: block.Markdown(strings.Join(lines, "\n"))}
}

func withoutLowBalances(accounts []model.Account) []model.Account {
	var kept []model.Account
	for _, a := range accounts {
		// Only balances strictly between 0 and 1 are noise; 0 and 1
		// themselves still render.
		if a.Balance.IsNegative() || a.Balance.IsZero() || a.Balance.GreaterThanOrEqual(one) {
			kept = append(kept, a)
		}
	}
	return kept
}

func sumBalances(accounts []model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}
