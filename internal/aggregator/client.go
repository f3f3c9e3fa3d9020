// Package aggregator is the HTTP client for the financial-data
// aggregator. It only moves raw records; normalization happens in the
// sync engine.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// WindowDateFormat is the MM/DD/YY layout the aggregator expects for
// fetch-window boundaries.
const WindowDateFormat = "01/02/06"

// RawTransaction is one transaction record as the aggregator returns it.
type RawTransaction struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
	Date      string `json:"date"` // ISO calendar date
	FIData    FIData `json:"fiData"`
	IsPending bool   `json:"isPending"`
}

// FIData carries the description and amount as reported by the financial
// institution.
type FIData struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// RawAccount is one account record as the aggregator returns it.
type RawAccount struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Name            string          `json:"name"`
	Value           decimal.Decimal `json:"value"`
	Currency        string          `json:"currency"`
	FIName          string          `json:"fiName"`
	IsActive        bool            `json:"isActive"`
	CreatedDate     string          `json:"createdDate"`
	LastUpdatedDate string          `json:"lastUpdatedDate"`
}

// FetchError is any failure to pull data from the aggregator. The
// notifier loop treats these as fatal and leaves the retry to process
// supervision.
type FetchError struct {
	Op         string
	StatusCode int // zero if the request never completed
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("aggregator %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("aggregator %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client talks to the aggregator API with bearer-token auth.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates a Client for the given base URL and access token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 2 * time.Minute},
	}
}

// FetchTransactions returns raw transaction records dated between start
// and end inclusive. includePending keeps not-yet-settled transactions in
// the result.
func (c *Client) FetchTransactions(ctx context.Context, start, end time.Time, includePending bool) ([]RawTransaction, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(WindowDateFormat))
	q.Set("end_date", end.Format(WindowDateFormat))
	q.Set("include_pending", strconv.FormatBool(includePending))

	var txns []RawTransaction
	if err := c.get(ctx, "transactions", "/v1/transactions?"+q.Encode(), &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// FetchAccounts returns the full set of raw account records.
func (c *Client) FetchAccounts(ctx context.Context) ([]RawAccount, error) {
	var accounts []RawAccount
	if err := c.get(ctx, "accounts", "/v1/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// TriggerRefresh asks the aggregator to start re-pulling data from the
// financial institutions. The refresh itself runs asynchronously on the
// aggregator side; this call only kicks it off.
func (c *Client) TriggerRefresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/refresh", nil)
	if err != nil {
		return &FetchError{Op: "refresh", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &FetchError{Op: "refresh", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return &FetchError{Op: "refresh", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
