package bank

import (
	"context"
	"fmt"
	"time"

	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"

	"github.com/mlaborde/suivi/internal/domain"
)

// Account pairs a dashboard account label with its aggregator access token.
type Account struct {
	Name        string
	AccessToken string
}

// Fetcher retrieves the most recent transactions for one account.
// This interface enables mocking of the aggregator in sync tests.
type Fetcher interface {
	RecentTransactions(ctx context.Context, account Account, count int) ([]domain.Transaction, error)
}

// historyWindow bounds how far back a fetch looks. The aggregator requires an
// explicit date range even when only the most recent N entries are wanted.
const historyWindow = 90 * 24 * time.Hour

// NewPlaidClient creates a Plaid API client for the given environment.
func NewPlaidClient(clientID, secret, env string) (*plaid.APIClient, error) {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		return nil, fmt.Errorf("invalid Plaid environment: %s", env)
	}

	return plaid.NewAPIClient(configuration), nil
}

// PlaidFetcher is the concrete Fetcher backed by the Plaid transactions API.
type PlaidFetcher struct {
	client *plaid.APIClient
	now    func() time.Time
}

// NewPlaidFetcher creates a fetcher over an existing Plaid client.
func NewPlaidFetcher(client *plaid.APIClient) *PlaidFetcher {
	return &PlaidFetcher{client: client, now: time.Now}
}

// RecentTransactions fetches the account's most recent count transactions and
// maps them to the ledger record shape.
func (f *PlaidFetcher) RecentTransactions(ctx context.Context, account Account, count int) ([]domain.Transaction, error) {
	end := f.now()
	start := end.Add(-historyWindow)

	request := plaid.NewTransactionsGetRequest(
		account.AccessToken,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	options := plaid.NewTransactionsGetRequestOptions()
	options.SetCount(int32(count))
	request.SetOptions(*options)

	resp, _, err := f.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
	if err != nil {
		return nil, fmt.Errorf("RecentTransactions: account %s: %w", account.Name, err)
	}

	raw := resp.GetTransactions()
	txs := make([]domain.Transaction, 0, len(raw))
	for _, t := range raw {
		tx, err := mapPlaidTransaction(t, account.Name)
		if err != nil {
			return nil, fmt.Errorf("RecentTransactions: account %s: %w", account.Name, err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// mapPlaidTransaction converts one aggregator record. Plaid reports outflows
// as positive amounts; the ledger convention is negative for expenses, so the
// sign is flipped.
func mapPlaidTransaction(t plaid.Transaction, accountName string) (domain.Transaction, error) {
	date, err := time.Parse("2006-01-02", t.GetDate())
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid date %q: %w", t.GetDate(), err)
	}

	return domain.Transaction{
		Date:        date,
		Name:        t.GetName(),
		Category:    categoryLabel(t),
		Amount:      decimal.NewFromFloat(t.GetAmount()).Neg(),
		Description: t.GetOriginalDescription(),
		ExternalID:  t.GetTransactionId(),
		Account:     accountName,
	}, nil
}

// categoryLabel renders the aggregator's personal finance category in the
// ledger's "Parent > Child" form. Uncategorized records yield empty.
func categoryLabel(t plaid.Transaction) string {
	pfc := t.GetPersonalFinanceCategory()
	if pfc.GetPrimary() == "" {
		return ""
	}
	if pfc.GetDetailed() == "" || pfc.GetDetailed() == pfc.GetPrimary() {
		return pfc.GetPrimary()
	}
	return pfc.GetPrimary() + domain.CategorySeparator + pfc.GetDetailed()
}
