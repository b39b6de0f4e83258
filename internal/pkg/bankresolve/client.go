package bankresolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrResolveFailed is returned when the payment network could not confirm
// the account. The account number/bank code pair may simply be wrong.
var ErrResolveFailed = errors.New("could not resolve bank account")

// Config holds bank resolution API configuration
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client resolves Nigerian bank account details through a Paystack-style
// account resolution endpoint.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Account holds the resolved account details
type Account struct {
	AccountNumber string
	HolderName    string
	BankName      string
}

// NewClient creates a new bank resolution client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

type resolveResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AccountNumber string `json:"account_number"`
		AccountName   string `json:"account_name"`
		Bank          struct {
			Name string `json:"name"`
		} `json:"bank"`
	} `json:"data"`
}

// Resolve looks up the holder name and bank name for an account.
func (c *Client) Resolve(ctx context.Context, accountNumber, bankCode string) (*Account, error) {
	if strings.TrimSpace(accountNumber) == "" || strings.TrimSpace(bankCode) == "" {
		return nil, fmt.Errorf("validation error: account_number and bank_code must be non-empty")
	}
	if strings.TrimSpace(c.config.BaseURL) == "" {
		return nil, fmt.Errorf("bankresolve config error: base_url is empty")
	}

	base := strings.TrimRight(c.config.BaseURL, "/")
	endpoint := fmt.Sprintf("%s/bank/resolve?account_number=%s&bank_code=%s",
		base, url.QueryEscape(accountNumber), url.QueryEscape(bankCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bank resolve call failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bank resolve call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bank resolve call failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest {
		return nil, ErrResolveFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bank resolve returned non-2xx status: %d, body: %s", resp.StatusCode, string(body))
	}

	var out resolveResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse bank resolve response: %w", err)
	}
	if !out.Status || out.Data.AccountName == "" {
		return nil, ErrResolveFailed
	}

	return &Account{
		AccountNumber: out.Data.AccountNumber,
		HolderName:    out.Data.AccountName,
		BankName:      out.Data.Bank.Name,
	}, nil
}
