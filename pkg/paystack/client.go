// Package paystack verifies card transactions with the Paystack REST API.
package paystack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://api.paystack.co"

// ErrVerificationFailed means Paystack answered but the transaction did not succeed.
var ErrVerificationFailed = errors.New("paystack: transaction not successful")

type Client struct {
	rest *resty.Client
}

func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(secretKey).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return &Client{rest: rest}
}

// Transaction is the subset of the verify payload the cashier needs.
type Transaction struct {
	Reference string  `json:"reference"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"` // major units, converted from kobo
	Currency  string  `json:"currency"`
	PaidAt    string  `json:"paid_at"`
	Channel   string  `json:"channel"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		PaidAt    string `json:"paid_at"`
		Channel   string `json:"channel"`
	} `json:"data"`
}

// VerifyTransaction calls GET /transaction/verify/{reference}.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, errors.New("paystack: empty reference")
	}

	var body verifyResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("reference", reference).
		ForceContentType("application/json").
		SetResult(&body).
		SetError(&body).
		Get("/transaction/verify/{reference}")
	if err != nil {
		return nil, fmt.Errorf("paystack: verify %s: %w", reference, err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, fmt.Errorf("paystack: verify %s: http %d", reference, resp.StatusCode())
	}
	if resp.StatusCode() != http.StatusOK || !body.Status {
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, body.Message)
	}
	if body.Data.Status != "success" {
		return nil, fmt.Errorf("%w: status %s", ErrVerificationFailed, body.Data.Status)
	}

	return &Transaction{
		Reference: body.Data.Reference,
		Status:    body.Data.Status,
		Amount:    float64(body.Data.Amount) / 100,
		Currency:  body.Data.Currency,
		PaidAt:    body.Data.PaidAt,
		Channel:   body.Data.Channel,
	}, nil
}
