// Package gateway implements the Zarinpal online payment flow: a payment
// request that redirects the customer to the gateway, and a verify call
// on the callback that confirms the settlement.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	liveBaseURL    = "https://payment.zarinpal.com"
	sandboxBaseURL = "https://sandbox.zarinpal.com"

	codeOK              = 100
	codeAlreadyVerified = 101
)

// Error is a non-success response code from the gateway.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("zarinpal: code %d: %s", e.Code, e.Message)
}

// Client talks to the Zarinpal v4 REST API.
type Client struct {
	http       *resty.Client
	merchantID string
}

// NewClient builds a gateway client. Sandbox mode targets Zarinpal's test
// environment and accepts its test merchant IDs.
func NewClient(merchantID string, sandbox bool) *Client {
	base := liveBaseURL
	if sandbox {
		base = sandboxBaseURL
	}
	return &Client{
		http: resty.New().
			SetBaseURL(base).
			SetTimeout(15 * time.Second).
			SetHeader("Accept", "application/json"),
		merchantID: merchantID,
	}
}

// NewClientWithBaseURL is for tests pointing at a local server.
func NewClientWithBaseURL(merchantID, baseURL string) *Client {
	c := NewClient(merchantID, false)
	c.http.SetBaseURL(baseURL)
	return c
}

type requestPayload struct {
	MerchantID  string `json:"merchant_id"`
	Amount      int64  `json:"amount"`
	CallbackURL string `json:"callback_url"`
	Description string `json:"description"`
}

type requestResponse struct {
	Data struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		Authority string `json:"authority"`
	} `json:"data"`
}

type verifyPayload struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Authority  string `json:"authority"`
}

type verifyResponse struct {
	Data struct {
		Code     int    `json:"code"`
		Message  string `json:"message"`
		RefID    int64  `json:"ref_id"`
		CardPan  string `json:"card_pan"`
		FeeType  string `json:"fee_type"`
		Fee      int64  `json:"fee"`
	} `json:"data"`
}

// Request registers a payment of amount Toman and returns the gateway
// authority plus the URL the customer must be redirected to.
func (c *Client) Request(ctx context.Context, amount int64, callbackURL, description string) (authority, payURL string, err error) {
	var out requestResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(requestPayload{
			MerchantID:  c.merchantID,
			Amount:      amount,
			CallbackURL: callbackURL,
			Description: description,
		}).
		SetResult(&out).
		Post("/pg/v4/payment/request.json")
	if err != nil {
		return "", "", fmt.Errorf("zarinpal request: %w", err)
	}
	if resp.IsError() || out.Data.Code != codeOK {
		return "", "", &Error{Code: out.Data.Code, Message: out.Data.Message}
	}
	return out.Data.Authority, c.http.BaseURL + "/pg/StartPay/" + out.Data.Authority, nil
}

// Verify confirms a completed payment and returns the gateway reference
// ID, which callers store as the payment's tracking code. A payment the
// gateway has already verified is treated as success.
func (c *Client) Verify(ctx context.Context, authority string, amount int64) (refID int64, err error) {
	var out verifyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(verifyPayload{
			MerchantID: c.merchantID,
			Amount:     amount,
			Authority:  authority,
		}).
		SetResult(&out).
		Post("/pg/v4/payment/verify.json")
	if err != nil {
		return 0, fmt.Errorf("zarinpal verify: %w", err)
	}
	if resp.IsError() || (out.Data.Code != codeOK && out.Data.Code != codeAlreadyVerified) {
		return 0, &Error{Code: out.Data.Code, Message: out.Data.Message}
	}
	return out.Data.RefID, nil
}
