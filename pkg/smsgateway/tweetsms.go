package smsgateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TweetSMSName identifies the TweetSMS gateway in logs and notifications
const TweetSMSName = "TWEETSMS"

// tweetSMSErrors maps TweetSMS result codes to messages
var tweetSMSErrors = map[string]string{
	"-2":   "invalid phone number or unsupported country",
	"-999": "provider failed to send the message",
	"u":    "unknown message status",
	"-100": "missing or empty parameters",
	"-110": "wrong api key",
	"-113": "insufficient balance",
	"-115": "sender name not available",
	"-116": "invalid sender name",
}

// TweetSMSCredentials are read on every call so that settings saved
// through the API apply immediately
type TweetSMSCredentials struct {
	APIKey     string
	SenderName string
}

// CredentialsFunc loads the current TweetSMS credentials
type CredentialsFunc func(ctx context.Context) (TweetSMSCredentials, error)

// TweetSMSGateway talks to the TweetSMS HTTP API
type TweetSMSGateway struct {
	BaseURL     string
	credentials CredentialsFunc
	httpClient  *http.Client
}

// NewTweetSMSGateway creates a new TweetSMS gateway
func NewTweetSMSGateway(baseURL string, credentials CredentialsFunc) *TweetSMSGateway {
	return &TweetSMSGateway{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendSMS sends an SMS. A "1:<id>:<mobile>" reply is success.
func (g *TweetSMSGateway) SendSMS(ctx context.Context, to, message string) (string, error) {
	creds, err := g.credentials(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(creds.APIKey) == "" {
		return "", ErrNotConfigured
	}

	body, err := g.call(ctx, url.Values{
		"comm":    {"sendsms"},
		"api_key": {creds.APIKey},
		"to":      {to},
		"message": {message},
		"sender":  {creds.SenderName},
	})
	if err != nil {
		return "", err
	}
	return parseSendResponse(body)
}

// GetDeliveryStatus is not offered by TweetSMS; accepted messages are reported as sent
func (g *TweetSMSGateway) GetDeliveryStatus(context.Context, string) (string, error) {
	return StatusSent, nil
}

// CheckBalance queries the remaining account balance
func (g *TweetSMSGateway) CheckBalance(ctx context.Context) (decimal.Decimal, error) {
	creds, err := g.credentials(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if strings.TrimSpace(creds.APIKey) == "" {
		return decimal.Zero, ErrNotConfigured
	}

	body, err := g.call(ctx, url.Values{
		"comm":    {"chk_balance"},
		"api_key": {creds.APIKey},
	})
	if err != nil {
		return decimal.Zero, err
	}
	return parseBalanceResponse(body)
}

func (g *TweetSMSGateway) call(ctx context.Context, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"/api.php?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return strings.TrimSpace(string(body)), nil
}

func parseSendResponse(body string) (string, error) {
	parts := strings.Split(body, ":")
	if len(parts) > 1 && parts[0] == "1" {
		return parts[1], nil
	}
	msg, ok := tweetSMSErrors[body]
	if !ok {
		msg = "unexpected response: " + body
	}
	return "", &ProviderError{Gateway: TweetSMSName, Code: body, Message: msg}
}

func parseBalanceResponse(body string) (decimal.Decimal, error) {
	balance, err := decimal.NewFromString(body)
	if err == nil && !balance.IsNegative() {
		return balance, nil
	}
	msg, ok := tweetSMSErrors[body]
	if !ok {
		msg = "unexpected balance response: " + body
	}
	return decimal.Zero, &ProviderError{Gateway: TweetSMSName, Code: body, Message: msg}
}
