package smsgateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCreds(key string) CredentialsFunc {
	return func(context.Context) (TweetSMSCredentials, error) {
		return TweetSMSCredentials{APIKey: key, SenderName: "AidHub"}, nil
	}
}

func TestTweetSMS_SendSMS(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api.php", r.URL.Path)
		q := r.URL.Query()
		got = map[string]string{
			"comm": q.Get("comm"), "api_key": q.Get("api_key"), "to": q.Get("to"),
			"message": q.Get("message"), "sender": q.Get("sender"),
		}
		_, _ = w.Write([]byte("1:98765:970599000001\n"))
	}))
	defer srv.Close()

	g := NewTweetSMSGateway(srv.URL+"/", staticCreds("secret"))
	id, err := g.SendSMS(context.Background(), "970599000001", "hello & welcome")
	require.NoError(t, err)
	assert.Equal(t, "98765", id)
	assert.Equal(t, map[string]string{
		"comm": "sendsms", "api_key": "secret", "to": "970599000001",
		"message": "hello & welcome", "sender": "AidHub",
	}, got)
}

func TestTweetSMS_ErrorCodes(t *testing.T) {
	for code, want := range map[string]string{
		"-113": "insufficient balance",
		"-2":   "invalid phone number or unsupported country",
		"u":    "unknown message status",
		"oops": "unexpected response: oops",
	} {
		t.Run(code, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(code))
			}))
			defer srv.Close()

			_, err := NewTweetSMSGateway(srv.URL, staticCreds("k")).SendSMS(context.Background(), "1", "m")
			var perr *ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, code, perr.Code)
			assert.Equal(t, want, perr.Message)
		})
	}
}

func TestTweetSMS_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewTweetSMSGateway(srv.URL, staticCreds("k")).SendSMS(context.Background(), "1", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestTweetSMS_NotConfigured(t *testing.T) {
	g := NewTweetSMSGateway("http://127.0.0.1:0", staticCreds(" "))
	_, err := g.SendSMS(context.Background(), "1", "m")
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = g.CheckBalance(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestTweetSMS_CheckBalance(t *testing.T) {
	reply := "152.5"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chk_balance", r.URL.Query().Get("comm"))
		_, _ = w.Write([]byte(reply))
	}))
	defer srv.Close()
	g := NewTweetSMSGateway(srv.URL, staticCreds("k"))

	bal, err := g.CheckBalance(context.Background())
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("152.5")))

	reply = "-110"
	_, err = g.CheckBalance(context.Background())
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "wrong api key", perr.Message)
}
