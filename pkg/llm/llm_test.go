package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() Request {
	return Request{System: "be brief", User: "CUSTOMER: hi", MaxTokens: 400, Temperature: 0.7, TopP: 0.9}
}

func TestGroqComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-3.1-8b-instant", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "CUSTOMER: hi", body.Messages[1].Content)
		assert.Equal(t, 400, body.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Hello! 😊  "}}]}`))
	}))
	defer srv.Close()

	client, err := NewGroq(Options{URL: srv.URL, Token: "gsk-test", Model: "llama-3.1-8b-instant"})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "Hello! 😊", text)
}

func TestGroqFailureKinds(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   Kind
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, kind: KindUnauthorized},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, kind: KindRateLimited},
		{name: "server error", status: http.StatusBadGateway, body: `{}`, kind: KindUnavailable},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, kind: KindMalformed},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"   "}}]}`, kind: KindMalformed},
		{name: "not json", status: http.StatusOK, body: `<html>`, kind: KindMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, err := NewGroq(Options{URL: srv.URL, Token: "k"})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), testRequest())
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestGroqTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewGroq(Options{URL: srv.URL, Token: "k"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Complete(ctx, testRequest())
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestHuggingFaceComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "be brief\n\nCUSTOMER: hi", body.Inputs)
		assert.False(t, body.Parameters.ReturnFullText)
		_, _ = w.Write([]byte(`[{"generated_text":"We have paracetamol in stock."}]`))
	}))
	defer srv.Close()

	client, err := NewHuggingFace(Options{URL: srv.URL, Token: "hf_x"})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "We have paracetamol in stock.", text)
}

func TestHuggingFaceSingleObjectAndLoading(t *testing.T) {
	var loading atomic.Bool
	loading.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if loading.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"generated_text":"ok then"}`))
	}))
	defer srv.Close()

	client, err := NewHuggingFace(Options{URL: srv.URL, Token: "hf_x"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), testRequest())
	assert.Equal(t, KindUnavailable, KindOf(err))

	loading.Store(false)
	text, err := client.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok then", text)
}

func TestOptionsValidation(t *testing.T) {
	_, err := NewGroq(Options{URL: "http://x"})
	require.Error(t, err)
	_, err = NewHuggingFace(Options{Token: "t"})
	require.Error(t, err)
}
