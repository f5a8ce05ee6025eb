package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMService(t *testing.T) {
	t.Run("returns the first choice", func(t *testing.T) {
		var gotBody completionRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
		}))
		defer srv.Close()

		svc := NewLLMService(srv.URL, "test-key", "google/gemini-2.5-flash")
		text, err := svc.Complete(context.Background(), "analyze this")

		require.NoError(t, err)
		assert.Equal(t, "hello", text)
		assert.Equal(t, "google/gemini-2.5-flash", gotBody.Model)
		require.Len(t, gotBody.Messages, 1)
		assert.Equal(t, "user", gotBody.Messages[0].Role)
		assert.Equal(t, "analyze this", gotBody.Messages[0].Content)
	})

	t.Run("non-2xx status wraps ErrDelegate", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(`{"error":"insufficient credits"}`))
		}))
		defer srv.Close()

		svc := NewLLMService(srv.URL, "test-key", "m")
		_, err := svc.Complete(context.Background(), "p")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDelegate))
		assert.ErrorContains(t, err, "402")
	})

	t.Run("empty completion wraps ErrDelegate", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		svc := NewLLMService(srv.URL, "test-key", "m")
		_, err := svc.Complete(context.Background(), "p")
		assert.True(t, errors.Is(err, ErrDelegate))
	})

	t.Run("deadline expiry wraps ErrDelegate", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		svc := NewLLMService(srv.URL, "test-key", "m")
		_, err := svc.Complete(ctx, "p")
		assert.True(t, errors.Is(err, ErrDelegate))
	})

	t.Run("transport failure wraps ErrDelegate", func(t *testing.T) {
		svc := NewLLMService("http://127.0.0.1:1", "test-key", "m")
		_, err := svc.Complete(context.Background(), "p")
		assert.True(t, errors.Is(err, ErrDelegate))
	})
}
