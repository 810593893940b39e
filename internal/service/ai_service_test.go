package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"milestofund/config"

	"github.com/stretchr/testify/require"
)

func newAIService(t *testing.T, handler http.HandlerFunc) *AIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAIService(&config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
}

func TestGenerateJoinsParts(t *testing.T) {
	svc := newAIService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Contains(t, req.Contents[0].Parts[0].Text, "Generate 5 compelling crowdfunding campaign titles")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "1. Solar Chai"}, {"text": "\n2. Sun Brew"}},
				},
				"finishReason": "STOP",
			}},
		})
	})

	out, err := svc.Generate(context.Background(), "title", map[string]string{"concept": "solar tea stall"})
	require.NoError(t, err)
	require.Equal(t, "1. Solar Chai\n2. Sun Brew", out)
}

func TestGenerateTruncationNote(t *testing.T) {
	svc := newAIService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content":      map[string]interface{}{"parts": []map[string]string{{"text": "partial draft"}}},
				"finishReason": "MAX_TOKENS",
			}},
		})
	})

	out, err := svc.Generate(context.Background(), "pitch", map[string]string{"pitch": "back my thing"})
	require.NoError(t, err)
	require.Contains(t, out, "partial draft")
	require.Contains(t, out, "showing first part")
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		message string
		want    error
	}{
		{"invalid key", http.StatusBadRequest, "API key not valid. API_KEY_INVALID", ErrAIInvalidKey},
		{"quota", http.StatusTooManyRequests, "Quota exceeded for quota metric", ErrAIQuota},
		{"other upstream", http.StatusInternalServerError, "internal error", ErrAIUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newAIService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]string{"message": tc.message},
				})
			})
			_, err := svc.Generate(context.Background(), "description", map[string]string{"title": "x"})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGenerateUnknownTool(t *testing.T) {
	svc := newAIService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called for an unknown tool")
	})
	_, err := svc.Generate(context.Background(), "haiku", nil)
	require.ErrorIs(t, err, ErrAIUnknownTool)
}

func TestGenerateNotConfigured(t *testing.T) {
	svc := NewAIService(&config.GeminiConfig{Timeout: time.Second})
	_, err := svc.Generate(context.Background(), "title", map[string]string{"concept": "x"})
	require.ErrorIs(t, err, ErrAINotConfigured)
}
