package attendance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/kickoffhq/clubpush/internal/config/api"
)

func TestGenAIClient_Summarize(t *testing.T) {
	var gotPath, gotKey string
	var gotReq genRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "  Résumé du mois.\n"}}}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	client := NewGenAIClient(config.Summarizer{
		Endpoint: ts.URL,
		Model:    "gemini-1.5-flash",
		APIKey:   "key-123",
		Timeout:  5 * time.Second,
	})

	text, err := client.Summarize(context.Background(), "les données")
	require.NoError(t, err)
	assert.Equal(t, "Résumé du mois.", text)
	assert.Equal(t, "/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "key-123", gotKey)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "les données", gotReq.Contents[0].Parts[0].Text)
}

func TestGenAIClient_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewGenAIClient(config.Summarizer{Endpoint: ts.URL, Model: "m", Timeout: time.Second})
	_, err := client.Summarize(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGenAIClient_NoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	client := NewGenAIClient(config.Summarizer{Endpoint: ts.URL, Model: "m", Timeout: time.Second})
	_, err := client.Summarize(context.Background(), "x")
	assert.Error(t, err)
}
