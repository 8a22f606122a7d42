package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gc := req["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", gc["responseMimeType"])

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{
		Model:   "gemini-2.0-flash",
		APIKey:  "secret",
		BaseURL: srv.URL,
	}, nil)

	doc, err := client.GenerateJSON(context.Background(), "extract this")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(doc))
}

func TestGenerateJSONNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{Model: "m", APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := client.GenerateJSON(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateJSONHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGeminiClient(Config{Model: "m", APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := client.GenerateJSON(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
