package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello there"}},
			},
		})
	}))
	defer server.Close()

	client := NewChatClient(ChatConfig{BaseURL: server.URL + "/v1", APIKey: "sk-test", Model: "gpt-3.5-turbo"})
	answer, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	assert.Equal(t, "hello there", answer)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])
}

func TestCompleteNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided"}}`)
	}))
	defer server.Close()

	client := NewChatClient(ChatConfig{BaseURL: server.URL, Model: "gpt-3.5-turbo"})
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer server.Close()

	client := NewChatClient(ChatConfig{BaseURL: server.URL, Model: "gpt-3.5-turbo"})
	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestStreamCompleteAssemblesDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewChatClient(ChatConfig{BaseURL: server.URL, Model: "gpt-3.5-turbo"})

	var chunks []string
	full, err := client.StreamComplete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", full)
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
}

func TestStreamCompleteCallbackErrorStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewChatClient(ChatConfig{BaseURL: server.URL, Model: "gpt-3.5-turbo"})
	_, err := client.StreamComplete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, func(string) error {
		return fmt.Errorf("client went away")
	})
	assert.ErrorContains(t, err, "client went away")
}

func TestEmbedBatchOrdersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		var body struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Input, 2)

		// Return out of order; the client must restore input order.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0.3, 0.4}},
				{"index": 0, "embedding": []float32{0.1, 0.2}},
			},
		})
	}))
	defer server.Close()

	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: server.URL, Model: "all-MiniLM-L6-v2", Dimension: 2})
	vectors, err := client.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}

func TestEmbedBatchDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer server.Close()

	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: server.URL, Model: "all-MiniLM-L6-v2", Dimension: 384})
	_, err := client.Embed(context.Background(), "hello")
	assert.ErrorContains(t, err, "expected 384")
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer server.Close()

	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: server.URL, Model: "all-MiniLM-L6-v2"})
	_, err := client.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}
