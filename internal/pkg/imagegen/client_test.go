package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampCount(t *testing.T) {
	assert.Equal(t, 1, ClampCount(0))
	assert.Equal(t, 1, ClampCount(-3))
	assert.Equal(t, 1, ClampCount(1))
	assert.Equal(t, 4, ClampCount(4))
	assert.Equal(t, 6, ClampCount(6))
	assert.Equal(t, 6, ClampCount(99))
}

func TestGenerateParallelSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "a red fox", payload["prompt"])
		assert.Equal(t, float64(1), payload["n"])
		assert.Equal(t, "1024x1024", payload["size"])

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://cdn.example/img.png"}},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL}, nil)
	images, err := client.Generate(context.Background(), "a red fox", 3)

	require.NoError(t, err)
	assert.Len(t, images, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	for _, img := range images {
		assert.Equal(t, "https://cdn.example/img.png", img.URL)
		assert.Equal(t, "a red fox", img.Prompt)
		assert.NotEmpty(t, img.ID)
	}
}

func TestGeneratePartialFailureTolerated(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "capacity exceeded"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://cdn.example/ok.png"}},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "k", Endpoint: srv.URL}, nil)
	images, err := client.Generate(context.Background(), "prompt", 3)

	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestGenerateAllFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"message": "upstream down"})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "k", Endpoint: srv.URL}, nil)
	images, err := client.Generate(context.Background(), "prompt", 2)

	assert.Nil(t, images)
	assert.ErrorIs(t, err, ErrNoImagesGenerated)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestGenerateEmptyPrompt(t *testing.T) {
	client := NewClient(Options{APIKey: "k"}, nil)
	_, err := client.Generate(context.Background(), "   ", 1)
	assert.Error(t, err)
}
