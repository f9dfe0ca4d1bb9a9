package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-arb-lab/internal/solana"
)

func TestCheckRPC(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getSlot", req.Method)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": 250000000})
	}))
	defer server.Close()

	var logs bytes.Buffer
	err := checkRPC(context.Background(), solana.NewHTTPClient(server.URL), log.New(&logs, "", 0))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "RPC endpoint at slot 250000000")
}

func TestCheckRPC_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	rpc := solana.NewHTTPClient(server.URL, solana.WithMaxRetries(0))
	err := checkRPC(context.Background(), rpc, log.New(&bytes.Buffer{}, "", 0))
	assert.Error(t, err)
}

func TestBuildSources(t *testing.T) {
	dir := t.TempDir()
	listing := filepath.Join(dir, "raydium.json")
	require.NoError(t, os.WriteFile(listing, []byte(`{}`), 0o644))

	sources, rpc := buildSources(" "+listing+" ,", "", nil, nil)
	assert.Len(t, sources, 1)
	assert.Nil(t, rpc)

	sources, rpc = buildSources(listing, "http://localhost:8899", nil, nil)
	assert.Len(t, sources, 2)
	assert.NotNil(t, rpc)
}
