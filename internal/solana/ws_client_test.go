package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func testWSConfig() *WSClientConfig {
	cfg := DefaultWSConfig()
	cfg.ReconnectDelay = 10 * time.Millisecond
	cfg.MaxReconnectDelay = 50 * time.Millisecond
	cfg.SubscribeTimeout = 2 * time.Second
	cfg.ReadTimeout = 5 * time.Second
	return &cfg
}

func accountNotificationMsg(subID int64, slot int64, data string) map[string]interface{} {
	return map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "accountNotification",
		"params": map[string]interface{}{
			"subscription": subID,
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": slot},
				"value":   accountJSON(data),
			},
		},
	}
}

// confirmSubscribe reads one accountSubscribe request and confirms it with subID.
func confirmSubscribe(t *testing.T, c *websocket.Conn, subID int64) (string, bool) {
	_, msg, err := c.ReadMessage()
	if err != nil {
		return "", false
	}

	var req struct {
		ID     uint64            `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(msg, &req); err != nil {
		t.Errorf("unmarshal request: %v", err)
		return "", false
	}
	if req.Method != "accountSubscribe" {
		t.Errorf("expected accountSubscribe, got %s", req.Method)
	}

	var pubkey string
	json.Unmarshal(req.Params[0], &pubkey)

	if err := c.WriteJSON(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  subID,
	}); err != nil {
		t.Errorf("write response: %v", err)
		return "", false
	}
	return pubkey, true
}

func drain(c *websocket.Conn) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWSClient_Connect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		drain(conn)
	}))
	defer server.Close()

	client, err := NewWSClient(context.Background(), wsURL(server), nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if client.closed.Load() {
		t.Error("client should not be closed")
	}
}

func TestWSClient_SubscribeAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer c.Close()

		pubkey, ok := confirmSubscribe(t, c, 23784)
		if !ok {
			return
		}
		if pubkey != "pool1" {
			t.Errorf("expected pubkey pool1, got %s", pubkey)
		}

		time.Sleep(50 * time.Millisecond)
		if err := c.WriteJSON(accountNotificationMsg(23784, 5199307, "AQID")); err != nil {
			t.Errorf("write notification: %v", err)
			return
		}
		drain(c)
	}))
	defer server.Close()

	client, err := NewWSClient(context.Background(), wsURL(server), testWSConfig())
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeAccount(context.Background(), "pool1")
	if err != nil {
		t.Fatalf("SubscribeAccount: %v", err)
	}

	select {
	case notif := <-ch:
		if notif.Pubkey != "pool1" {
			t.Errorf("expected pubkey pool1, got %s", notif.Pubkey)
		}
		if notif.Slot != 5199307 {
			t.Errorf("expected slot 5199307, got %d", notif.Slot)
		}
		if notif.Account.Data != "AQID" {
			t.Errorf("expected data AQID, got %s", notif.Account.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestWSClient_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		var req wsRequest
		if err := c.ReadJSON(&req); err != nil {
			return
		}
		c.WriteJSON(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32602, "message": "Invalid param"},
		})
		drain(c)
	}))
	defer server.Close()

	cfg := testWSConfig()
	cfg.SubscribeTimeout = 100 * time.Millisecond

	client, err := NewWSClient(context.Background(), wsURL(server), cfg)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if _, err := client.SubscribeAccount(context.Background(), "bad"); err == nil {
		t.Error("expected subscription to fail")
	}
}

func TestWSClient_Close(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		if _, ok := confirmSubscribe(t, c, 1); !ok {
			return
		}
		drain(c)
	}))
	defer server.Close()

	client, err := NewWSClient(context.Background(), wsURL(server), testWSConfig())
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}

	ch, err := client.SubscribeAccount(context.Background(), "pool1")
	if err != nil {
		t.Fatalf("SubscribeAccount: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Idempotent
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}

	if _, err := client.SubscribeAccount(context.Background(), "pool2"); err == nil {
		t.Error("expected error subscribing on closed client")
	}
}

func TestWSClient_ResubscribeAfterReconnect(t *testing.T) {
	var conns atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		n := conns.Add(1)
		if n == 1 {
			confirmSubscribe(t, c, 1)
			// Drop the first connection once the client has registered the subscription
			time.Sleep(100 * time.Millisecond)
			return
		}

		pubkey, ok := confirmSubscribe(t, c, 2)
		if !ok {
			return
		}
		if pubkey != "pool1" {
			t.Errorf("expected resubscribe for pool1, got %s", pubkey)
		}
		time.Sleep(200 * time.Millisecond)
		c.WriteJSON(accountNotificationMsg(2, 77, "AA=="))
		drain(c)
	}))
	defer server.Close()

	client, err := NewWSClient(context.Background(), wsURL(server), testWSConfig())
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeAccount(context.Background(), "pool1")
	if err != nil {
		t.Fatalf("SubscribeAccount: %v", err)
	}

	select {
	case notif := <-ch:
		if notif.Slot != 77 {
			t.Errorf("expected slot 77, got %d", notif.Slot)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for notification after reconnect")
	}

	if conns.Load() < 2 {
		t.Errorf("expected reconnect, got %d connections", conns.Load())
	}
}
