package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"social-velocity-lab/internal/catalog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsAddr(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestFirehoseSource_SubscribesWithQueries(t *testing.T) {
	subscribed := make(chan subscribeRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		// Read subscribe request
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req subscribeRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			t.Errorf("unmarshal subscribe request: %v", err)
			return
		}
		subscribed <- req

		// Stream one post, then keep the connection open.
		post := RawPost{ID: "p1", Ticker: "TSLA", Text: "hit", Author: "a", CreatedAt: "2025-06-17T14:00:00Z"}
		if err := conn.WriteJSON(post); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := DefaultFirehoseConfig()
	config.SubscribeQueries = []string{
		catalog.ExpandQuery("TSLA", catalog.CompanyNames("TSLA")),
	}
	source := NewFirehoseSource(wsAddr(server), &config, quietLogger())

	posts, err := source.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case req := <-subscribed:
		if req.Action != "subscribe" {
			t.Errorf("action = %q, want subscribe", req.Action)
		}
		if len(req.Queries) != 1 {
			t.Fatalf("queries length = %d, want 1", len(req.Queries))
		}
		if req.Queries[0] != "$TSLA OR #TSLA OR TSLA OR Tesla OR #Tesla" {
			t.Errorf("query = %q", req.Queries[0])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received a subscribe request")
	}

	select {
	case post := <-posts:
		if post.ID != "p1" || post.Ticker != "TSLA" {
			t.Errorf("post = %+v", post)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no post delivered after subscribing")
	}
}

func TestFirehoseSource_NoQueriesSendsNothing(t *testing.T) {
	received := make(chan []byte, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		// Push immediately; a subscribing client would send first.
		post := RawPost{ID: "p1", Ticker: "GME", CreatedAt: "2025-06-17T14:00:00Z"}
		if err := conn.WriteJSON(post); err != nil {
			return
		}
		if _, msg, err := conn.ReadMessage(); err == nil {
			received <- msg
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := NewFirehoseSource(wsAddr(server), nil, quietLogger())
	posts, err := source.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case post := <-posts:
		if post.Ticker != "GME" {
			t.Errorf("post = %+v", post)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no post delivered")
	}

	select {
	case msg := <-received:
		t.Errorf("client sent %q with no queries configured", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFirehoseSource_SkipsMalformedMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
			return
		}
		post := RawPost{ID: "p1", Ticker: "TSLA", CreatedAt: "2025-06-17T14:00:00Z"}
		if err := conn.WriteJSON(post); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := NewFirehoseSource(wsAddr(server), nil, quietLogger())
	posts, err := source.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case post := <-posts:
		if post.ID != "p1" {
			t.Errorf("post = %+v, want the valid post after the malformed one", post)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid post never delivered")
	}
}
