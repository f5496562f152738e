package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"social-velocity-lab/internal/observability"
)

// FirehoseConfig configures firehose client behavior.
type FirehoseConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// HandshakeTimeout is timeout for the initial dial.
	HandshakeTimeout time.Duration
	// SubscribeQueries are the expanded search queries sent to the feed
	// after connecting. Empty means the feed pushes everything.
	SubscribeQueries []string
}

// subscribeRequest is the subscription message listing the search
// queries the feed should stream posts for.
type subscribeRequest struct {
	Action  string   `json:"action"`
	Queries []string `json:"queries,omitempty"`
}

// DefaultFirehoseConfig returns default firehose configuration.
func DefaultFirehoseConfig() FirehoseConfig {
	return FirehoseConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		HandshakeTimeout:  10 * time.Second,
	}
}

// FirehoseSource streams posts from a WebSocket feed of JSON messages,
// one post per message. It reconnects with exponential backoff on
// connection loss.
type FirehoseSource struct {
	endpoint string
	config   FirehoseConfig
	logger   *log.Logger
}

// NewFirehoseSource creates a firehose source for the given endpoint.
func NewFirehoseSource(endpoint string, config *FirehoseConfig, logger *log.Logger) *FirehoseSource {
	cfg := DefaultFirehoseConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FirehoseSource{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
	}
}

var _ PostSource = (*FirehoseSource)(nil)

// Subscribe connects to the feed and returns a channel of raw posts.
// The channel is closed when the context is cancelled.
func (s *FirehoseSource) Subscribe(ctx context.Context) (<-chan *RawPost, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect firehose: %w", err)
	}
	if err := s.subscribe(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe firehose: %w", err)
	}

	posts := make(chan *RawPost, 100)

	go func() {
		defer close(posts)
		defer func() {
			if conn != nil {
				conn.Close()
			}
		}()

		delay := s.config.ReconnectDelay

		for {
			if ctx.Err() != nil {
				return
			}

			if conn == nil {
				// Backoff before reconnect, doubling up to the cap.
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
				delay *= 2
				if delay > s.config.MaxReconnectDelay {
					delay = s.config.MaxReconnectDelay
				}

				observability.RecordFeedReconnect()
				next, err := s.dial(ctx)
				if err != nil {
					s.logger.Printf("[firehose] reconnect failed: %v", err)
					continue
				}
				if err := s.subscribe(next); err != nil {
					s.logger.Printf("[firehose] resubscribe failed: %v", err)
					next.Close()
					continue
				}
				conn = next
				delay = s.config.ReconnectDelay
				s.logger.Printf("[firehose] reconnected to %s", s.endpoint)
			}

			if err := s.readLoop(ctx, conn, posts); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Printf("[firehose] read error: %v, reconnecting in %v", err, delay)
			}
			conn.Close()
			conn = nil
		}
	}()

	return posts, nil
}

// subscribe sends the configured search queries to the feed.
func (s *FirehoseSource) subscribe(conn *websocket.Conn) error {
	if len(s.config.SubscribeQueries) == 0 {
		return nil
	}
	return conn.WriteJSON(subscribeRequest{
		Action:  "subscribe",
		Queries: s.config.SubscribeQueries,
	})
}

// dial establishes the WebSocket connection.
func (s *FirehoseSource) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

// readLoop reads messages until the connection fails or ctx is done.
func (s *FirehoseSource) readLoop(ctx context.Context, conn *websocket.Conn, posts chan<- *RawPost) error {
	for {
		if s.config.ReadTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout)); err != nil {
				return fmt.Errorf("set read deadline: %w", err)
			}
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var raw RawPost
		if err := json.Unmarshal(data, &raw); err != nil {
			s.logger.Printf("[firehose] skipping malformed message: %v", err)
			observability.RecordPostDropped("malformed")
			continue
		}

		select {
		case posts <- &raw:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
