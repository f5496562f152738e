// Package ingestion consumes the social post firehose and persists
// posts for velocity computation.
package ingestion

import "context"

// RawPost is one post as received from the feed, before validation.
type RawPost struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	Text        string `json:"text"`
	Author      string `json:"author"`
	CreatedAt   string `json:"created_at"`
	Retweets    int    `json:"retweets"`
	Replies     int    `json:"replies"`
	Quotes      int    `json:"quotes"`
	Impressions int    `json:"impressions"`
}

// PostSource provides a stream of raw posts from an external feed.
type PostSource interface {
	// Subscribe returns a channel of raw posts. The channel is closed
	// when the context is cancelled.
	Subscribe(ctx context.Context) (<-chan *RawPost, error)
}

// TickerResolver reports known company names for a ticker. A ticker
// that resolves to no names is treated as an unknown symbol.
type TickerResolver interface {
	CompanyNames(ctx context.Context, ticker string) []string
}
