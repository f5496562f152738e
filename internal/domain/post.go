package domain

// Post represents one observed social mention of a ticker.
// Corresponds to posts table in PostgreSQL.
type Post struct {
	ID          string // opaque unique identifier
	Ticker      string // normalized ticker the post matched (e.g. "TSLA")
	Text        string // post body, passed through untouched
	Author      string // author username
	CreatedAt   string // raw timestamp as received from the feed
	CreatedAtMs int64  // parsed Unix timestamp in milliseconds, 0 if unparseable
	Retweets    int    // retweet count
	Replies     int    // reply count
	Quotes      int    // quote count
	Impressions int    // impression count
	StoredAt    int64  // record storage timestamp (ms)
}

// Engagement returns the combined engagement count for the post.
func (p *Post) Engagement() int {
	return p.Retweets + p.Replies + p.Quotes
}
