package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultSearchURL is the public symbol-search endpoint used to
// resolve tickers outside the static table. No API key required.
const DefaultSearchURL = "https://query1.finance.yahoo.com/v1/finance/search"

// Resolver looks up company names for tickers missing from the static
// table, caching results in memory. Empty results are cached too, to
// avoid repeated lookups for unknown symbols.
type Resolver struct {
	searchURL string
	client    *http.Client

	mu    sync.RWMutex
	cache map[string][]string
}

// NewResolver creates a resolver against the given search endpoint.
// An empty searchURL selects DefaultSearchURL.
func NewResolver(searchURL string) *Resolver {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	return &Resolver{
		searchURL: searchURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		cache:     make(map[string][]string),
	}
}

// searchResponse is the subset of the symbol-search payload we read.
type searchResponse struct {
	Quotes []struct {
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
	} `json:"quotes"`
}

// corporateSuffix splits a short name at the first corporate suffix so
// "Palantir Technologies Inc." also yields "Palantir".
var corporateSuffix = regexp.MustCompile(`\s+(?i:Inc|Corp|Ltd|LLC|Technologies|Holdings|Group|Co)\b`)

// CompanyNames resolves name variations for a ticker: static table
// first, then the cached remote lookup. Lookup failures degrade to an
// empty slice, never an error surfaced to widget paths.
func (r *Resolver) CompanyNames(ctx context.Context, ticker string) []string {
	t := Normalize(ticker)
	if names := CompanyNames(t); len(names) > 0 {
		return names
	}

	r.mu.RLock()
	names, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return names
	}

	names, err := r.fetch(ctx, t)
	if err != nil {
		names = nil
	}

	r.mu.Lock()
	r.cache[t] = names
	r.mu.Unlock()
	return names
}

// fetch queries the search endpoint for a single best-match quote.
func (r *Resolver) fetch(ctx context.Context, ticker string) ([]string, error) {
	q := url.Values{}
	q.Set("q", ticker)
	q.Set("quotesCount", "1")
	q.Set("newsCount", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.searchURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("symbol search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("symbol search: status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(parsed.Quotes) == 0 {
		return nil, nil
	}

	quote := parsed.Quotes[0]
	var names []string
	if quote.ShortName != "" {
		names = append(names, quote.ShortName)
	}
	if quote.LongName != "" && quote.LongName != quote.ShortName {
		names = append(names, quote.LongName)
	}
	if quote.ShortName != "" {
		simple := strings.TrimSpace(corporateSuffix.Split(quote.ShortName, 2)[0])
		if simple != "" && simple != quote.ShortName && len(simple) > 2 {
			names = append(names, simple)
		}
	}
	return names, nil
}
