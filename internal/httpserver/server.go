// Package httpserver serves the finance widget API with per-client
// rate limiting and response caching.
package httpserver

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"social-velocity-lab/internal/cache"
	"social-velocity-lab/internal/catalog"
	"social-velocity-lab/internal/domain"
	"social-velocity-lab/internal/observability"
	"social-velocity-lab/internal/widgets"
)

const widgetPathPrefix = "/api/widgets/finance/"

// Server handles widget API requests.
type Server struct {
	builder *widgets.Builder
	cache   *cache.TTL
	limiter *cache.RateLimiter
	logger  *log.Logger
}

// NewServer creates a widget API server.
func NewServer(builder *widgets.Builder, ttl *cache.TTL, limiter *cache.RateLimiter, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		builder: builder,
		cache:   ttl,
		limiter: limiter,
		logger:  logger,
	}
}

// Handler returns the API route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc(widgetPathPrefix, s.handleWidget)
	return mux
}

// response is the envelope for every widget API reply.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Cached  bool        `json:"cached"`
	Error   string      `json:"error,omitempty"`
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !s.limiter.Allow(clientIP(r)) {
		observability.RecordRateLimited()
		s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	widget := strings.TrimPrefix(r.URL.Path, widgetPathPrefix)

	key := cacheKey(widget, r.URL.Query())
	if data, ok := s.cache.Get(key); ok {
		observability.RecordWidgetRequest(widget, "hit")
		w.Header().Set("X-Cache", "HIT")
		s.writeJSON(w, http.StatusOK, response{Success: true, Data: data, Cached: true})
		return
	}

	start := time.Now()
	data, status, errMsg := s.build(r.Context(), widget, r.URL.Query())
	if errMsg != "" {
		s.writeError(w, status, errMsg)
		return
	}
	observability.RecordWidgetBuild(widget, time.Since(start).Seconds())
	observability.RecordWidgetRequest(widget, "miss")

	s.cache.Set(key, data)
	w.Header().Set("X-Cache", "MISS")
	s.writeJSON(w, http.StatusOK, response{Success: true, Data: data, Cached: false})
}

// build dispatches to the widget builder. It returns the payload, or a
// status code and message describing why the request was rejected.
func (s *Server) build(ctx context.Context, widget string, query map[string][]string) (interface{}, int, string) {
	q := func(name string) string {
		if vs := query[name]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	switch widget {
	case domain.WidgetVelocityTracker:
		ticker := catalog.Normalize(q("ticker"))
		if ticker == "" {
			return nil, http.StatusBadRequest, "ticker parameter is required"
		}
		data, err := s.builder.VelocityTracker(ctx, ticker)
		return s.done(widget, data, err)

	case domain.WidgetAccelerationAlerts:
		ticker := catalog.Normalize(q("ticker"))
		if ticker == "" {
			return nil, http.StatusBadRequest, "ticker parameter is required"
		}
		data, err := s.builder.AccelerationAlerts(ctx, ticker)
		return s.done(widget, data, err)

	case domain.WidgetCategoryHeatmap:
		data, err := s.builder.CategoryHeatmap(ctx)
		return s.done(widget, data, err)

	case domain.WidgetRisingTickers:
		data, err := s.builder.RisingTickers(ctx, q("category"))
		return s.done(widget, data, err)

	case domain.WidgetPortfolioAggregator:
		raw := q("holdings")
		if raw == "" {
			return nil, http.StatusBadRequest, "holdings parameter is required"
		}
		var holdings []string
		for _, h := range strings.Split(raw, ",") {
			if t := catalog.Normalize(h); t != "" {
				holdings = append(holdings, t)
			}
		}
		if len(holdings) == 0 {
			return nil, http.StatusBadRequest, "holdings parameter is required"
		}
		data, err := s.builder.PortfolioAggregator(ctx, holdings)
		return s.done(widget, data, err)

	case domain.WidgetCorrelationRadar:
		ticker := catalog.Normalize(q("ticker"))
		if ticker == "" {
			return nil, http.StatusBadRequest, "ticker parameter is required"
		}
		data, err := s.builder.CorrelationRadar(ctx, ticker)
		return s.done(widget, data, err)

	default:
		return nil, http.StatusNotFound, "unknown widget: " + widget
	}
}

func (s *Server) done(widget string, data interface{}, err error) (interface{}, int, string) {
	if err != nil {
		s.logger.Printf("[api] build %s failed: %v", widget, err)
		return nil, http.StatusInternalServerError, "failed to build widget data"
	}
	return data, http.StatusOK, ""
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Printf("[api] encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, response{Success: false, Error: msg})
}

// clientIP resolves the caller's address, honoring the first entry of
// X-Forwarded-For when the request came through a proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// cacheKey builds a stable key from the widget name and query params.
func cacheKey(widget string, query map[string][]string) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(widget)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(query[k], ","))
	}
	return b.String()
}
