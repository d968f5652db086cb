// Package fetcher retrieves historical price documents from the external
// source with on-disk caching, per-host rate limiting, and a bounded linear
// retry policy.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/parser"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/ratelimit"
)

// Config carries the fetch settings consumed by the Retriever.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	PageSize   int
	RawDir     string
}

// RetrievalError names the symbol whose retrieval failed and the last
// underlying cause after retries were exhausted.
type RetrievalError struct {
	Symbol string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.Symbol, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Retriever fetches and parses historical data for one symbol at a time.
// Raw responses are written to the cache and to the raw work directory
// before parsing, so a later parse failure never forces a re-fetch.
type Retriever struct {
	client *resty.Client
	cache  Cache
	parser *parser.Parser
	cfg    Config
	log    *zap.Logger
}

func New(cfg Config, cache Cache, limiter *ratelimit.Limiter, p *parser.Parser, log *zap.Logger) (*Retriever, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if err := os.MkdirAll(cfg.RawDir, 0o755); err != nil {
		return nil, fmt.Errorf("create raw directory: %w", err)
	}

	client := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests
		}).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			return cfg.RetryDelay * time.Duration(r.Request.Attempt), nil
		})

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		u, err := url.Parse(req.URL)
		if err != nil {
			return err
		}
		return limiter.Acquire(req.Context(), u.Host)
	})

	return &Retriever{
		client: client,
		cache:  cache,
		parser: p,
		cfg:    cfg,
		log:    log,
	}, nil
}

// GetHistoricalData fetches all pages of historical data for symbol within
// [start, end] and returns the concatenated raw rows. A zero end means now.
// The date range is validated before any network call. A failure fetching a
// page after the first stops pagination without error; partial data is
// acceptable.
func (r *Retriever) GetHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]models.RawRow, error) {
	sym, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if end.IsZero() {
		end = time.Now()
	}
	if start.After(end) {
		return nil, &RetrievalError{
			Symbol: sym,
			Err: fmt.Errorf("invalid date range: start %s after end %s",
				start.Format("2006-01-02"), end.Format("2006-01-02")),
		}
	}

	var rows []models.RawRow
	for offset := 0; ; offset += r.cfg.PageSize {
		page, err := r.fetchPage(ctx, sym, start, end, offset)
		if err != nil {
			if offset == 0 {
				return nil, err
			}
			// Partial data after at least one good page is acceptable.
			// Logged at warn so it reads differently from the normal
			// end-of-data debug line below.
			r.log.Warn("page fetch failed, keeping partial data",
				zap.String("symbol", sym), zap.Int("offset", offset), zap.Error(err))
			break
		}
		if len(page) == 0 {
			r.log.Debug("pagination complete",
				zap.String("symbol", sym), zap.Int("offset", offset))
			break
		}
		rows = append(rows, page...)
	}
	return rows, nil
}

func (r *Retriever) fetchPage(ctx context.Context, sym string, start, end time.Time, offset int) ([]models.RawRow, error) {
	key := cacheKey(sym, start, end, offset)

	if data, ok, err := r.cache.Get(ctx, key); err != nil {
		r.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		r.log.Debug("cache hit", zap.String("key", key))
		return r.parser.Parse(string(data))
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"period1": strconv.FormatInt(start.Unix(), 10),
			"period2": strconv.FormatInt(end.Unix(), 10),
			"offset":  strconv.Itoa(offset),
		}).
		Get(fmt.Sprintf("%s/quote/%s/history", r.cfg.BaseURL, url.PathEscape(sym)))
	if err != nil {
		return nil, &RetrievalError{Symbol: sym, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &RetrievalError{Symbol: sym, Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}

	body := resp.Body()
	if err := r.cache.Set(ctx, key, body); err != nil {
		r.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	if err := r.saveRaw(sym, start, offset, body); err != nil {
		r.log.Warn("raw file write failed", zap.String("symbol", sym), zap.Error(err))
	}

	return r.parser.Parse(string(body))
}

// saveRaw writes the raw response into the raw work area for the file
// processor, via a temp file and an atomic rename.
func (r *Retriever) saveRaw(sym string, start time.Time, offset int, body []byte) error {
	name := fmt.Sprintf("%s_%s.html", sym, start.Format("2006-01-02"))
	if offset > 0 {
		name = fmt.Sprintf("%s_%s_%d.html", sym, start.Format("2006-01-02"), offset)
	}

	tmp := filepath.Join(r.cfg.RawDir, ".tmp-"+name)
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(r.cfg.RawDir, name))
}

func cacheKey(sym string, start, end time.Time, offset int) string {
	return fmt.Sprintf("%s_%s_%s_%d",
		sym, start.Format("2006-01-02"), end.Format("2006-01-02"), offset)
}
