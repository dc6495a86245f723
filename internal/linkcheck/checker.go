// Package linkcheck verifies that checkpoint and log artifact links
// respond, with rate limiting and bounded retries.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/config"
)

const defaultRetryDelay = 2 * time.Second

// Status classifies a check outcome.
type Status string

const (
	// StatusOK means the URL answered with a 2xx or 3xx.
	StatusOK Status = "ok"

	// StatusBroken means the URL answered with a client error.
	StatusBroken Status = "broken"

	// StatusError means the URL could not be reached after retries.
	StatusError Status = "error"
)

// Ref is one artifact link to verify.
type Ref struct {
	CardID string `json:"card_id"`
	Kind   string `json:"kind"` // ckpt, log, citation
	URL    string `json:"url"`
	Line   int    `json:"line,omitempty"`
}

// Result is the outcome of checking one ref.
type Result struct {
	Ref
	Status     Status `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
}

// Collect gathers the checkable URLs of a card: ckpt/log artifact links
// and citation links.
func Collect(c *card.Card) []Ref {
	var refs []Ref

	add := func(kind, url string, line int) {
		if len(url) < 4 || url[:4] != "http" {
			return
		}
		refs = append(refs, Ref{CardID: c.ID, Kind: kind, URL: url, Line: line})
	}

	for _, cit := range c.Citations {
		add("citation", cit.URL, cit.Line)
	}
	for ti := range c.Tables {
		for _, row := range c.Tables[ti].Rows {
			add("ckpt", row.Ckpt, row.Line)
			add("log", row.Log, row.Line)
		}
	}

	return refs
}

// Checker performs rate-limited liveness checks.
type Checker struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// New creates a checker from config.
func New(cfg config.LinkCheckConfig) *Checker {
	r := cfg.Rate
	if r <= 0 {
		r = config.DefaultLinkCheckRate
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = config.DefaultLinkCheckRetries
	}

	return &Checker{
		client:     &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(r), 1),
		maxRetries: retries,
		retryDelay: defaultRetryDelay,
		timeout:    cfg.TimeoutOrDefault(),
	}
}

// CheckAll checks every ref in order. A canceled context aborts with the
// results gathered so far and the context error.
func (c *Checker) CheckAll(ctx context.Context, refs []Ref) ([]Result, error) {
	results := make([]Result, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.Check(ctx, ref))
	}
	return results, nil
}

// Check verifies one ref: HEAD first, GET when the server rejects HEAD,
// retrying transient failures with a delay.
func (c *Checker) Check(ctx context.Context, ref Ref) Result {
	result := Result{Ref: ref}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		result.Attempts = attempt + 1

		if attempt > 0 {
			select {
			case <-ctx.Done():
				result.Status = StatusError
				result.Error = ctx.Err().Error()
				return result
			case <-time.After(c.retryDelay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			result.Status = StatusError
			result.Error = err.Error()
			return result
		}

		code, err := c.request(ctx, http.MethodHead, ref.URL)
		if err == nil && (code == http.StatusMethodNotAllowed || code == http.StatusForbidden) {
			// some artifact hosts reject HEAD
			code, err = c.request(ctx, http.MethodGet, ref.URL)
		}

		switch {
		case err != nil:
			lastErr = err
			continue
		case code >= 500:
			lastErr = fmt.Errorf("server answered %d", code)
			continue
		case code >= 400:
			result.Status = StatusBroken
			result.StatusCode = code
			return result
		default:
			result.Status = StatusOK
			result.StatusCode = code
			return result
		}
	}

	result.Status = StatusError
	if lastErr != nil {
		result.Error = lastErr.Error()
	}
	return result
}

// request performs one bounded request and discards the body.
func (c *Checker) request(ctx context.Context, method, url string) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
