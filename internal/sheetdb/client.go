// Package sheetdb posts survey result rows to a spreadsheet-backed REST API.
package sheetdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/mind-engage/mascot-survey/internal/survey"
)

var ErrNoEndpoint = errors.New("sheetdb: no endpoint configured")

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "sheetdb: " + e.Status
	}
	return fmt.Sprintf("sheetdb: %s: %s", e.Status, e.Body)
}

type Config struct {
	Endpoint string
	// Token is a static bearer token. Ignored when TokenURL is set.
	Token string

	// Client credentials for APIs behind an OAuth2 token endpoint.
	TokenURL     string
	ClientID     string
	ClientSecret string

	Timeout time.Duration
	// Rate and Burst bound outgoing requests. Zero means 1/s with burst 2.
	Rate  rate.Limit
	Burst int
}

type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

func New(cfg Config) *Client {
	ctx := context.Background()
	var h *http.Client
	switch {
	case cfg.TokenURL != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		h = cc.Client(ctx)
	case cfg.Token != "":
		h = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}))
	default:
		h = &http.Client{}
	}
	h.Timeout = cfg.Timeout
	if h.Timeout == 0 {
		h.Timeout = 15 * time.Second
	}
	r, b := cfg.Rate, cfg.Burst
	if r == 0 {
		r = 1
	}
	if b == 0 {
		b = 2
	}
	return &Client{endpoint: cfg.Endpoint, http: h, limiter: rate.NewLimiter(r, b)}
}

// Submit appends one row. The body is {"data": rec}. No retries.
func (c *Client) Submit(ctx context.Context, rec survey.Record) error {
	if c.endpoint == "" {
		return ErrNoEndpoint
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sheetdb: rate limit: %w", err)
	}
	body, err := json.Marshal(map[string]any{"data": rec})
	if err != nil {
		return fmt.Errorf("sheetdb: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheetdb: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sheetdb: post: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &StatusError{Code: res.StatusCode, Status: res.Status, Body: string(bytes.TrimSpace(msg))}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
