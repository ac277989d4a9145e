// Package recon talks to the third-party lookup APIs behind the public
// features: Hunter.io, SecurityTrails and SerpAPI.
package recon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hackr_api/internal/common"
)

// ErrNoData means the upstream answered but carried no usable payload.
var ErrNoData = errors.New("upstream returned no data")

const defaultTimeout = 15 * time.Second

// Options configures the base URLs and keys of each upstream.
type Options struct {
	HunterBaseURL         string
	HunterAPIKey          string
	SecurityTrailsBaseURL string
	SecurityTrailsAPIKey  string
	SerpAPIBaseURL        string
	SerpAPIKey            string
	Timeout               time.Duration
}

type Client struct {
	http *http.Client
	opts Options
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	opts.HunterBaseURL = strings.TrimRight(opts.HunterBaseURL, "/")
	opts.SecurityTrailsBaseURL = strings.TrimRight(opts.SecurityTrailsBaseURL, "/")
	opts.SerpAPIBaseURL = strings.TrimRight(opts.SerpAPIBaseURL, "/")
	return &Client{
		http: &http.Client{Timeout: opts.Timeout},
		opts: opts,
	}
}

// VerifyEmail returns the "data" object of Hunter's email-verifier response as-is.
func (c *Client) VerifyEmail(ctx context.Context, email string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("api_key", c.opts.HunterAPIKey)

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.getJSON(ctx, c.opts.HunterBaseURL+"/v2/email-verifier?"+q.Encode(), nil, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return nil, ErrNoData
	}
	return body.Data, nil
}

// Subdomains lists the subdomain labels SecurityTrails knows for domain.
// Labels are returned without the parent domain.
func (c *Client) Subdomains(ctx context.Context, domain string) ([]string, error) {
	endpoint := c.opts.SecurityTrailsBaseURL + "/v1/domain/" + url.PathEscape(domain) + "/subdomains"
	headers := http.Header{}
	headers.Set("APIKEY", c.opts.SecurityTrailsAPIKey)

	var body struct {
		Subdomains []string `json:"subdomains"`
	}
	if err := c.getJSON(ctx, endpoint, headers, &body); err != nil {
		return nil, err
	}
	return body.Subdomains, nil
}

// SearchResult is one organic Google result.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search runs a Google query through SerpAPI and returns the organic results.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("api_key", c.opts.SerpAPIKey)
	q.Set("engine", "google")

	var body struct {
		OrganicResults []SearchResult `json:"organic_results"`
	}
	if err := c.getJSON(ctx, c.opts.SerpAPIBaseURL+"/search?"+q.Encode(), nil, &body); err != nil {
		return nil, err
	}
	if body.OrganicResults == nil {
		return []SearchResult{}, nil
	}
	return body.OrganicResults, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", common.ErrUpstream, req.URL.Host, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", common.ErrUpstream, err)
	}
	return nil
}
