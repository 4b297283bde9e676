package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vzy-dashboard/backend/internal/models"
)

const (
	searchPath      = "/rest/api/3/search/jql"
	defaultPageSize = 100
	maxErrorBody    = 4 << 10
)

// TransportError is a non-success response from Jira. The fetch is aborted.
type TransportError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("jira http error: %s", e.Status)
	}
	return fmt.Sprintf("jira http error: %s: %s", e.Status, e.Body)
}

type Options struct {
	BaseURL   string
	Email     string
	APIToken  string
	PageSize  int
	RateLimit float64
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Client pages through the Jira Cloud search endpoint.
type Client struct {
	baseURL  string
	email    string
	token    string
	pageSize int
	http     *http.Client
	limiter  *rate.Limiter
	log      zerolog.Logger
}

func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.PageSize <= 0 || opts.PageSize > defaultPageSize {
		opts.PageSize = defaultPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		email:    opts.Email,
		token:    opts.APIToken,
		pageSize: opts.PageSize,
		http:     &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		limiter:  rate.NewLimiter(limit, 1),
		log:      log,
	}
}

type searchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults"`
	Fields        []string `json:"fields"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

type searchResponse struct {
	Issues        []models.Issue `json:"issues"`
	Total         *int           `json:"total"`
	NextPageToken string         `json:"nextPageToken"`
	IsLast        bool           `json:"isLast"`
}

// FetchAll returns every issue matched by jql, following nextPageToken until
// Jira stops returning one or sends an empty page.
func (c *Client) FetchAll(ctx context.Context, jql string) ([]models.Issue, error) {
	all := []models.Issue{}
	token := ""
	for {
		page, err := c.search(ctx, searchRequest{
			JQL:           jql,
			MaxResults:    c.pageSize,
			Fields:        []string{"*all"},
			NextPageToken: token,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Issues...)

		total := len(all)
		if page.Total != nil {
			total = *page.Total
		}
		c.log.Info().Int("fetched", len(all)).Int("total", total).
			Msgf("Fetched %d of %d issues...", len(all), total)

		token = page.NextPageToken
		if token == "" || len(page.Issues) == 0 {
			break
		}
	}
	c.log.Info().Int("total", len(all)).Msgf("Total issues fetched: %d", len(all))
	return all, nil
}

func (c *Client) search(ctx context.Context, body searchRequest) (searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return searchResponse{}, fmt.Errorf("rate limiter: %w", err)
	}

	b, err := json.Marshal(body)
	if err != nil {
		return searchResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(b))
	if err != nil {
		return searchResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.email, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return searchResponse{}, fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return searchResponse{}, &TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return searchResponse{}, fmt.Errorf("decode search response: %w", err)
	}
	return out, nil
}
