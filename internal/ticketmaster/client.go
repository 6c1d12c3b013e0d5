// internal/ticketmaster/client.go
package ticketmaster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/metrics"
)

// SourceName identifies this provider in records, logs and metrics.
const SourceName = "ticketmaster"

const (
	defaultBaseURL = "https://app.ticketmaster.com/discovery/v2"

	// The Discovery API caps page size at 200.
	pageSize = 200

	// Paging depth guard: the API answers "max paging depth exceeded" for
	// deep offsets, so the fetch truncates there instead.
	defaultMaxPages = 50

	rateLimitBackoff   = 5 * time.Second
	maxRateLimitTries  = 4
	transportRetryWait = 2 * time.Second
	minRequestInterval = 200 * time.Millisecond
)

// Client fetches event pages from the Ticketmaster Discovery API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	limiter    *rate.Limiter
	maxPages   int
	backoff    time.Duration
	retryWait  time.Duration
}

// NewClient creates and configures a new Client instance. The API key is
// not held by the client; it is passed explicitly to each fetch.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: newHTTPClient(30 * time.Second),
		logger:     logger,
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Every(minRequestInterval), 1),
		maxPages:   defaultMaxPages,
		backoff:    rateLimitBackoff,
		retryWait:  transportRetryWait,
	}
}

// NewClientForTest returns a client pointed at a stand-in server with
// request pacing disabled.
func NewClientForTest(logger *slog.Logger, baseURL string) *Client {
	c := NewClient(logger)
	c.baseURL = baseURL
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// FetchAll fetches every event for the given city filter, page by page.
// The sequence is finite and not restartable mid-stream; a new call starts
// over at page 0. Any page-level failure fails the whole fetch with no
// partial results.
func (c *Client) FetchAll(ctx context.Context, city, country, apiKey string) ([]Event, error) {
	var all []Event
	for page := 0; ; page++ {
		if page >= c.maxPages {
			c.logger.Warn("Reached maximum page depth, truncating fetch",
				"max_pages", c.maxPages, "events", len(all))
			break
		}

		c.logger.Debug("Fetching events page", "city", city, "page", page)
		resp, err := c.getPage(ctx, city, country, apiKey, page)
		if err != nil {
			return nil, err
		}
		metrics.PagesFetched.WithLabelValues(SourceName).Inc()

		if len(resp.Embedded.Events) == 0 {
			break
		}
		all = append(all, resp.Embedded.Events...)

		if resp.Page.Number >= resp.Page.TotalPages-1 {
			break
		}
	}
	return all, nil
}

// getPage fetches one page, retrying in place on 429 within the retry
// budget. Only the rate-limited page is refetched; earlier pages stay won.
func (c *Client) getPage(ctx context.Context, city, country, apiKey string, page int) (*searchResponse, error) {
	q := url.Values{}
	q.Set("apikey", apiKey)
	q.Set("city", city)
	q.Set("countryCode", country)
	q.Set("size", strconv.Itoa(pageSize))
	q.Set("page", strconv.Itoa(page))
	endpoint := fmt.Sprintf("%s/events.json?%s", c.baseURL, q.Encode())

	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, status, err := c.doRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		if status == http.StatusTooManyRequests {
			metrics.RateLimited.WithLabelValues(SourceName).Inc()
			if attempt >= maxRateLimitTries {
				return nil, &apperrors.RateLimitError{Page: page, Attempts: attempt}
			}
			c.logger.Warn("Rate limited, backing off",
				"page", page, "attempt", attempt, "backoff", c.backoff.String())
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		if status < 200 || status > 299 {
			return nil, &apperrors.UpstreamError{StatusCode: status, Body: truncate(string(body), 512)}
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode events page %d: %w", page, err)
		}
		return &resp, nil
	}
}

// doRequest performs one GET with a single retry on network-level failure.
func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, int, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Request failed, retrying once", "error", lastErr)
			select {
			case <-time.After(c.retryWait):
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, 0, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return body, resp.StatusCode, nil
	}
	return nil, 0, &apperrors.TransportError{Err: lastErr}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Raw Discovery API shapes; only the fields the mapper consumes.

type searchResponse struct {
	Embedded struct {
		Events []Event `json:"events"`
	} `json:"_embedded"`
	Page pageInfo `json:"page"`
}

type pageInfo struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// Event is a raw Discovery API event record, consumed once per fetch.
type Event struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	URL             string           `json:"url"`
	Dates           dates            `json:"dates"`
	Classifications []classification `json:"classifications"`
	Images          []image          `json:"images"`
	Embedded        struct {
		Venues []Venue `json:"venues"`
	} `json:"_embedded"`
}

type dates struct {
	Start  dateInfo `json:"start"`
	End    dateInfo `json:"end"`
	Status struct {
		Code string `json:"code"`
	} `json:"status"`
}

type dateInfo struct {
	DateTime string `json:"dateTime"`
}

type classification struct {
	Segment named `json:"segment"`
	Genre   named `json:"genre"`
}

type named struct {
	Name string `json:"name"`
}

type image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Venue is the raw venue payload embedded in an event.
type Venue struct {
	Name    string `json:"name"`
	Address struct {
		Line1 string `json:"line1"`
		Line2 string `json:"line2"`
	} `json:"address"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	PostalCode string `json:"postalCode"`
	State      struct {
		StateCode string `json:"stateCode"`
	} `json:"state"`
	Country struct {
		CountryCode string `json:"countryCode"`
	} `json:"country"`
}
