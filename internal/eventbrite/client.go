// internal/eventbrite/client.go
package eventbrite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	apperrors "city-events-sync/internal/errors"
	"city-events-sync/internal/metrics"
)

// SourceName identifies this provider in records, logs and metrics.
const SourceName = "eventbrite"

const (
	defaultBaseURL = "https://www.eventbriteapi.com/v3"

	defaultMaxPages    = 50
	rateLimitBackoff   = 5 * time.Second
	maxRateLimitTries  = 4
	transportRetryWait = 2 * time.Second
	minRequestInterval = 200 * time.Millisecond
)

// Client fetches an organization's events from the Eventbrite API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	limiter    *rate.Limiter
	maxPages   int
	backoff    time.Duration
	retryWait  time.Duration
}

// NewClient creates and configures a new Client instance. The provided
// token is used to create an authenticated http.Client.
func NewClient(token string, logger *slog.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = 30 * time.Second

	return &Client{
		httpClient: tc,
		logger:     logger,
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Every(minRequestInterval), 1),
		maxPages:   defaultMaxPages,
		backoff:    rateLimitBackoff,
		retryWait:  transportRetryWait,
	}
}

// FetchOrgEvents fetches all live events of one organization, following
// has_more_items pagination. Page-level failures fail the whole fetch.
func (c *Client) FetchOrgEvents(ctx context.Context, orgID string) ([]Event, error) {
	var all []Event
	for page := 1; ; page++ {
		if page > c.maxPages {
			c.logger.Warn("Reached maximum page depth, truncating fetch",
				"max_pages", c.maxPages, "events", len(all))
			break
		}

		c.logger.Debug("Fetching events page", "org_id", orgID, "page", page)
		resp, err := c.getPage(ctx, orgID, page)
		if err != nil {
			return nil, err
		}
		metrics.PagesFetched.WithLabelValues(SourceName).Inc()

		if len(resp.Events) == 0 {
			break
		}
		all = append(all, resp.Events...)

		if !resp.Pagination.HasMoreItems {
			break
		}
	}
	return all, nil
}

func (c *Client) getPage(ctx context.Context, orgID string, page int) (*eventsResponse, error) {
	q := url.Values{}
	q.Set("status", "live")
	q.Set("order_by", "start_asc")
	q.Set("expand", "venue,logo")
	q.Set("page", strconv.Itoa(page))
	endpoint := fmt.Sprintf("%s/organizations/%s/events/?%s", c.baseURL, orgID, q.Encode())

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
			if len(body) > 512 {
				body = body[:512]
			}
			return nil, &apperrors.UpstreamError{StatusCode: status, Body: string(body)}
		}

		var resp eventsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode events page %d: %w", page, err)
		}
		return &resp, nil
	}
}

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

// Raw Eventbrite shapes; only the fields the mapper consumes.

type eventsResponse struct {
	Events     []Event `json:"events"`
	Pagination struct {
		HasMoreItems bool `json:"has_more_items"`
	} `json:"pagination"`
}

// Event is a raw Eventbrite event record, consumed once per fetch.
type Event struct {
	ID   string `json:"id"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Start struct {
		UTC string `json:"utc"`
	} `json:"start"`
	End struct {
		UTC string `json:"utc"`
	} `json:"end"`
	URL    string `json:"url"`
	Status string `json:"status"`
	Venue  *Venue `json:"venue"`
	Logo   *struct {
		URL string `json:"url"`
	} `json:"logo"`
}

// Venue is the raw venue payload expanded into an event.
type Venue struct {
	Name    string `json:"name"`
	Address struct {
		Address1   string `json:"address_1"`
		Address2   string `json:"address_2"`
		City       string `json:"city"`
		PostalCode string `json:"postal_code"`
		Region     string `json:"region"`
		Country    string `json:"country"`
	} `json:"address"`
}
