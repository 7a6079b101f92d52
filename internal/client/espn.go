package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"ncaab_v2/ingestion/internal/metrics"
)

// Division I group filter for the events endpoint
const groupDivisionI = "52"

// Client talks to the upstream sports API. Two hosts are involved: the
// core API serves paginated reference data ($ref links everywhere), the
// site API serves the combined game summary.
type Client struct {
	baseURL     string
	siteBaseURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
	coreBreaker *gobreaker.CircuitBreaker
	siteBreaker *gobreaker.CircuitBreaker
	maxRetries  int
	retryDelay  time.Duration
	cache       ResponseCache
}

// ResponseCache stores raw responses for reference payloads that change
// slowly (athletes, venues, conference groups). Live data never goes
// through it.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

// SetCache attaches an optional response cache
func (c *Client) SetCache(rc ResponseCache) {
	c.cache = rc
}

// cached runs fetch through the response cache when one is attached
func (c *Client) cached(ctx context.Context, key string, ttl time.Duration, fetch func() ([]byte, error)) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			return body, nil
		}
	}
	body, err := fetch()
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, body, ttl)
	}
	return body, nil
}

// NewClient creates an API client. requestsPerSecond bounds the overall
// request rate across all workers.
func NewClient(baseURL, siteBaseURL string, timeout time.Duration, requestsPerSecond int) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}

	breaker := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state changed")
			},
		})
	}

	return &Client{
		baseURL:     baseURL,
		siteBaseURL: siteBaseURL,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		coreBreaker: breaker("api-core"),
		siteBreaker: breaker("api-site"),
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET with rate limiting, retry with exponential backoff,
// and circuit breaking. endpoint is the metrics label, not the URL.
func (c *Client) get(ctx context.Context, breaker *gobreaker.CircuitBreaker, endpoint, rawURL string, params map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", rawURL).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		result, err := breaker.Execute(func() (interface{}, error) {
			return c.doRequest(ctx, rawURL, params)
		})
		duration := time.Since(start)

		if err != nil {
			metrics.RecordAPICall(endpoint, "error", duration.Seconds())
			lastErr = err
			if retryable(err) && attempt < c.maxRetries {
				log.Warn().
					Str("url", rawURL).
					Err(err).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr
		}

		metrics.RecordAPICall(endpoint, "success", duration.Seconds())
		return result.([]byte), nil
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ncaab-v2-ingestion/1.0")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Set(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", req.URL.String()).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apiError{status: 0, err: fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apiError{status: resp.StatusCode, err: fmt.Errorf("failed to read response body: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, &apiError{status: resp.StatusCode, retryable: true,
			err: fmt.Errorf("API returned retryable status %d", resp.StatusCode)}
	case http.StatusNotFound:
		return nil, &apiError{status: resp.StatusCode,
			err: fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)}
	default:
		return nil, &apiError{status: resp.StatusCode,
			err: fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(body, 200))}
	}
}

type apiError struct {
	status    int
	retryable bool
	err       error
}

func (e *apiError) Error() string { return e.err.Error() }
func (e *apiError) Unwrap() error { return e.err }

// ErrNotFound marks an upstream 404
var ErrNotFound = errors.New("resource not found")

// IsNotFound reports whether err is an upstream 404
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var ae *apiError
	return errors.As(err, &ae) && ae.status == http.StatusNotFound
}

func retryable(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.retryable || ae.status == 0
	}
	// Breaker-open errors are not retried inside the call; the next
	// request probes the half-open breaker instead.
	return false
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// paginated envelope used by every core API list endpoint
type page struct {
	Count     int               `json:"count"`
	PageSize  int               `json:"pageSize"`
	PageCount int               `json:"pageCount"`
	Items     []json.RawMessage `json:"items"`
}

// getPaginated walks every page of a core API list endpoint and returns
// the concatenated items. Items are usually bare {"$ref": ...} stubs.
func (c *Client) getPaginated(ctx context.Context, endpoint string, params map[string]string) ([]json.RawMessage, error) {
	merged := map[string]string{"lang": "en", "region": "us"}
	for k, v := range params {
		merged[k] = v
	}

	fullURL := c.baseURL + endpoint
	var items []json.RawMessage

	for pageNum := 1; ; pageNum++ {
		merged["page"] = strconv.Itoa(pageNum)
		body, err := c.get(ctx, c.coreBreaker, endpoint, fullURL, merged)
		if err != nil {
			return nil, err
		}

		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page %d of %s: %w", pageNum, endpoint, err)
		}
		items = append(items, p.Items...)

		if pageNum >= p.PageCount {
			break
		}
	}
	return items, nil
}

// GetEvents fetches all Division I event references for a date range.
// dates uses the upstream format, e.g. "20260110-20260117".
func (c *Client) GetEvents(ctx context.Context, dates string) ([]json.RawMessage, error) {
	items, err := c.getPaginated(ctx, "/events", map[string]string{
		"dates":  dates,
		"limit":  "1000",
		"groups": groupDivisionI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for %s: %w", dates, err)
	}
	return items, nil
}

// GetRef dereferences a "$ref" link from any payload
func (c *Client) GetRef(ctx context.Context, ref string) (json.RawMessage, error) {
	body, err := c.get(ctx, c.coreBreaker, "ref", ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ref %s: %w", ref, err)
	}
	return body, nil
}

// GetGameSummary fetches the combined summary (box score, betting lines,
// projection, line scores) for one event from the site API.
func (c *Client) GetGameSummary(ctx context.Context, eventID int) (json.RawMessage, error) {
	fullURL := c.siteBaseURL + "/summary"
	body, err := c.get(ctx, c.siteBreaker, "/summary", fullURL, map[string]string{
		"event": strconv.Itoa(eventID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summary for event %d: %w", eventID, err)
	}
	return body, nil
}

// GetRankingIndex fetches a season's poll index for one ranking type
// (1 = AP Poll, 2 = Coaches Poll).
func (c *Client) GetRankingIndex(ctx context.Context, season, rankingTypeID int) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("/seasons/%d/rankings/%d", season, rankingTypeID)
	body, err := c.get(ctx, c.coreBreaker, "/rankings", c.baseURL+endpoint, map[string]string{"lang": "en", "region": "us"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rankings for season %d type %d: %w", season, rankingTypeID, err)
	}
	return body, nil
}

// GetGroups fetches all conference group references for a season
func (c *Client) GetGroups(ctx context.Context, season, seasonTypeID int) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("/seasons/%d/types/%d/groups", season, seasonTypeID)
	items, err := c.getPaginated(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups for season %d: %w", season, err)
	}
	return items, nil
}

// GetStandings fetches one conference's standings
func (c *Client) GetStandings(ctx context.Context, season, seasonTypeID, groupID int) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("/seasons/%d/types/%d/groups/%d/standings/0", season, seasonTypeID, groupID)
	body, err := c.get(ctx, c.coreBreaker, "/standings", c.baseURL+endpoint, map[string]string{"lang": "en", "region": "us"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings for group %d: %w", groupID, err)
	}
	return body, nil
}

// GetAthlete fetches one athlete's profile. Profiles change rarely, so
// responses are cached for a day when a cache is attached.
func (c *Client) GetAthlete(ctx context.Context, season, athleteID int) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("/seasons/%d/athletes/%d", season, athleteID)
	body, err := c.cached(ctx, "athlete:"+strconv.Itoa(athleteID), 24*time.Hour, func() ([]byte, error) {
		return c.get(ctx, c.coreBreaker, "/athletes", c.baseURL+endpoint, map[string]string{"lang": "en", "region": "us"})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch athlete %d: %w", athleteID, err)
	}
	return body, nil
}

// GetVenue fetches one venue. Venues are effectively static; cached
// for a week when a cache is attached.
func (c *Client) GetVenue(ctx context.Context, venueID int) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("/venues/%d", venueID)
	body, err := c.cached(ctx, "venue:"+strconv.Itoa(venueID), 7*24*time.Hour, func() ([]byte, error) {
		return c.get(ctx, c.coreBreaker, "/venues", c.baseURL+endpoint, map[string]string{"lang": "en", "region": "us"})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venue %d: %w", venueID, err)
	}
	return body, nil
}

// DateRange formats a start/end pair in the upstream dates format
func DateRange(start, end time.Time) string {
	return start.Format("20060102") + "-" + end.Format("20060102")
}
