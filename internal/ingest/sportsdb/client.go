package sportsdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	BaseURL = "https://www.thesportsdb.com/api/v1/json"

	// DemoAPIKey is TheSportsDB's public test key
	DemoAPIKey = "3"

	DefaultTimeout = 15 * time.Second
)

// Client handles TheSportsDB API requests
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// New creates a TheSportsDB client. Empty baseURL or apiKey fall back to the
// public endpoint and demo key.
func New(baseURL, apiKey string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if apiKey == "" {
		apiKey = DemoAPIKey
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		logger:     logger.WithField("component", "sportsdb-client"),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// SeasonEventsURL builds the eventsseason.php URL for a league season
func (c *Client) SeasonEventsURL(leagueID int, season string) string {
	q := url.Values{}
	q.Set("id", strconv.Itoa(leagueID))
	q.Set("s", season)
	return fmt.Sprintf("%s/%s/eventsseason.php?%s", c.baseURL, url.PathEscape(c.apiKey), q.Encode())
}

// FetchSeasonBody fetches the raw eventsseason.php response for a league season
func (c *Client) FetchSeasonBody(ctx context.Context, leagueID int, season string) ([]byte, error) {
	return c.fetch(ctx, c.SeasonEventsURL(leagueID, season))
}

// FetchSeasonEvents fetches and parses all events of a league season
func (c *Client) FetchSeasonEvents(ctx context.Context, leagueID int, season string) ([]RawEvent, error) {
	body, err := c.FetchSeasonBody(ctx, leagueID, season)
	if err != nil {
		return nil, err
	}
	return parseEvents(body), nil
}

// fetch makes an HTTP GET request and returns the body if it is JSON
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("url", rawURL).Debug("GET")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TheSportsDB returned status %d: %s", resp.StatusCode, snippet(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("TheSportsDB returned invalid JSON: %s", snippet(body))
	}

	return body, nil
}

func snippet(b []byte) string {
	return string(b[:min(len(b), 200)])
}
