// Package websearch is the external fallback for autocomplete queries that
// find nothing locally. It wraps the Google Custom Search JSON API. Missing
// credentials, timeouts, and upstream failures all degrade to an empty
// result list; the fallback never surfaces an error to its caller.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	searchEndpoint = "https://www.googleapis.com/customsearch/v1"
	maxResults     = 5
	defaultTimeout = 5 * time.Second
)

// systemContext enriches the web query with the terminology system's domain.
var systemContext = map[string]string{
	"siddha":       "Siddha medicine",
	"ayurveda":     "Ayurveda medicine",
	"unani":        "Unani medicine",
	"ayurveda-sat": "Ayurveda SAT",
}

// Result is one web hit, shaped like a catalog entry with provenance.
type Result struct {
	Code       string `json:"code"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Source     string `json:"source"`
	Link       string `json:"link"`
}

// Client calls the Custom Search API.
type Client struct {
	apiKey     string
	engineID   string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds web-search credentials and settings.
type Config struct {
	APIKey   string
	EngineID string
	// Endpoint overrides the API URL; used by tests.
	Endpoint string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// New creates a web-search client. An unconfigured client (empty credentials)
// is valid and always returns no results.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = searchEndpoint
	}
	return &Client{
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.engineID != ""
}

// searchResponse is the slice of the API response we consume.
type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
}

// Search looks the query up on the web with the system's domain context
// appended. Any failure degrades to an empty list.
func (c *Client) Search(ctx context.Context, query, system string) []Result {
	if !c.Enabled() {
		return nil
	}

	domainCtx, ok := systemContext[system]
	if !ok {
		domainCtx = "traditional medicine"
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", fmt.Sprintf("%s %s term definition", query, domainCtx))
	params.Set("num", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		c.logger.Warn("web search request build failed", zap.Error(err))
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("web search failed", zap.Error(err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("web search returned non-200", zap.Int("status", resp.StatusCode))
		return nil
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warn("web search response not parseable", zap.Error(err))
		return nil
	}

	results := make([]Result, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		results = append(results, Result{
			Code:       fmt.Sprintf("WEB-%d", i+1),
			Term:       item.Title,
			Definition: item.Snippet,
			Source:     "web_search",
			Link:       item.Link,
		})
	}
	return results
}
