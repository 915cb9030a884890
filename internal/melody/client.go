package melody

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Devis28/melody-now/pkg/logger"
)

// DefaultPlaylistURL is the station playlist page scraped for track data.
const DefaultPlaylistURL = "https://www.radia.sk/radia/melody/playlist"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/129.0 Safari/537.36"

// Fetcher downloads the playlist page. Retries use exponential backoff since
// the upstream site intermittently refuses scrapers.
type Fetcher struct {
	url        string
	httpClient *http.Client
	maxRetries int
	log        *logger.Logger
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logger.Logger
}

// NewFetcher creates a playlist page fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	url := cfg.URL
	if url == "" {
		url = DefaultPlaylistURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 4
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("melody.fetch")
	}

	return &Fetcher{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		log:        log,
	}
}

// Fetch downloads the playlist page once.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "sk,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, f.url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// FetchWithRetry downloads the playlist page, retrying with exponential
// backoff (4s, 8s, 16s, ...) on failure.
func (f *Fetcher) FetchWithRetry(ctx context.Context) (string, error) {
	var lastErr error
	backoff := 4 * time.Second

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		html, err := f.Fetch(ctx)
		if err == nil {
			return html, nil
		}
		lastErr = err
		f.log.LogWithFields(map[string]interface{}{
			"attempt": attempt,
			"tries":   f.maxRetries,
			"error":   err,
		}).Warn("playlist fetch failed")

		if attempt == f.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", fmt.Errorf("giving up after %d tries: %w", f.maxRetries, lastErr)
}
