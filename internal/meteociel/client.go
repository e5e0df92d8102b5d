// Package meteociel implements the remote-source client: station catalogue
// discovery and per-day observation retrieval from meteociel.com.
package meteociel

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/tlevesque/meteodb/internal/archive"
	"github.com/tlevesque/meteodb/internal/crawl"
	"github.com/tlevesque/meteodb/internal/metrics"
)

// DefaultBaseURL is the production observation endpoint. The same URL serves
// the station-selection page (no query) and the per-day observation pages
// (code2/jour2/mois2/annee2 query).
const DefaultBaseURL = "https://www.meteociel.com/temps-reel/obs_villes.php"

// Config controls client behavior.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches station and observation pages through a Colly collector.
type Client struct {
	cfg     Config
	base    *colly.Collector
	archive archive.Provider
	logger  *zap.Logger
}

// New builds a Client. The archive provider may be nil to disable raw-page
// archival.
func New(cfg Config, archiveProvider archive.Provider, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if archiveProvider == nil {
		archiveProvider = &archive.NoOpProvider{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Revisits must stay allowed: retries and daily refreshes hit the same
	// URL repeatedly, and clones share the collector's visit storage.
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.WithTransport(newHTTPTransport())

	return &Client{
		cfg:     cfg,
		base:    c,
		archive: archiveProvider,
		logger:  logger,
	}
}

// get retrieves one page and returns the raw body bytes. Non-200 responses
// and transport failures are both reported as *crawl.FetchError; the caller
// decides on decoding.
func (c *Client) get(ctx context.Context, url, kind string) ([]byte, error) {
	var (
		body       []byte
		statusCode int
		fetchErr   error
	)
	start := time.Now()

	collector := c.base.Clone()
	// Cancellation reaches the underlying http.Request through the
	// collector context, so an aborted run does not strand the visit
	// goroutine until the transport timeout.
	collector.Context = ctx
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}
	collector.SetRequestTimeout(c.cfg.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		// The remote serves every page as ISO-8859-1, with or without a
		// charset declaration. Decoding happens here, once: forcing the
		// response encoding makes Colly normalize the body to UTF-8 and
		// keeps callers from re-decoding an already converted body.
		r.ResponseCharacterEncoding = "iso-8859-1"
	})
	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil && fetchErr == nil {
			fetchErr = err
		}
	}

	if fetchErr != nil || statusCode != http.StatusOK {
		metrics.RecordFetchError(kind)
		if statusCode != 0 && statusCode != http.StatusOK {
			return nil, &crawl.FetchError{URL: url, StatusCode: statusCode}
		}
		return nil, &crawl.FetchError{URL: url, Err: fetchErr}
	}

	metrics.RecordPage(kind, statusCode, time.Since(start))
	return body, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
