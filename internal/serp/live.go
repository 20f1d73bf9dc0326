package serp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html"

	"solardash/internal/validation"
)

// DefaultUserAgent mimics a desktop browser so the results page renders the
// plain HTML layout.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrEmptyResponse is returned when the results page has no body.
var ErrEmptyResponse = errors.New("empty search results page")

// skipHosts are search-engine-internal, cache and video hosts.
var skipHosts = []string{
	"google.com",
	"googleusercontent.com",
	"gstatic.com",
	"googleadservices.com",
	"bing.com",
	"msn.com",
	"duckduckgo.com",
	"youtube.com",
	"youtu.be",
	"vimeo.com",
}

// LiveOptions configures the live scraper.
type LiveOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Retry     RetryConfig
	Logger    *slog.Logger
}

// Live fetches a search engine results page and extracts organic result links.
type Live struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	retry     RetryConfig
	logger    *slog.Logger
}

// NewLive creates a live source.
func NewLive(opts LiveOptions) *Live {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Live{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		retry:     opts.Retry,
		logger:    opts.Logger,
	}
}

// Mode reports ModeLive.
func (l *Live) Mode() string {
	return ModeLive
}

// Search fetches the results page for query in location.
func (l *Live) Search(ctx context.Context, query, location string) ([]Result, error) {
	searchURL, err := l.searchURL(query, location)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = l.retry.Do(ctx, "serp fetch", func() error {
		b, err := l.fetch(ctx, searchURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(l.baseURL)
	results, err := ExtractResults(body, validation.NormalizeDomain(base.Host), MaxResults)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("serp search completed", "query", query, "location", location, "results", len(results))
	return results, nil
}

func (l *Live) searchURL(query, location string) (string, error) {
	u, err := url.Parse(l.baseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid SERP base URL %q", l.baseURL)
	}
	q := strings.TrimSpace(query)
	if location != "" {
		q += " " + location
	}
	params := u.Query()
	params.Set("q", q)
	params.Set("num", "100")
	params.Set("hl", "en")
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// fetch retrieves the page body with colly.
func (l *Live) fetch(ctx context.Context, searchURL string) ([]byte, error) {
	var body []byte

	c := colly.NewCollector(
		colly.UserAgent(l.userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(l.timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("fetch results page: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, ErrEmptyResponse
	}
	return body, nil
}

// ExtractResults walks the document in order and returns the outbound result
// links, skipping search-engine-internal, cache and video links, deduplicated
// by hostname and numbered from 1. At most limit results are returned.
func ExtractResults(body []byte, searchHost string, limit int) ([]Result, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var results []Result
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if target, ok := resultTarget(attr(n, "href"), searchHost); ok {
				host := validation.NormalizeDomain(target.Host)
				if _, dup := seen[host]; !dup {
					seen[host] = struct{}{}
					results = append(results, Result{
						Title:    strings.TrimSpace(textContent(n)),
						URL:      target.String(),
						Position: len(results) + 1,
					})
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

// resultTarget unwraps redirect links and reports whether href is an organic
// result.
func resultTarget(href, searchHost string) (*url.URL, bool) {
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil, false
	}

	// Redirect wrappers: /url?q=... and //duckduckgo.com/l/?uddg=...
	if u.Path == "/url" || u.Path == "/l/" {
		for _, key := range []string{"q", "url", "uddg"} {
			if v := u.Query().Get(key); v != "" {
				if inner, err := url.Parse(v); err == nil {
					u = inner
				}
				break
			}
		}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	host := validation.NormalizeDomain(u.Host)
	if host == "" {
		return nil, false
	}
	if searchHost != "" && validation.HostMatches(host, searchHost) {
		return nil, false
	}
	for _, skip := range skipHosts {
		if validation.HostMatches(host, skip) {
			return nil, false
		}
	}
	if strings.Contains(u.RawQuery, "cache:") {
		return nil, false
	}
	return u, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
