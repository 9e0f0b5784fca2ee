// Package favicon decides which favicon reference is stored with a link.
//
// Public hosts get a reference to a public favicon service that the browser
// fetches later; nothing leaves the server. Private hosts (localhost,
// loopback and RFC 1918 ranges) are never sent to that service: the page is
// fetched once with a short timeout and scanned for a <link rel="icon">.
//
// The scan is a pair of regular expressions, not an HTML parser. It misses
// icons declared with unquoted attributes, with rel values listing other
// tokens ("icon apple-touch-icon"), or injected by scripts. Those links end
// up without a favicon and the client shows its placeholder.
package favicon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

const (
	DefaultServiceURL = "https://www.google.com/s2/favicons"
	DefaultTimeout    = 2 * time.Second

	userAgent   = "CtrlTab/1.0"
	maxPageSize = 1 << 20
	iconSize    = 32

	hitTTL  = 24 * time.Hour
	missTTL = 10 * time.Minute
)

// Both attribute orders: rel before href, and href before rel.
var iconPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<link[^>]*rel=["'](?:shortcut )?icon["'][^>]*href=["']([^"']+)["'][^>]*>`),
	regexp.MustCompile(`(?i)<link[^>]*href=["']([^"']+)["'][^>]*rel=["'](?:shortcut )?icon["'][^>]*>`),
}

var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
}

type Resolver struct {
	client     *http.Client
	serviceURL string
	timeout    time.Duration
	cache      ports.FaviconCache
	logger     *slog.Logger
}

type Option func(*Resolver)

// WithHTTPClient sets the scrape client. It is copied, and the copy's
// redirect policy is replaced.
func WithHTTPClient(c *http.Client) Option { return func(r *Resolver) { r.client = c } }

func WithServiceURL(u string) Option { return func(r *Resolver) { r.serviceURL = u } }

func WithTimeout(d time.Duration) Option { return func(r *Resolver) { r.timeout = d } }

// WithCache enables caching of private-host scrape results.
func WithCache(c ports.FaviconCache) Option { return func(r *Resolver) { r.cache = c } }

func WithLogger(l *slog.Logger) Option { return func(r *Resolver) { r.logger = l } }

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		serviceURL: DefaultServiceURL,
		timeout:    DefaultTimeout,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	client := http.Client{Timeout: r.timeout}
	if r.client != nil {
		client = *r.client
	}
	client.CheckRedirect = stayPrivate
	r.client = &client
	return r
}

// stayPrivate follows redirects only between private hosts. A redirect to
// any other host ends the scrape with the redirect response itself.
func stayPrivate(req *http.Request, via []*http.Request) error {
	if len(via) >= 5 || !IsPrivateHost(req.URL.Hostname()) {
		return http.ErrUseLastResponse
	}
	return nil
}

// Resolve returns the favicon reference for siteURL, or nil. An explicit
// value wins without any lookup. Failures are logged at debug level only.
func (r *Resolver) Resolve(ctx context.Context, siteURL, explicit string) *string {
	if explicit != "" {
		return &explicit
	}

	page, err := url.Parse(siteURL)
	if err != nil || page.Hostname() == "" {
		r.logger.Debug("favicon: unparsable url", "url", siteURL, "error", err)
		return nil
	}

	host := page.Hostname()
	if IsPrivateHost(host) {
		return r.resolvePrivate(ctx, page)
	}

	ref := fmt.Sprintf("%s?domain=%s&sz=%d", r.serviceURL, url.QueryEscape(host), iconSize)
	return &ref
}

func (r *Resolver) resolvePrivate(ctx context.Context, page *url.URL) *string {
	key := page.String()
	if r.cache != nil {
		ref, found, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Debug("favicon: cache lookup failed", "url", key, "error", err)
		} else if found {
			if ref == "" {
				return nil
			}
			return &ref
		}
	}

	ref, err := r.scrape(ctx, page)
	if err != nil {
		r.logger.Debug("favicon: scrape failed", "url", key, "error", err)
	}

	if r.cache != nil {
		ttl := hitTTL
		if ref == "" {
			ttl = missTTL
		}
		if err := r.cache.Set(ctx, key, ref, ttl); err != nil {
			r.logger.Debug("favicon: cache store failed", "url", key, "error", err)
		}
	}

	if ref == "" {
		return nil
	}
	return &ref
}

func (r *Resolver) scrape(ctx context.Context, page *url.URL) (string, error) {
	if page.Scheme != "http" && page.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", page.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", err
	}

	href := FindIconHref(body)
	if href == "" {
		return "", fmt.Errorf("no icon link in page")
	}

	icon, err := page.Parse(href)
	if err != nil {
		return "", fmt.Errorf("bad icon href %q: %w", href, err)
	}
	return icon.String(), nil
}

// FindIconHref returns the href of the first icon <link> in html, or "".
func FindIconHref(html []byte) string {
	for _, re := range iconPatterns {
		if m := re.FindSubmatch(html); m != nil {
			return strings.TrimSpace(string(m[1]))
		}
	}
	return ""
}

// IsPrivateHost reports whether host must stay off third-party services.
func IsPrivateHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range privatePrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

var _ ports.FaviconResolver = (*Resolver)(nil)
