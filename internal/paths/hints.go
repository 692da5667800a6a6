package paths

import (
	"context"
	"crypto/tls"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hakim/sahin/internal/models"
	"golang.org/x/net/html"
)

// Hint fetch defaults.
const (
	DefaultHintLimit   = 15
	DefaultHintTimeout = 5 * time.Second
	DefaultUserAgent   = "Sahin/1.0"
)

// HintConfig controls the robots.txt / sitemap.xml fetcher
type HintConfig struct {
	Timeout   time.Duration
	VerifyTLS bool
	UserAgent string
	Limit     int
}

// HintFetcher collects paths a site announces itself, used when
// brute-forcing found nothing.
type HintFetcher struct {
	client *resty.Client
	limit  int
}

// NewHintFetcher builds a fetcher with its own HTTP client.
func NewHintFetcher(cfg HintConfig) *HintFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHintTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultHintLimit
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: !cfg.VerifyTLS}) //nolint:gosec

	return &HintFetcher{client: client, limit: cfg.Limit}
}

// Fetch gathers Disallow paths from robots.txt and page paths from
// sitemap.xml plus any sitemap robots.txt announces. Both files are tried
// over HTTPS first, then HTTP, whatever scheme baseURL carries; the first
// scheme that serves either file wins. Every network or parse failure
// just yields fewer hints.
func (h *HintFetcher) Fetch(ctx context.Context, baseURL string) models.PathHint {
	hint := models.PathHint{URL: baseURL}

	var robots, sitemap []string
	for _, base := range hintBases(baseURL) {
		var answered bool
		robots, sitemap, answered = h.fetchFrom(ctx, base)
		if answered || ctx.Err() != nil {
			break
		}
	}

	hint.Robots = capUnique(robots, h.limit)
	hint.Sitemap = capUnique(sitemap, h.limit)
	return hint
}

// fetchFrom reads robots.txt and sitemap.xml under one base. answered is
// true when either file was served.
func (h *HintFetcher) fetchFrom(ctx context.Context, base string) (robots, sitemap []string, answered bool) {
	if body, ok := h.get(ctx, base+"/robots.txt"); ok {
		answered = true
		disallow, sitemaps := ParseRobots(body)
		robots = append(robots, disallow...)
		for _, sm := range sitemaps {
			if body, ok := h.get(ctx, sm); ok {
				sitemap = append(sitemap, ParseSitemap(body)...)
			}
		}
	}

	if body, ok := h.get(ctx, base+"/sitemap.xml"); ok {
		answered = true
		sitemap = append(sitemap, ParseSitemap(body)...)
	}

	return robots, sitemap, answered
}

// hintBases returns the https and http bases for baseURL's host, in that
// order. An unparsable URL is used as given.
func hintBases(baseURL string) []string {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return []string{strings.TrimRight(baseURL, "/")}
	}
	path := strings.TrimRight(u.EscapedPath(), "/")
	return []string{
		"https://" + u.Host + path,
		"http://" + u.Host + path,
	}
}

func (h *HintFetcher) get(ctx context.Context, u string) (string, bool) {
	resp, err := h.client.R().SetContext(ctx).Get(u)
	if err != nil || !resp.IsSuccess() {
		return "", false
	}
	return resp.String(), true
}

// ParseRobots returns Disallow values (other than empty and "/") and
// Sitemap URLs. Directive names are case-insensitive.
func ParseRobots(body string) (disallow, sitemaps []string) {
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "disallow":
			if value != "" && value != "/" {
				disallow = append(disallow, value)
			}
		case "sitemap":
			if value != "" {
				sitemaps = append(sitemaps, value)
			}
		}
	}
	return disallow, sitemaps
}

// ParseSitemap extracts the path of every <loc> entry. Root and empty
// paths are skipped.
func ParseSitemap(body string) []string {
	var out []string
	z := html.NewTokenizer(strings.NewReader(body))
	inLoc := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; keep what was parsed
			return out
		case html.StartTagToken:
			name, _ := z.TagName()
			inLoc = string(name) == "loc"
		case html.EndTagToken:
			inLoc = false
		case html.TextToken:
			if !inLoc {
				continue
			}
			u, err := url.Parse(strings.TrimSpace(string(z.Text())))
			if err != nil || u.Path == "" || u.Path == "/" {
				continue
			}
			out = append(out, u.Path)
		}
	}
}

func capUnique(in []string, limit int) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
