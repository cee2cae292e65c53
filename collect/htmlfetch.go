package collect

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/glane/content"
)

var timeAttrRe = regexp.MustCompile(`<time[^>]*\bdatetime="([^"]+)"`)

// HTTPConfig configures the fallback fetcher.
type HTTPConfig struct {
	Timeout   time.Duration // default 30s
	MaxBytes  int64         // default 10MB
	UserAgent string

	// AllowPrivateHosts disables the private-address check on fetch
	// URLs. Meant for tests and local mirrors.
	AllowPrivateHosts bool
}

func (c *HTTPConfig) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) glane/1.0"
	}
}

// HTTPDetails is a browserless detail fetcher for pages that render
// enough server side. It cannot expand comments or read dynamic
// counters, so engagement extraction is best effort; use it when no
// browser is available or for dry experiments.
type HTTPDetails struct {
	client *http.Client
	cfg    HTTPConfig
	policy *bluemonday.Policy
	conv   *converter.Converter
}

// NewHTTPDetails creates the fallback fetcher.
func NewHTTPDetails(cfg HTTPConfig) *HTTPDetails {
	cfg.defaults()
	return &HTTPDetails{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		policy: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// FetchDetails retrieves the post page over plain HTTP and extracts
// what static HTML carries.
func (h *HTTPDetails) FetchDetails(ctx context.Context, ref content.CandidateRef) (*content.RawFields, error) {
	if !h.cfg.AllowPrivateHosts {
		if err := checkFetchURL(ref.ID); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("collect: new request: %w", err)
	}
	req.Header.Set("User-Agent", h.cfg.UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collect: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("collect: http %d for %s", resp.StatusCode, ref.ID)
	}

	body, err := boundedReadAll(resp.Body, h.cfg.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("collect: read body: %w", err)
	}
	html := string(body)

	raw := &content.RawFields{URL: ref.ID}
	if m := timeAttrRe.FindStringSubmatch(html); m != nil {
		raw.Timestamp = m[1]
	}

	text := h.markdown(html)
	raw.Text = text
	raw.LikesText = likesText(text)
	raw.CommText = commentsText(text)
	return raw, nil
}

// markdown sanitizes the HTML and converts it to markdown text. On
// conversion failure it falls back to the sanitized text as is.
func (h *HTTPDetails) markdown(html string) string {
	clean := h.policy.Sanitize(html)
	md, err := h.conv.ConvertString(clean)
	if err != nil || strings.TrimSpace(md) == "" {
		return strings.TrimSpace(clean)
	}
	return strings.TrimSpace(md)
}
