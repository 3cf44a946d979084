// Package content fetches articles, pages and the content index from the
// static content host.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single request to the content host.
const DefaultTimeout = 15 * time.Second

// Client reads content from a static host rooted at a base URL. It never
// retries; callers decide what a failure means for their view.
type Client struct {
	baseURL string
	http    *http.Client
	cache   Cache
	ttl     time.Duration
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache memoizes successful responses in cache.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithTTL sets how long cached responses stay valid.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the host at baseURL. Without WithCache
// nothing is memoized.
func NewClient(baseURL string, opts ...Option) *Client {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		cache:   nopCache{},
		ttl:     DefaultTTL,
		log:     quiet,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the host root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// URL returns the absolute URL of a content path, escaping each segment.
func (c *Client) URL(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(segments, "/")
}

// FetchItem fetches {name}.md and {name}.json together and resolves the
// item image. Both halves must succeed.
func (c *Client) FetchItem(ctx context.Context, name string) (*Item, error) {
	name = strings.Trim(name, "/")

	var body, meta []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := c.get(gctx, c.URL(name+".md"))
		body = b
		return err
	})
	g.Go(func() error {
		b, err := c.get(gctx, c.URL(name+".json"))
		meta = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, c.fetchError(name, err)
	}

	item := &Item{}
	if err := json.Unmarshal(meta, item); err != nil {
		return nil, &FetchError{Name: name, URL: c.URL(name + ".json"), Err: fmt.Errorf("decoding metadata: %w", err)}
	}
	item.Name = name
	item.Content = string(body)
	item.Image = c.ResolveImage(ctx, name, item.Image)
	return item, nil
}

// FetchMetadata fetches only {name}.json. The image field is returned as
// stored on the host.
func (c *Client) FetchMetadata(ctx context.Context, name string) (*Item, error) {
	name = strings.Trim(name, "/")
	data, err := c.get(ctx, c.URL(name+".json"))
	if err != nil {
		return nil, c.fetchError(name, err)
	}
	item := &Item{}
	if err := json.Unmarshal(data, item); err != nil {
		return nil, &FetchError{Name: name, URL: c.URL(name + ".json"), Err: fmt.Errorf("decoding metadata: %w", err)}
	}
	item.Name = name
	return item, nil
}

// FetchContent fetches only the Markdown body {name}.md.
func (c *Client) FetchContent(ctx context.Context, name string) (string, error) {
	name = strings.Trim(name, "/")
	data, err := c.get(ctx, c.URL(name+".md"))
	if err != nil {
		return "", c.fetchError(name, err)
	}
	return string(data), nil
}

// FetchArticleContent fetches the body of an index entry.
func (c *Client) FetchArticleContent(ctx context.Context, name string) (string, error) {
	return c.FetchContent(ctx, ArticlePath(name))
}

// FetchIndex loads the content index. Order is kept exactly as served.
func (c *Client) FetchIndex(ctx context.Context) ([]Item, error) {
	u := c.URL(IndexPath)
	data, err := c.get(ctx, u)
	if err != nil {
		return nil, &IndexError{URL: u, StatusCode: statusOf(err), Err: err}
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &IndexError{URL: u, Err: fmt.Errorf("decoding index: %w", err)}
	}
	return items, nil
}

// FetchJSON decodes an arbitrary JSON document from the host into v.
func (c *Client) FetchJSON(ctx context.Context, p string, v any) error {
	data, err := c.get(ctx, c.URL(p))
	if err != nil {
		return c.fetchError(p, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", p, err)
	}
	return nil
}

// Exists reports whether the host serves p with a 2xx status.
func (c *Client) Exists(ctx context.Context, p string) bool {
	return c.exists(ctx, c.URL(p))
}

// ResolveImage applies the image policy for item name: absolute URLs are
// kept, relative ones resolve against the directory of name, and a missing
// image is probed as a sibling file by extension. An empty result means no
// image could be found.
func (c *Client) ResolveImage(ctx context.Context, name, image string) string {
	if image != "" {
		if IsAbsoluteURL(image) {
			return image
		}
		dir := path.Dir(strings.Trim(name, "/"))
		if dir == "." || dir == "/" {
			return c.baseURL + "/" + strings.TrimLeft(image, "/")
		}
		return c.baseURL + "/" + dir + "/" + image
	}

	for _, ext := range ImageExtensions {
		u := c.URL(name + ext)
		if c.exists(ctx, u) {
			return u
		}
	}
	c.log.WithField("name", name).Debug("no image found for item")
	return ""
}

// ResolveAsset rewrites the local-content placeholder "~/" to the base URL.
func (c *Client) ResolveAsset(src string) string {
	if strings.HasPrefix(src, "~/") {
		return c.baseURL + src[1:]
	}
	return src
}

// IsAbsoluteURL reports whether s carries a scheme or is protocol-relative.
func IsAbsoluteURL(s string) bool {
	if strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if data, ok := c.cache.Get(ctx, u); ok {
		c.log.WithField("url", u).Debug("content cache hit")
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{"url": u, "status": resp.StatusCode}).Debug("content fetched")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{url: u, code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", u, err)
	}
	c.cache.Put(ctx, u, data, c.ttl)
	return data, nil
}

// exists issues a GET and stops at the status line.
func (c *Client) exists(ctx context.Context, u string) bool {
	key := "exists:" + u
	if _, ok := c.cache.Get(ctx, key); ok {
		return true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	c.cache.Put(ctx, key, []byte{1}, c.ttl)
	return true
}

func (c *Client) fetchError(name string, err error) *FetchError {
	fe := &FetchError{Name: name, Err: err}
	var se *statusError
	if errors.As(err, &se) {
		fe.URL = se.url
		fe.StatusCode = se.code
	} else {
		var ue *url.Error
		if errors.As(err, &ue) {
			fe.URL = ue.URL
		}
	}
	return fe
}
