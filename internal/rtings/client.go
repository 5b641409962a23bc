// Package rtings provides a client for the review site's catalog, detail page
// and graph data endpoints.
package rtings

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	defaultOrigin      = "https://www.rtings.com"
	defaultAssetOrigin = "https://i.rtings.com"
	defaultTimeout     = 30 * time.Second

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"
)

// Client talks to the review site. All requests carry the session cookie.
type Client struct {
	http        *resty.Client
	origin      string
	assetOrigin string
	session     string
	retries     int
	bypass      bool
}

// NewClient creates a new client for the given session token.
func NewClient(session string, opts ...Option) *Client {
	client := &Client{
		http:        resty.New(),
		origin:      defaultOrigin,
		assetOrigin: defaultAssetOrigin,
		session:     session,
	}
	client.http.SetTimeout(defaultTimeout)
	client.http.SetHeader("User-Agent", userAgent)
	client.http.SetHeader("Accept-Language", acceptLanguage)

	for _, opt := range opts {
		opt(client)
	}

	if client.bypass {
		client.http.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.http.GetClient().Transport)
	}

	if client.retries > 0 {
		client.http.
			SetRetryCount(client.retries).
			SetRetryWaitTime(time.Second).
			SetRetryMaxWaitTime(10 * time.Second).
			AddRetryCondition(isRetryable)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets the origin serving the API and the detail pages.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.origin = strings.TrimSuffix(base, "/")
		}
	}
}

// WithAssetURL sets the origin serving graph data blobs.
func WithAssetURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.assetOrigin = strings.TrimSuffix(base, "/")
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.http.SetTimeout(timeout)
		}
	}
}

// WithRetries sets how many extra attempts a failed request gets.
// Zero, the default, sends every request exactly once.
func WithRetries(retries int) Option {
	return func(client *Client) {
		if retries > 0 {
			client.retries = retries
		}
	}
}

// WithCloudflareBypass wraps the transport with browser-like TLS settings and headers.
func WithCloudflareBypass() Option {
	return func(client *Client) {
		client.bypass = true
	}
}

func (c *Client) cookie() string {
	return fmt.Sprintf("global-store=auto; pref-country=zz; _rtings_session=%s", c.session)
}

func isRetryable(res *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := res.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
