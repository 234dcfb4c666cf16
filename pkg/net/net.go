// Package net implements the HTTP service (§6): resolving and fetching a
// page's HTML/CSS/JS resources with a persistent cookie jar, the way a real
// browser keeps session state across navigations.
package net

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Client wraps an *http.Client with a shared cookie jar, so cookies set by
// one response are sent on subsequent requests to the same origin.
type Client struct {
	http *http.Client
}

// NewClient returns a Client with a fresh, empty cookie jar.
func NewClient() (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("net: creating cookie jar: %w", err)
	}
	return &Client{http: &http.Client{Jar: jar}}, nil
}

// Request fetches targetURL, sending Referer: referrer and, when payload is
// non-empty, a POST with an application/x-www-form-urlencoded body;
// otherwise a GET. It returns the response headers (lower-cased keys, first
// value only, matching the reference engine's single-valued header dict)
// and the decoded body.
func (c *Client) Request(targetURL, referrer, payload string) (map[string]string, string, error) {
	method := http.MethodGet
	var body io.Reader
	if payload != "" {
		method = http.MethodPost
		body = strings.NewReader(payload)
	}

	req, err := http.NewRequest(method, targetURL, body)
	if err != nil {
		return nil, "", fmt.Errorf("net: building request for %s: %w", targetURL, err)
	}
	if referrer != "" {
		req.Header.Set("Referer", referrer)
	}
	if payload != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Content-Length", fmt.Sprintf("%d", len(payload)))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("net: requesting %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("net: reading body of %s: %w", targetURL, err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}

	return headers, string(raw), nil
}

// ResolveURL resolves href against base the way an <a>/<link>/<script>
// reference is resolved against the document's own URL.
func ResolveURL(href, base string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("net: parsing base URL %q: %w", base, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("net: parsing href %q: %w", href, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// Origin returns the scheme+host origin of rawURL, used for the
// same-origin check in CSP and cross-origin XHR enforcement.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("net: parsing URL %q: %w", rawURL, err)
	}
	return u.Scheme + "://" + u.Host, nil
}
