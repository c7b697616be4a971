package gemini

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Request is one outgoing Gemini fetch: a normalized absolute URL plus
// the optional query string that rides on the request line. Query is
// kept separate from the URL so input answers (status 10/11) can be
// attached to the page that asked for them.
type Request struct {
	URL   *url.URL
	Query string
}

// NewRequest parses and normalizes rawurl. The gemini scheme is
// assumed when the user typed a bare host, port 1965 is filled in when
// absent and an empty path becomes "/". The resulting URL is always
// absolute; a URL without a host is rejected.
func NewRequest(rawurl, query string) (*Request, error) {
	rawurl = strings.TrimSpace(rawurl)
	if !strings.Contains(rawurl, "://") {
		rawurl = Scheme + "://" + rawurl
	}
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request url %q: %w", rawurl, err)
	}
	if u.Scheme == "" {
		u.Scheme = Scheme
	}
	if u.Host == "" {
		return nil, fmt.Errorf("request url %q has no host", rawurl)
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), DefaultPort)
	}
	if u.Path == "" {
		// Gemini specific handling
		u.Path = "/"
	}
	return &Request{URL: u, Query: query}, nil
}

// Line renders the single request line, CRLF included. The query is
// percent-escaped; the URL itself is already absolute.
func (r *Request) Line() string {
	if r.Query == "" {
		return r.URL.String() + "\r\n"
	}
	return r.URL.String() + "?" + url.PathEscape(r.Query) + "\r\n"
}
