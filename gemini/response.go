package gemini

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Response represents the response to a Gemini request.
//
// The body is streamed on demand as Body is read; nothing past the
// status line is consumed up front. It is the caller's responsibility
// to close Body, which releases the underlying connection whether or
// not the stream was read to completion.
type Response struct {
	// Status is the parsed status code, e.g. 20.
	Status StatusCode

	// Meta is the second field of the status line, verbatim. Its
	// meaning depends on Status: mimetype, redirect target, prompt
	// label, error detail or wait time.
	Meta string

	// Body is the remaining connection stream. It carries page
	// content only for success statuses; for everything else the
	// server closes without a body.
	Body io.ReadCloser

	// URL is the absolute URL this response was fetched from.
	URL *url.URL
}

// ParseHeader splits a status line into its code and meta fields.
// Both fields are required by the protocol; a line with only one
// token, or a non-numeric code, is a malformed header. Meta is
// returned verbatim, no interpretation happens here.
func ParseHeader(line string) (StatusCode, string, error) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return 0, "", fmt.Errorf("%w: %q", ErrMalformedHeader, line)
	}
	code, err := strconv.Atoi(line[:i])
	if err != nil {
		return 0, "", fmt.Errorf("%w: status %q is not numeric", ErrMalformedHeader, line[:i])
	}
	meta := strings.TrimLeft(line[i+1:], " \t")
	if meta == "" {
		return 0, "", fmt.Errorf("%w: missing meta field in %q", ErrMalformedHeader, line)
	}
	return StatusCode(code), meta, nil
}
