// Package gemini implements the client side of the Gemini protocol:
// TLS transport, request framing and status-line parsing. The protocol
// is one request line out, one status line back, then (for success
// statuses) a body stream until the server closes the connection.
package gemini

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Scheme is the Gemini URI scheme. URLs typed without a scheme get it
// by default.
const Scheme = "gemini"

// DefaultPort is used when a URL carries no explicit port.
const DefaultPort = "1965"

// StatusCode is a Gemini status code as defined in the Gemini spec.
type StatusCode int

// Provides status codes.
const (
	StatusPlainInput        StatusCode = 10
	StatusSensitiveInput    StatusCode = 11
	StatusSuccess           StatusCode = 20
	StatusEndOfSession      StatusCode = 21
	StatusTemporaryRedirect StatusCode = 30
	StatusPermanentRedirect StatusCode = 31
	StatusTemporaryFailure  StatusCode = 40
	StatusServerUnavailable StatusCode = 41
	StatusCGIError          StatusCode = 42
	StatusProxyError        StatusCode = 43
	StatusSlowDown          StatusCode = 44
	StatusPermanentFailure  StatusCode = 50
	StatusNotFound          StatusCode = 51
	StatusGone              StatusCode = 52
	StatusProxyRefused      StatusCode = 53
	StatusBadRequest        StatusCode = 54
	StatusCertRequired      StatusCode = 60
	StatusCertNotAuthorized StatusCode = 61
	StatusCertNotValid      StatusCode = 62
)

// StatusGroup classifies a status code by its leading digit.
type StatusGroup int

const (
	GroupUnknown StatusGroup = iota
	GroupInput
	GroupSuccess
	GroupRedirect
	GroupTempFail
	GroupPermFail
	GroupClientCert
)

// Group maps a status code onto its digit group. The mapping is
// total: codes outside 10-69 are GroupUnknown.
func (s StatusCode) Group() StatusGroup {
	if s < 10 || s > 69 {
		return GroupUnknown
	}
	switch s / 10 {
	case 1:
		return GroupInput
	case 2:
		return GroupSuccess
	case 3:
		return GroupRedirect
	case 4:
		return GroupTempFail
	case 5:
		return GroupPermFail
	default:
		return GroupClientCert
	}
}

func (g StatusGroup) String() string {
	switch g {
	case GroupInput:
		return "input"
	case GroupSuccess:
		return "success"
	case GroupRedirect:
		return "redirect"
	case GroupTempFail:
		return "temporary failure"
	case GroupPermFail:
		return "permanent failure"
	case GroupClientCert:
		return "client certificate"
	default:
		return "unknown"
	}
}

// Error taxonomy for a single fetch. All are wrapped with %w so
// callers can test with errors.Is.
var (
	// ErrConnection covers DNS, TCP and TLS handshake failures.
	ErrConnection = errors.New("connection failed")

	// ErrProtocol means the connection closed before a full status
	// line arrived.
	ErrProtocol = errors.New("connection closed before status line")

	// ErrMalformedHeader means the status line is missing one of its
	// two fields or its code is not numeric.
	ErrMalformedHeader = errors.New("malformed response header")

	// ErrHeaderTooLong means the server never terminated the status
	// line within the protocol's 1024 byte limit.
	ErrHeaderTooLong = errors.New("header exceeds 1024 bytes")
)

const maxHeaderLen = 1024

func readHeader(conn io.Reader) ([]byte, error) {
	var line []byte
	delim := []byte("\r\n")
	// A small buffer is inefficient but the maximum length of the header is small so it's okay
	buf := make([]byte, 1)

	for {
		_, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %d bytes read", ErrProtocol, len(line))
			}
			return nil, err
		}

		line = append(line, buf...)
		if bytes.HasSuffix(line, delim) {
			return line[:len(line)-len(delim)], nil
		}
		if len(line) > maxHeaderLen {
			return nil, ErrHeaderTooLong
		}
	}
}
