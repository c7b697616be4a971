package gemini

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// DefaultTimeout bounds the TCP connect and TLS handshake when the
// Client does not specify its own.
const DefaultTimeout = 30 * time.Second

// Client fetches Gemini resources. The zero value is usable.
type Client struct {
	// InsecureSkipVerify controls whether a client verifies the server's
	// certificate chain and host name. If InsecureSkipVerify is true, crypto/tls
	// accepts any certificate presented by the server and any host name in that
	// certificate. Gemini capsules overwhelmingly present self-signed
	// certificates, so interactive browsing normally sets this.
	InsecureSkipVerify bool

	// Timeout bounds connect and handshake. Zero means DefaultTimeout.
	Timeout time.Duration

	// RootCAs overrides the host's certificate pool when non-nil.
	RootCAs *x509.CertPool
}

// Fetch opens a TLS connection for rawurl, writes the request line
// (query appended when non-empty), half-closes the write side and
// reads the status line. The returned Response's Body is the rest of
// the connection; closing it closes the connection, whether or not
// the body was read.
func (c *Client) Fetch(ctx context.Context, rawurl, query string) (*Response, error) {
	req, err := NewRequest(rawurl, query)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Do performs an already-built request. See Fetch.
//
// ctx covers the whole lifetime of the connection: cancelling it
// closes the socket, which unblocks the write, the header read and
// any body read in progress. A server that handshakes and then goes
// silent can therefore always be torn down.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	tlsConn, err := c.connect(ctx, req.URL.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	conn := newGuardedConn(ctx, tlsConn)

	if _, err := io.WriteString(tlsConn, req.Line()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to write request line: %w", err)
	}
	// Nothing further is ever written on this connection.
	if err := tlsConn.CloseWrite(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to half-close connection: %w", err)
	}

	header, err := readHeader(conn)
	if err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		return nil, err
	}
	status, meta, err := ParseHeader(string(header))
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Response{Status: status, Meta: meta, Body: conn, URL: req.URL}, nil
}

// guardedConn ties a connection's lifetime to a context: a watcher
// closes the socket the moment ctx is cancelled, so no read or write
// on it can outlive the request that opened it. Close is idempotent
// and stops the watcher.
type guardedConn struct {
	conn *tls.Conn
	stop chan struct{}
	once sync.Once
}

func newGuardedConn(ctx context.Context, conn *tls.Conn) *guardedConn {
	g := &guardedConn{conn: conn, stop: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-g.stop:
		}
	}()
	return g
}

func (g *guardedConn) Read(p []byte) (int, error) {
	return g.conn.Read(p)
}

func (g *guardedConn) Close() error {
	var err error
	g.once.Do(func() {
		close(g.stop)
		err = g.conn.Close()
	})
	return err
}

func (c *Client) connect(ctx context.Context, hostport string) (*tls.Conn, error) {
	conf := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.InsecureSkipVerify,
		RootCAs:            c.RootCAs,
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config:    conf,
	}
	conn, err := dialer.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return nil, err
	}
	return conn.(*tls.Conn), nil
}
