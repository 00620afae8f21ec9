package api

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/protomem/pmaster/internal/session"
)

const HeaderAuthorization = "Authorization"

// Authenticator adds the session's bearer token to every outgoing request.
// The token is read when the request is sent, never cached.
type Authenticator struct {
	Session *session.Session
	Base    http.RoundTripper
}

func NewAuthenticator(sess *session.Session, base http.RoundTripper) *Authenticator {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Authenticator{Session: sess, Base: base}
}

func (a *Authenticator) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := a.Session.CurrentToken()
	if !ok {
		return a.Base.RoundTrip(req)
	}

	authReq := req.Clone(req.Context())
	authReq.Header.Set(HeaderAuthorization, "bearer "+token)
	return a.Base.RoundTrip(authReq)
}

func newBaseTransport(cfg Config) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &deadlineConn{Conn: conn, read: cfg.ReadTimeout, write: cfg.WriteTimeout}, nil
		},
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// deadlineConn bounds every single read and write on the connection.
// Idle pooled connections are dropped once the read deadline passes.
type deadlineConn struct {
	net.Conn
	read  time.Duration
	write time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if c.read > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.read)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if c.write > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.write)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(p)
}
