package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/protomem/pmaster/internal/ctxstore"
	"github.com/protomem/pmaster/internal/session"
)

const (
	DefaultBaseURL = "https://pmaster.elcilantro.site/api/"

	_defaultConnectTimeout = 30 * time.Second
	_defaultReadTimeout    = 30 * time.Second
	_defaultWriteTimeout   = 30 * time.Second

	_maxBodySize = 10 << 20

	HeaderRequestID = "X-Request-Id"
)

type Config struct {
	BaseURL            string
	ConnectTimeout     time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	InsecureSkipVerify bool
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		ConnectTimeout: _defaultConnectTimeout,
		ReadTimeout:    _defaultReadTimeout,
		WriteTimeout:   _defaultWriteTimeout,
	}
}

// Client performs exactly one request/response round trip per operation.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	logger  *slog.Logger
}

func New(cfg Config, sess *session.Session, logger *slog.Logger) (*Client, error) {
	if sess == nil {
		return nil, errors.New("api: nil session")
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported base url scheme %q", u.Scheme)
	}

	def := DefaultConfig()
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http: &http.Client{
			Transport: NewAuthenticator(sess, newBaseTransport(cfg)),
			// Redirects come back as a status error so the bearer token
			// never follows them to another host.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		session: sess,
		logger:  logger.With("module", "api"),
	}, nil
}

func (c *Client) Session() *session.Session {
	return c.session
}

type call struct {
	op      string
	method  string
	path    string
	headers map[string]string
	body    any
	// login marks the credentials endpoint, where 400 and 401 both mean
	// invalid credentials.
	login bool
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	requestID, ok := ctxstore.RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	logger := c.logger.With("op", cl.op, ctxstore.RequestIDKey.String(), requestID)

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return &Error{Op: cl.op, Kind: KindValidation, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+"/"+strings.TrimLeft(cl.path, "/"), body)
	if err != nil {
		return &Error{Op: cl.op, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, requestID)
	for k, v := range cl.headers {
		// Server header names contain underscores; send them verbatim.
		req.Header[k] = []string{v}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("request failed", "method", cl.method, "path", cl.path, "error", err)
		return &Error{Op: cl.op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, _maxBodySize))
	if err != nil {
		logger.Warn("read response failed", "status", resp.StatusCode, "error", err)
		return &Error{Op: cl.op, Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	logger.Debug("api call",
		slog.Group("request", "method", cl.method, "path", cl.path),
		slog.Group("response", "status", resp.StatusCode, "size", len(data), "duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(cl.op, cl.login, resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("decode response failed", "status", resp.StatusCode, "error", err)
		return &Error{Op: cl.op, Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}

	return nil
}

func decodeError(op, msg string) error {
	return &Error{Op: op, Kind: KindDecode, Err: errors.New(msg)}
}

type messageResponse struct {
	Message string `json:"message"`
}
