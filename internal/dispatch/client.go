// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ManuGH/fetchdemo/internal/fetch"
	xglog "github.com/ManuGH/fetchdemo/internal/log"
	"github.com/ManuGH/fetchdemo/internal/metrics"
	"github.com/ManuGH/fetchdemo/internal/platform/httpx"
	platformnet "github.com/ManuGH/fetchdemo/internal/platform/net"
	"github.com/ManuGH/fetchdemo/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

var (
	errNoResponse  = errors.New("no response")
	errInvalidUTF8 = errors.New("response body is not valid UTF-8 text")
)

// Operation names, used as metric and log labels.
const (
	OpGet      = "get"
	OpGetText  = "get_text"
	OpGetJSON  = "get_json"
	OpPostJSON = "post_json"
	OpDelete   = "delete"
)

// Client issues backend requests.
type Client struct {
	http   *http.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a Client using an untraced dispatch transport unless
// WithHTTPClient says otherwise.
func New(opts ...Option) *Client {
	c := &Client{
		http:   httpx.NewDispatchClient(false),
		logger: xglog.WithComponent("dispatch"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET and returns the response whatever its status.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	start := c.begin()
	res, err := c.do(ctx, http.MethodGet, url, nil, "")
	c.end(ctx, OpGet, url, start, res, err)
	return res, err
}

// GetText issues a GET and returns the body as text.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	start := c.begin()
	res, err := c.do(ctx, http.MethodGet, url, nil, "")
	if err == nil && !utf8.Valid(res.Body) {
		err = fetch.DecodeError(errInvalidUTF8)
	}
	c.end(ctx, OpGetText, url, start, res, err)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// GetJSON issues a GET and decodes the JSON body into a T.
func GetJSON[T any](ctx context.Context, c *Client, url string) (T, error) {
	start := c.begin()
	res, err := c.do(ctx, http.MethodGet, url, nil, "")
	var v T
	if err == nil {
		v, err = DecodeJSON[T](res)
	}
	c.end(ctx, OpGetJSON, url, start, res, err)
	return v, err
}

// PostJSON serialises body as JSON and POSTs it. The caller inspects the
// returned response's status.
func PostJSON[T any](ctx context.Context, c *Client, url string, body T) (*Response, error) {
	start := c.begin()
	payload, err := json.Marshal(body)
	if err != nil {
		err = fetch.DecodeError(fmt.Errorf("encode request body: %w", err))
		c.end(ctx, OpPostJSON, url, start, nil, err)
		return nil, err
	}
	res, err := c.do(ctx, http.MethodPost, url, bytes.NewReader(payload), "application/json")
	c.end(ctx, OpPostJSON, url, start, res, err)
	return res, err
}

// Delete issues a DELETE. The caller inspects the returned response's status.
func (c *Client) Delete(ctx context.Context, url string) (*Response, error) {
	start := c.begin()
	res, err := c.do(ctx, http.MethodDelete, url, nil, "")
	c.end(ctx, OpDelete, url, start, res, err)
	return res, err
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fetch.NetworkError(fmt.Errorf("build %s request: %w", method, err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if rid := xglog.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fetch.NetworkError(err)
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fetch.NetworkError(fmt.Errorf("read response body: %w", err))
	}
	return &Response{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Header:     res.Header,
		Body:       data,
	}, nil
}

func (c *Client) begin() time.Time {
	metrics.DispatchStarted()
	return time.Now()
}

func (c *Client) end(ctx context.Context, op, url string, start time.Time, res *Response, err error) {
	elapsed := time.Since(start)
	outcome := "completed"
	if err != nil {
		outcome = fetch.AsDetail(err).Kind.String()
	}
	metrics.DispatchSettled(op, outcome, elapsed.Seconds())
	trace.SpanFromContext(ctx).SetAttributes(telemetry.DispatchAttributes(op, platformnet.SanitizeURL(url))...)

	logger := xglog.WithContext(ctx, c.logger)
	evt := logger.Debug()
	if err != nil {
		evt = evt.Err(err)
	}
	if res != nil {
		metrics.RecordResponseStatus(op, res.StatusCode)
		evt = evt.Int(xglog.FieldStatus, res.StatusCode)
	}
	evt.
		Str(xglog.FieldEvent, "dispatch.settled").
		Str(xglog.FieldOperation, op).
		Str(xglog.FieldURL, platformnet.SanitizeURL(url)).
		Str(xglog.FieldOutcome, outcome).
		Int64(xglog.FieldDuration, elapsed.Milliseconds()).
		Msg("request settled")
}
