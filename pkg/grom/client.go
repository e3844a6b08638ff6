// Package grom fetches RDF statement sets from remote endpoints and builds
// them into linked node graphs.
package grom

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/processor"
	"github.com/aleksaelezovic/grom/pkg/store"
	"github.com/aleksaelezovic/grom/pkg/transport"
)

// Client fetches payloads and builds graphs from them. A Client is safe for
// concurrent use; every fetch builds its own graph.
type Client struct {
	transport *transport.Transport
	archive   *store.Archive
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default transport.
func WithTransport(t *transport.Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithArchive records every successfully fetched payload in a.
func WithArchive(a *store.Archive) Option {
	return func(c *Client) {
		c.archive = a
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Client.
func New(opts ...Option) *Client {
	c := &Client{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = transport.New(transport.WithLogger(c.logger))
	}
	return c
}

// FetchGraph fetches uri with headers and builds the result graph.
// An upstream error embedded in the payload is returned as a
// *graph.UpstreamError; see graph.Result for how filterTypes select nodes.
func (c *Client) FetchGraph(ctx context.Context, uri string, headers map[string]string, filterTypes []string, decorator graph.Decorator) (*graph.Result, error) {
	payload, err := c.FetchPayload(ctx, uri, headers)
	if err != nil {
		return nil, err
	}

	b := graph.Builder{Logger: c.logger}
	return b.Build(payload, filterTypes, decorator)
}

// FetchPayload fetches uri and returns its payload. Upstream failures do
// not produce an error here: they are recorded in the payload's status code
// and error fields. Only transport failures are returned as errors.
func (c *Client) FetchPayload(ctx context.Context, uri string, headers map[string]string) (*graph.Payload, error) {
	c.logger.Debug("requesting", "uri", uri)

	resp, err := c.transport.Get(ctx, uri, headers)
	if err != nil {
		c.logger.Error("error getting", "uri", uri, "error", err)
		return nil, err
	}

	if !resp.OK() {
		c.logger.Debug("upstream error", "uri", uri, "status", resp.StatusCode)
		return &graph.Payload{StatusCode: resp.StatusCode, URI: uri, Error: resp.Error}, nil
	}

	proc := processor.Processor{Logger: c.logger}
	payload, err := proc.Process(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		c.logger.Error("error processing", "uri", uri, "error", err)
		return &graph.Payload{
			StatusCode: resp.StatusCode,
			URI:        uri,
			Error:      fmt.Sprintf("Error processing data: %v", err),
		}, nil
	}
	payload.StatusCode = resp.StatusCode
	payload.URI = uri

	if c.archive != nil {
		if _, err := c.archive.Save(uri, payload); err != nil {
			c.logger.Warn("failed to archive payload", "uri", uri, "error", err)
		}
	}

	return payload, nil
}

// FetchGraph fetches with a default Client.
func FetchGraph(ctx context.Context, uri string, headers map[string]string, filterTypes []string, decorator graph.Decorator) (*graph.Result, error) {
	return New().FetchGraph(ctx, uri, headers, filterTypes, decorator)
}
