// Package config loads the grom configuration file. The file is HCL:
//
//	endpoint {
//	  base_url = "https://api.example.org/query"
//	  timeout  = "30s"
//	  headers  = { Accept = "application/n-triples" }
//	}
//
//	archive {
//	  path = "./grom_data"
//	}
//
//	server {
//	  addr = "localhost:8080"
//	}
//
//	decorator "Person" {
//	  aliases = { givenName = "personGivenName" }
//	}
//
// Every block is optional.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/aleksaelezovic/grom/pkg/graph"
	"github.com/aleksaelezovic/grom/pkg/transport"
)

const (
	DefaultArchivePath = "./grom_data"
	DefaultServerAddr  = "localhost:8080"
	DefaultFileName    = "grom.hcl"
)

// ErrForeignHost is returned for URIs outside the configured endpoint.
var ErrForeignHost = errors.New("not on endpoint")

// Config is the decoded configuration.
type Config struct {
	Endpoint   Endpoint
	Archive    Archive
	Server     Server
	Decorators []Decorator
}

// Endpoint describes the remote query service.
type Endpoint struct {
	// BaseURL is prepended to relative query paths. Absolute URIs are used
	// as given.
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// Archive locates the payload archive database.
type Archive struct {
	Path string
}

// Server configures the HTTP endpoint.
type Server struct {
	Addr string
}

// Decorator adds attribute aliases to nodes of one type. Type may be a full
// type IRI or its last path segment.
type Decorator struct {
	Type    string
	Aliases map[string]string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Endpoint: Endpoint{
			Timeout: transport.DefaultTimeout,
			Headers: map[string]string{},
		},
		Archive: Archive{Path: DefaultArchivePath},
		Server:  Server{Addr: DefaultServerAddr},
	}
}

type fileRoot struct {
	Endpoint   *endpointBlock   `hcl:"endpoint,block"`
	Archive    *archiveBlock    `hcl:"archive,block"`
	Server     *serverBlock     `hcl:"server,block"`
	Decorators []decoratorBlock `hcl:"decorator,block"`
}

type endpointBlock struct {
	BaseURL string            `hcl:"base_url,optional"`
	Timeout string            `hcl:"timeout,optional"`
	Headers map[string]string `hcl:"headers,optional"`
}

type archiveBlock struct {
	Path string `hcl:"path,optional"`
}

type serverBlock struct {
	Addr string `hcl:"addr,optional"`
}

type decoratorBlock struct {
	Type    string            `hcl:"type,label"`
	Aliases map[string]string `hcl:"aliases,optional"`
}

// Load reads the file at path over the defaults. A missing file is not an
// error: the defaults are returned.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no config file, using defaults", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", path, "decorators", len(cfg.Decorators))
	return cfg, nil
}

// Parse decodes HCL source over the defaults. filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	cfg := Default()
	if err := cfg.apply(&root); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func (c *Config) apply(root *fileRoot) error {
	if e := root.Endpoint; e != nil {
		if e.BaseURL != "" {
			if _, err := url.ParseRequestURI(e.BaseURL); err != nil {
				return fmt.Errorf("endpoint.base_url: %w", err)
			}
			c.Endpoint.BaseURL = e.BaseURL
		}
		if e.Timeout != "" {
			d, err := time.ParseDuration(e.Timeout)
			if err != nil {
				return fmt.Errorf("endpoint.timeout: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("endpoint.timeout: must be positive, got %s", e.Timeout)
			}
			c.Endpoint.Timeout = d
		}
		for k, v := range e.Headers {
			c.Endpoint.Headers[k] = v
		}
	}
	if root.Archive != nil && root.Archive.Path != "" {
		c.Archive.Path = root.Archive.Path
	}
	if root.Server != nil && root.Server.Addr != "" {
		c.Server.Addr = root.Server.Addr
	}

	seen := make(map[string]bool)
	for _, d := range root.Decorators {
		if seen[d.Type] {
			return fmt.Errorf("duplicate decorator %q", d.Type)
		}
		seen[d.Type] = true
		c.Decorators = append(c.Decorators, Decorator{Type: d.Type, Aliases: d.Aliases})
	}
	return nil
}

// Decorator returns the graph decorator described by the decorator blocks,
// or nil when there are none.
func (c *Config) Decorator() graph.Decorator {
	if len(c.Decorators) == 0 {
		return nil
	}
	td := make(graph.TypeDecorators, len(c.Decorators))
	for _, d := range c.Decorators {
		td[d.Type] = graph.AliasDecorator(d.Aliases)
	}
	return td
}

// ResolveURI expands a query path against the endpoint base URL. Absolute
// URIs are returned unchanged.
func (c *Config) ResolveURI(ref string) (string, error) {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref, nil
	}
	if c.Endpoint.BaseURL == "" {
		return "", fmt.Errorf("%q is not an absolute URI and no endpoint.base_url is configured", ref)
	}
	return strings.TrimRight(c.Endpoint.BaseURL, "/") + "/" + strings.TrimLeft(ref, "/"), nil
}

// ResolveEndpointURI is ResolveURI limited to the configured endpoint: an
// absolute URI must have the scheme and host of endpoint.base_url, since
// endpoint headers are sent with every request. Without a base URL any
// absolute URI is accepted.
func (c *Config) ResolveEndpointURI(ref string) (string, error) {
	resolved, err := c.ResolveURI(ref)
	if err != nil || c.Endpoint.BaseURL == "" {
		return resolved, err
	}

	base, err := url.Parse(c.Endpoint.BaseURL)
	if err != nil {
		return "", fmt.Errorf("endpoint.base_url: %w", err)
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", ref, err)
	}
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return "", fmt.Errorf("%s: %w %s://%s", resolved, ErrForeignHost, base.Scheme, base.Host)
	}
	return resolved, nil
}
