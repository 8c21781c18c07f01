// Package script reads dashboard collections from a scripted spreadsheet web endpoint
// (for example a deployed Apps Script web app). Each collection is fetched with
// GET <endpoint>?sheet=<tab> and answered as JSON rows.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"opsboard/internal/core"
	"opsboard/internal/sheets"
)

var _ sheets.Source = (*Client)(nil)

// ErrNoEndpoint is returned when the client is built without an endpoint URL.
var ErrNoEndpoint = errors.New("script endpoint not configured")

// maxBodyBytes caps a single response body.
const maxBodyBytes = 16 << 20

type Options struct {
	Endpoint      string
	Timeout       time.Duration
	Retries       int
	RetryWaitMin  time.Duration
	RetryWaitMax  time.Duration
	ComponentsTab string
	ProjectsTab   string
	SuppliersTab  string
	Logger        *slog.Logger
}

type Client struct {
	http          *retryablehttp.Client
	endpoint      string
	componentsTab string
	projectsTab   string
	suppliersTab  string
}

// New builds a client. The endpoint is not validated here: a malformed URL surfaces as
// an error on the first fetch.
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.ComponentsTab == "" {
		opts.ComponentsTab = sheets.ComponentsSheet
	}
	if opts.ProjectsTab == "" {
		opts.ProjectsTab = sheets.ProjectsSheet
	}
	if opts.SuppliersTab == "" {
		opts.SuppliersTab = sheets.SuppliersSheet
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.Retries
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	}

	return &Client{
		http:          rc,
		endpoint:      opts.Endpoint,
		componentsTab: opts.ComponentsTab,
		projectsTab:   opts.ProjectsTab,
		suppliersTab:  opts.SuppliersTab,
	}, nil
}

func (c *Client) ListComponents(ctx context.Context) ([]core.Component, error) {
	body, err := c.fetch(ctx, c.componentsTab)
	if err != nil {
		return nil, err
	}
	out, err := sheets.DecodeComponents(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.componentsTab, err)
	}
	return out, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]core.Project, error) {
	body, err := c.fetch(ctx, c.projectsTab)
	if err != nil {
		return nil, err
	}
	out, err := sheets.DecodeProjects(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.projectsTab, err)
	}
	return out, nil
}

func (c *Client) ListSuppliers(ctx context.Context) ([]core.Supplier, error) {
	body, err := c.fetch(ctx, c.suppliersTab)
	if err != nil {
		return nil, err
	}
	out, err := sheets.DecodeSuppliers(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.suppliersTab, err)
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, tab string) ([]byte, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse endpoint: unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("sheet", tab)
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", tab, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", tab, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tab, err)
	}
	return body, nil
}
