// Package notion is the gateway to the remote page-based document store.
package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// Remote API defaults.
const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2022-06-28"
)

// Page is a record in a database (collection).
type Page struct {
	Object         string     `json:"object"`
	ID             string     `json:"id"`
	CreatedTime    time.Time  `json:"created_time"`
	LastEditedTime time.Time  `json:"last_edited_time"`
	Properties     Properties `json:"properties"`
}

// IsFull reports whether the page carries properties. Partial objects are skipped.
func (p Page) IsFull() bool {
	return p.Properties != nil && (p.Object == "" || p.Object == "page")
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// QueryResponse is one page of query results.
type QueryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Cursor returns the continuation token, or "" when traversal is done.
func (r *QueryResponse) Cursor() string {
	if r == nil || !r.HasMore || r.NextCursor == nil {
		return ""
	}
	return *r.NextCursor
}

// APIError is a non-2xx response from the remote store.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("notion: status %d (%s): %s", e.Status, e.Code, e.Message)
}

// Backend is the raw remote store protocol.
type Backend interface {
	Query(ctx context.Context, collectionID string, req QueryRequest) (*QueryResponse, error)
	CreatePage(ctx context.Context, collectionID string, props Properties) (*Page, error)
	UpdatePage(ctx context.Context, pageID string, props Properties) (*Page, error)
}

// Client is the Backend served by the notionapi SDK.
type Client struct {
	Token   string
	Version string
	// BaseURL redirects requests to another host, e.g. a local stand-in.
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with the given integration token and API version.
func NewClient(token, version string) *Client {
	if strings.TrimSpace(version) == "" {
		version = DefaultVersion
	}
	return &Client{
		Token:   token,
		Version: version,
		BaseURL: DefaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) api() (*notionapi.Client, error) {
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base != "" && base != DefaultBaseURL {
		target, err := url.Parse(base)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid notion base url %q", c.BaseURL)
		}
		next := hc.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		hc = &http.Client{Timeout: hc.Timeout, Transport: rebaseTransport{target: target, next: next}}
	}
	version := c.Version
	if version == "" {
		version = DefaultVersion
	}
	return notionapi.NewClient(notionapi.Token(c.Token),
		notionapi.WithVersion(version),
		notionapi.WithHTTPClient(hc),
	), nil
}

// Query fetches one page of results from a database.
func (c *Client) Query(ctx context.Context, collectionID string, req QueryRequest) (*QueryResponse, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}
	resp, err := api.Database.Query(ctx, notionapi.DatabaseID(collectionID), &notionapi.DatabaseQueryRequest{
		Filter:      sdkFilter(req.Filter),
		StartCursor: notionapi.Cursor(req.StartCursor),
		PageSize:    req.PageSize,
	})
	if err != nil {
		return nil, apiError(err)
	}
	out := &QueryResponse{HasMore: resp.HasMore, Results: make([]Page, 0, len(resp.Results))}
	if resp.NextCursor != "" {
		next := string(resp.NextCursor)
		out.NextCursor = &next
	}
	for _, p := range resp.Results {
		out.Results = append(out.Results, fromSDKPage(p))
	}
	return out, nil
}

// CreatePage creates a page under a database.
func (c *Client) CreatePage(ctx context.Context, collectionID string, props Properties) (*Page, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}
	p, err := api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{DatabaseID: notionapi.DatabaseID(collectionID)},
		Properties: sdkProperties(props),
	})
	if err != nil {
		return nil, apiError(err)
	}
	out := fromSDKPage(*p)
	return &out, nil
}

// UpdatePage overwrites the given properties of a page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, props Properties) (*Page, error) {
	api, err := c.api()
	if err != nil {
		return nil, err
	}
	p, err := api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: sdkProperties(props),
	})
	if err != nil {
		return nil, apiError(err)
	}
	out := fromSDKPage(*p)
	return &out, nil
}

func apiError(err error) error {
	var sdkErr *notionapi.Error
	if errors.As(err, &sdkErr) {
		return &APIError{Status: sdkErr.Status, Code: string(sdkErr.Code), Message: sdkErr.Message}
	}
	return err
}

// rebaseTransport sends every request to target, keeping path and query.
type rebaseTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t rebaseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.URL.Path = strings.TrimRight(t.target.Path, "/") + req.URL.Path
	r.Host = t.target.Host
	return t.next.RoundTrip(r)
}
