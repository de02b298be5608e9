// Package client is a typed HTTP client for the /api/companies API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sakif/applytrack/internal/model"
)

const companiesPath = "/api/companies"

// APIError is returned for any non-2xx response. Message is the server's
// {"message"} text, or the HTTP status text when the body has none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to one applytrack server. Requests carry no client-side
// timeout; bound them with ctx.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a client for the server at baseURL, e.g. "http://localhost:5001".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	Companies []model.Company `json:"companies"`
}

type companyResponse struct {
	Company *model.Company `json:"company"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// List fetches every record, newest first.
func (c *Client) List(ctx context.Context) ([]model.Company, error) {
	var res listResponse
	if err := c.do(ctx, http.MethodGet, nil, &res); err != nil {
		return nil, err
	}
	if res.Companies == nil {
		res.Companies = []model.Company{}
	}
	return res.Companies, nil
}

// Create adds a record and returns it as stored by the server.
func (c *Client) Create(ctx context.Context, name, comments string) (*model.Company, error) {
	body := map[string]string{"name": name, "comments": comments}
	return c.doCompany(ctx, http.MethodPost, body)
}

// Update replaces name, rejected and comments of the record with id.
func (c *Client) Update(ctx context.Context, id, name string, rejected bool, comments string) (*model.Company, error) {
	body := struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Rejected bool   `json:"rejected"`
		Comments string `json:"comments"`
	}{id, name, rejected, comments}
	return c.doCompany(ctx, http.MethodPatch, body)
}

// Delete removes the record with id and returns it.
func (c *Client) Delete(ctx context.Context, id string) (*model.Company, error) {
	return c.doCompany(ctx, http.MethodDelete, map[string]string{"id": id})
}

func (c *Client) doCompany(ctx context.Context, method string, body any) (*model.Company, error) {
	var res companyResponse
	if err := c.do(ctx, method, body, &res); err != nil {
		return nil, err
	}
	if res.Company == nil {
		return nil, fmt.Errorf("%s %s: response has no company", method, companiesPath)
	}
	return res.Company, nil
}

func (c *Client) do(ctx context.Context, method string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+companiesPath, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, companiesPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not
// an *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
