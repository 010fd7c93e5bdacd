package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kk-code-lab/medfind/internal/log"
	"github.com/kk-code-lab/medfind/internal/query"
)

// DefaultBaseURL points at a locally running drug search API.
const DefaultBaseURL = "http://localhost:8084/api/drugs"

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader correlates client log lines with backend logs.
const RequestIDHeader = "X-Request-Id"

const maxErrorBody = 512

var (
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrMalformedResponse = errors.New("malformed response")
)

var logger = log.ForComponent("backend")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code   int
	Method string
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Client talks to the drug search API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.http = c
		}
	}
}

// WithTimeout bounds each call. Zero disables the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		if d >= 0 {
			client.timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do performs req and decodes the JSON response into out.
func (c *Client) Do(ctx context.Context, req query.RequestDescriptor, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	target := req.URL(c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", req.Method, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()
	logger.Debugf("%s %s -> %d in %s [%s]", req.Method, target, resp.StatusCode, time.Since(started).Round(time.Millisecond), requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Code:   resp.StatusCode,
			Method: req.Method,
			URL:    target,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, req.Method, target, err)
	}
	return nil
}

// Suggest runs an autocomplete request. A null list decodes as empty.
func (c *Client) Suggest(ctx context.Context, req query.RequestDescriptor) ([]string, error) {
	var resp envelope[autocompleteData]
	if err := c.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Data.AutoCompleteList == nil {
		return []string{}, nil
	}
	return resp.Data.AutoCompleteList, nil
}

// Results runs a results request built by query.BuildResultsRequest.
func (c *Client) Results(ctx context.Context, req query.RequestDescriptor) (ResultPage, error) {
	var resp envelope[resultsData]
	if err := c.Do(ctx, req, &resp); err != nil {
		return ResultPage{}, err
	}
	page := ResultPage{Results: resp.Data.SearchResponseList}
	if page.Results == nil {
		page.Results = []Result{}
	}
	if resp.Data.TotalResponseCount != nil {
		page.Total = *resp.Data.TotalResponseCount
		page.HasTotal = true
	}
	return page, nil
}

// Detail fetches one drug record.
func (c *Client) Detail(ctx context.Context, drugID string) (DrugDetail, error) {
	req, err := query.BuildDetailRequest(drugID)
	if err != nil {
		return DrugDetail{}, err
	}
	var resp envelope[*DrugDetail]
	if err := c.Do(ctx, req, &resp); err != nil {
		return DrugDetail{}, err
	}
	if resp.Data == nil {
		return DrugDetail{}, fmt.Errorf("%w: detail for %s has no data", ErrMalformedResponse, drugID)
	}
	return *resp.Data, nil
}
