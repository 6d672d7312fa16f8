// Package client is the adapter used by interactive front ends to talk to
// the prediction service. It applies the same schema rules as the server
// before any network round-trip, so a caller gets field-level feedback
// without waiting on the wire.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tmoesl/leadscore/pkg/schema"
)

const DefaultBaseURL = "http://localhost:8000"

// Prediction mirrors the service's success response: one label and one
// [P(class=0), P(class=1)] pair per submitted record, in submission order.
type Prediction struct {
	Labels        []int        `json:"prediction"`
	Probabilities [][2]float64 `json:"probability"`
}

// APIError carries the detail message of a non-200 service response.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prediction service returned %d: %s", e.StatusCode, e.Detail)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict validates the records locally, posts them to the service, and
// decodes the result. Server errors (5xx) and transport faults are retried
// with exponential backoff; the call is idempotent because the service is
// stateless. Client errors (4xx) are returned immediately as *APIError.
func (c *Client) Predict(ctx context.Context, records []schema.LeadRecord) (*Prediction, error) {
	if err := validateLocal(records); err != nil {
		return nil, err
	}

	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal prediction request: %w", err)
	}

	var pred *Prediction
	operation := func() error {
		p, err := c.post(ctx, body)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		pred = p
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return pred, nil
}

func validateLocal(records []schema.LeadRecord) error {
	var batchErr schema.BatchError
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			batchErr.Records = append(batchErr.Records, schema.IndexedRecordError{
				Index: i,
				Err:   err.(*schema.RecordError),
			})
		}
	}
	if len(batchErr.Records) > 0 {
		return &batchErr
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (*Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("decode prediction response: %w", err)
	}

	if len(pred.Labels) != len(pred.Probabilities) {
		return nil, fmt.Errorf("prediction response out of shape: %d labels, %d probability pairs",
			len(pred.Labels), len(pred.Probabilities))
	}
	return &pred, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil {
		var body struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &body) == nil && body.Detail != "" {
			apiErr.Detail = body.Detail
		}
	}
	if apiErr.Detail == "" {
		apiErr.Detail = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// Health calls the service banner endpoint and returns its message.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode health response: %w", err)
	}
	return body.Message, nil
}

// Outcome renders a class label for humans.
func Outcome(label int) string {
	if label == 1 {
		return "CONVERT"
	}
	return "NOT CONVERT"
}
