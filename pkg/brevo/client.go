package brevo

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
)

const (
	defaultBaseURL = "https://api.brevo.com/v3"

	contactsEndpoint           = "/contacts"
	transactionalEmailEndpoint = "/smtp/email"

	OperationAddContact = "add_contact"
	OperationSendEmail  = "send_email"
)

var ErrMissingAPIKey = errors.New("brevo api key is required")

// Observer receives the outcome of every call made to Brevo.
// statusCode is 0 when no response was received.
type Observer interface {
	ObserveRequest(operation string, statusCode int, duration time.Duration)
}

// Client talks to the Brevo v3 REST API over plain HTTP.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	Observer   Observer
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}

	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// AddOrUpdateContact creates the contact, or updates it when UpdateEnabled is set.
// A contact that already exists is reported as an *APIError for which IsDuplicate is true.
func (c *Client) AddOrUpdateContact(ctx context.Context, contact Contact) error {
	status, body, err := c.post(ctx, OperationAddContact, contactsEndpoint, contact)
	if err != nil {
		return err
	}

	if isSuccess(status) {
		return nil
	}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("decode %s error response (status %d): %w", OperationAddContact, status, err)
	}

	return &APIError{
		Operation:  OperationAddContact,
		StatusCode: status,
		Code:       parsed.Code,
		Message:    parsed.Message,
	}
}

func (c *Client) SendTransactionalEmail(ctx context.Context, email TransactionalEmail) error {
	status, body, err := c.post(ctx, OperationSendEmail, transactionalEmailEndpoint, email)
	if err != nil {
		return err
	}

	if isSuccess(status) {
		return nil
	}

	apiErr := &APIError{Operation: OperationSendEmail, StatusCode: status}
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Code = parsed.Code
		apiErr.Message = parsed.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	return apiErr
}

func (c *Client) post(ctx context.Context, operation, endpoint string, payload any) (int, []byte, error) {
	if c == nil {
		return 0, nil, fmt.Errorf("brevo client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return 0, nil, ErrMissingAPIKey
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s request: %w", operation, err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + endpoint
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build %s request: %w", operation, err)
	}

	httpReq.Header.Set("api-key", c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		c.observe(operation, 0, time.Since(start))
		return 0, nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	c.observe(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	return resp.StatusCode, respBody, nil
}

func (c *Client) observe(operation string, statusCode int, duration time.Duration) {
	if c.Observer == nil {
		return
	}
	c.Observer.ObserveRequest(operation, statusCode, duration)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
