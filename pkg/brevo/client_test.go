package brevo

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	mu       sync.Mutex
	observed []string
	statuses []int
}

func (o *recordingObserver) ObserveRequest(operation string, statusCode int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed = append(o.observed, operation)
	o.statuses = append(o.statuses, statusCode)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()
	return client
}

func TestClientRequiresAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, "  ")
	err := client.AddOrUpdateContact(context.Background(), Contact{Email: "user@example.com"})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	err = client.SendTransactionalEmail(context.Background(), TransactionalEmail{})
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called, "no request should reach the provider")
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	client := NewClient("", "key")
	assert.Equal(t, defaultBaseURL, client.BaseURL)
}

func TestAddOrUpdateContactSendsRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/contacts", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("api-key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "user@example.com", payload["email"])
		assert.Equal(t, []any{float64(7)}, payload["listIds"])
		assert.Equal(t, true, payload["updateEnabled"])
		attributes, ok := payload["attributes"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Tech Saints Awareness Page", attributes["SOURCE"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":21}`))
	})

	observer := &recordingObserver{}
	client.Observer = observer

	err := client.AddOrUpdateContact(context.Background(), Contact{
		Email:         "user@example.com",
		ListIDs:       []int64{7},
		Attributes:    map[string]any{"SOURCE": "Tech Saints Awareness Page"},
		UpdateEnabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{OperationAddContact}, observer.observed)
	assert.Equal(t, []int{http.StatusCreated}, observer.statuses)
}

func TestAddOrUpdateContactErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantDuplicate bool
		wantAPIError  bool
	}{
		{
			name:          "duplicate contact",
			status:        http.StatusBadRequest,
			body:          `{"code":"duplicate_parameter","message":"Contact already exist"}`,
			wantDuplicate: true,
			wantAPIError:  true,
		},
		{
			name:         "invalid parameter",
			status:       http.StatusBadRequest,
			body:         `{"code":"invalid_parameter","message":"email is not valid"}`,
			wantAPIError: true,
		},
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"code":"unauthorized","message":"Key not found"}`,
			wantAPIError: true,
		},
		{
			name:   "error body is not json",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := client.AddOrUpdateContact(context.Background(), Contact{Email: "user@example.com"})
			require.Error(t, err)
			assert.Equal(t, tt.wantDuplicate, IsDuplicate(err))

			var apiErr *APIError
			assert.Equal(t, tt.wantAPIError, errors.As(err, &apiErr))
			if tt.wantAPIError {
				assert.Equal(t, tt.status, apiErr.StatusCode)
				assert.Equal(t, OperationAddContact, apiErr.Operation)
			}
		})
	}
}

func TestAddOrUpdateContactTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	observer := &recordingObserver{}
	client := NewClient(url, "test-key")
	client.Observer = observer

	err := client.AddOrUpdateContact(context.Background(), Contact{Email: "user@example.com"})
	require.Error(t, err)
	assert.False(t, IsDuplicate(err))
	assert.Equal(t, []int{0}, observer.statuses)
}

func TestAddOrUpdateContactTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.Timeout = 20 * time.Millisecond

	err := client.AddOrUpdateContact(context.Background(), Contact{Email: "user@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSendTransactionalEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/smtp/email", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("api-key"))

		var payload TransactionalEmail
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, Address{Name: "Rhyan from Tech Saints", Email: "hello@rhyan.dev"}, payload.Sender)
		assert.Equal(t, []Address{{Email: "user@example.com"}}, payload.To)
		assert.Equal(t, "Welcome", payload.Subject)
		assert.Contains(t, payload.HTMLContent, "<h1>")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<id@smtp-relay.mailin.fr>"}`))
	})

	err := client.SendTransactionalEmail(context.Background(), TransactionalEmail{
		Sender:      Address{Name: "Rhyan from Tech Saints", Email: "hello@rhyan.dev"},
		To:          []Address{{Email: "user@example.com"}},
		Subject:     "Welcome",
		HTMLContent: "<h1>Welcome</h1>",
	})
	require.NoError(t, err)
}

func TestSendTransactionalEmailFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	err := client.SendTransactionalEmail(context.Background(), TransactionalEmail{To: []Address{{Email: "user@example.com"}}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, OperationSendEmail, apiErr.Operation)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
}
