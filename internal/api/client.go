package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the current bearer credential. An empty string
// means the client is unauthenticated and no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// Client is a thin HTTP client for the portal REST API. It injects the
// bearer credential, serializes bodies as JSON, and maps every failure
// mode to a uniform *ApiError. Authorization failures are published on
// the invalidation broadcaster, except for the login call itself.
type Client struct {
	baseURL      string
	creds        TokenSource
	unauthorized *Broadcaster
	httpClient   *http.Client
}

// NewClient creates a portal API client. The baseURL should be the root
// URL of the portal instance (e.g. https://portal.example.org).
func NewClient(baseURL string, creds TokenSource, unauthorized *Broadcaster) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		creds:        creds,
		unauthorized: unauthorized,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.send(ctx, http.MethodGet, path, nil, result, false)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.send(ctx, http.MethodPost, path, body, result, false)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodDelete, path, nil, nil, false)
}

// errorBody is the JSON shape of server error responses. The message
// field is optional; an unparseable body degrades to the zero value.
type errorBody struct {
	Message string `json:"message"`
}

// send builds the request, injects the credential, executes it, and maps
// the outcome per the portal error taxonomy. When login is true, an
// authorization failure is returned verbatim without invalidating the
// session, since the credential under test was never valid.
func (c *Client) send(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
	login bool,
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ApiError{Message: fmt.Sprintf("encoding request: %v", err)}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return &ApiError{Message: fmt.Sprintf("building request: %v", err)}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: transport-level failure, status unset.
		return &ApiError{Message: "Network error: the portal could not be reached"}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &ApiError{Message: "Network error: the portal could not be reached"}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return &ApiError{
				Message: fmt.Sprintf("decoding response from %s %s: %v", method, path, err),
				Status:  resp.StatusCode,
			}
		}
		return nil
	}

	var serverErr errorBody
	_ = json.Unmarshal(respBody, &serverErr)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if !login {
			c.unauthorized.Publish()
		}
		msg := serverErr.Message
		if msg == "" {
			msg = "Your session has expired. Please sign in again."
		}
		return &ApiError{Message: msg, Status: resp.StatusCode}

	case resp.StatusCode == http.StatusNotFound:
		return &ApiError{
			Message: "This feature is not available on the server",
			Status:  http.StatusNotFound,
		}

	default:
		msg := serverErr.Message
		if msg == "" {
			msg = fmt.Sprintf("Error %d", resp.StatusCode)
		}
		return &ApiError{Message: msg, Status: resp.StatusCode}
	}
}
