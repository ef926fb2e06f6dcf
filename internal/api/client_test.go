package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *Broadcaster) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	unauthorized := NewBroadcaster()
	return NewClient(srv.URL, staticToken(token), unauthorized), unauthorized
}

func TestBearerHeaderInjection(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}, "tok-123")

	if err := c.Get(context.Background(), "/gug/v1/me", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestNoHeaderWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	seen := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		seen = true
		w.Write([]byte(`{}`))
	}, "")

	if err := c.Get(context.Background(), "/gug/v1/events", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !seen {
		t.Fatal("request never reached the server")
	}
	if gotAuth != "" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
}

func TestSuccessDecodesPayload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7, "display_name": "Robin"}`))
	}, "tok")

	var out struct {
		ID          int    `json:"id"`
		DisplayName string `json:"display_name"`
	}
	if err := c.Get(context.Background(), "/gug/v1/me", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.ID != 7 || out.DisplayName != "Robin" {
		t.Fatalf("decoded %+v", out)
	}
}

func TestUnauthorizedPublishesInvalidation(t *testing.T) {
	c, unauthorized := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "jwt expired"}`))
	}, "stale")

	published := 0
	unauthorized.Subscribe(func() { published++ })

	err := c.Get(context.Background(), "/gug/v1/chat", nil)
	if err == nil {
		t.Fatal("expected an error")
	}

	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "jwt expired" {
		t.Fatalf("error = %+v", apiErr)
	}
	if !IsUnauthorized(err) {
		t.Fatal("IsUnauthorized = false")
	}
	if published != 1 {
		t.Fatalf("invalidation published %d times, want 1", published)
	}
}

func TestUnauthorizedFallbackMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, "stale")

	err := c.Get(context.Background(), "/gug/v1/tasks", nil)
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Message != "Your session has expired. Please sign in again." {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestLoginRejectionDoesNotInvalidate(t *testing.T) {
	c, unauthorized := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "invalid credentials"}`))
	}, "")

	published := 0
	unauthorized.Subscribe(func() { published++ })

	_, err := c.Login(context.Background(), "robin", "wrong")
	if err == nil {
		t.Fatal("expected an error")
	}
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Message != "invalid credentials" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if published != 0 {
		t.Fatalf("login rejection published invalidation %d times", published)
	}
}

func TestNotFoundHasFixedMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "ignored"}`))
	}, "tok")

	err := c.Get(context.Background(), "/gug/v1/pos/articles", nil)
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Message != "This feature is not available on the server" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if !IsNotFound(err) {
		t.Fatal("IsNotFound = false")
	}
}

func TestServerErrorMessagePassthrough(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "poll already closed"}`))
	}, "tok")

	err := c.Post(context.Background(), "/gug/v1/polls/3/vote", map[string]any{}, nil)
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Message != "poll already closed" || apiErr.Status != http.StatusConflict {
		t.Fatalf("error = %+v", apiErr)
	}
}

func TestServerErrorFallbackMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`not json`))
	}, "tok")

	err := c.Get(context.Background(), "/gug/v1/members", nil)
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Message != "Error 500" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestTransportFailure(t *testing.T) {
	unauthorized := NewBroadcaster()
	// A closed server guarantees a connection error.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, staticToken("tok"), unauthorized)

	err := c.Get(context.Background(), "/gug/v1/me", nil)
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T", err)
	}
	if apiErr.Status != 0 {
		t.Fatalf("status = %d, want 0", apiErr.Status)
	}
	if apiErr.Message != "Network error: the portal could not be reached" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if IsUnauthorized(err) || IsNotFound(err) {
		t.Fatal("transport failure misclassified")
	}
}
