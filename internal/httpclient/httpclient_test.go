package httpclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"airspacecache/internal/httpclient"
)

func TestGetReturnsBodyAndValidators(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc123"`)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := httpclient.New()
	body, etag, _, _, err := c.Get(context.Background(), srv.URL, "", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected 'hello', got %q", data)
	}
	if etag != `"abc123"` {
		t.Errorf("expected etag to round-trip, got %q", etag)
	}
}

func TestGetReturnsErrorOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := httpclient.New()
	_, _, _, _, err := c.Get(context.Background(), srv.URL, "", "")
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}
