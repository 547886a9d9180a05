package pozeclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type staticTokens struct {
	token string
	ok    bool
}

func (s staticTokens) Token() (string, bool) { return s.token, s.ok }

func TestRequestMergesHeadersInPrecedenceOrder(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(
		WithBaseURL(server.URL),
		WithDefaultHeaders(map[string]string{
			"X-App":        "poze",
			"X-Overridden": "default",
		}),
		WithTokenSource(staticTokens{token: "tok123", ok: true}),
	)

	res := client.Request(context.Background(), Descriptor{
		Path:    "/ping",
		Method:  http.MethodGet,
		Headers: map[string]string{"X-Overridden": "per-call"},
	})

	if !res.OK() {
		t.Fatalf("Request() failed: %s", res.Error)
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", got.Get("Content-Type"))
	}
	if got.Get("X-App") != "poze" {
		t.Errorf("Expected default header X-App=poze, got %s", got.Get("X-App"))
	}
	if got.Get("Authorization") != "Bearer tok123" {
		t.Errorf("Expected Authorization Bearer tok123, got %s", got.Get("Authorization"))
	}
	if got.Get("X-Overridden") != "per-call" {
		t.Errorf("Expected per-call override to win, got %s", got.Get("X-Overridden"))
	}
}

func TestRequestNoAuthorizationWhenAnonymous(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL), WithTokenSource(staticTokens{ok: false}))
	client.Get(context.Background(), "/ping")

	if _, present := got["Authorization"]; present {
		t.Errorf("Expected no Authorization header, got %q", got.Get("Authorization"))
	}
}

func TestUploadOmitsContentType(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	res := client.Upload(context.Background(), "/files", []byte("payload"), "")

	if !res.OK() {
		t.Fatalf("Upload() failed: %s", res.Error)
	}
	if _, present := got["Content-Type"]; present {
		t.Errorf("Expected Content-Type removed for upload, got %q", got.Get("Content-Type"))
	}
}

func TestUploadWithExplicitContentType(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	client.Upload(context.Background(), "/files", []byte("payload"), "multipart/form-data; boundary=xyz")

	if got.Get("Content-Type") != "multipart/form-data; boundary=xyz" {
		t.Errorf("Expected multipart content type, got %s", got.Get("Content-Type"))
	}
}

func TestClassifySuccessJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","data":{"id":"1"}}`))
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	res := client.Get(context.Background(), "/thing")

	if !res.OK() {
		t.Fatalf("Expected success, got error %q", res.Error)
	}
	if res.Status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", res.Status)
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := res.Decode(&payload); err != nil {
		t.Fatalf("Decode() returned error: %v", err)
	}
	if payload.Message != "ok" {
		t.Errorf("Expected message ok, got %q", payload.Message)
	}
}

func TestClassifyNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	res := client.Delete(context.Background(), "/thing/1")

	if !res.OK() {
		t.Fatalf("Expected success, got error %q", res.Error)
	}
	if res.Data != nil {
		t.Errorf("Expected no body for 204, got %s", res.Data)
	}
}

func TestErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
	}{
		{"json message field", 422, "application/json", `{"message":"X"}`, "X"},
		{"plain text body", 400, "text/plain", "Y", "Y"},
		{"empty body 404", 404, "", "", "Not Found"},
		{"empty body 400", 400, "", "", "Bad Request"},
		{"empty body 403", 403, "", "", "Forbidden"},
		{"empty body 500", 500, "", "", "Internal Server Error"},
		{"generic fallback", 418, "", "", "HTTP Error: 418"},
		{"json without message falls through", 404, "application/json", `{"code":1}`, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			}))
			defer server.Close()

			client := New(WithBaseURL(server.URL))
			res := client.Get(context.Background(), "/err")

			if res.OK() {
				t.Fatal("Expected an error result")
			}
			if res.Error != tt.want {
				t.Errorf("Expected error %q, got %q", tt.want, res.Error)
			}
			if res.Status != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, res.Status)
			}
			if res.Data != nil {
				t.Errorf("Expected nil data on error, got %s", res.Data)
			}
		})
	}
}

func TestUnauthorizedInvokesHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var cleared atomic.Int32
	client := New(
		WithBaseURL(server.URL),
		WithUnauthorizedHook(func() { cleared.Add(1) }),
	)

	res := client.Get(context.Background(), "/dashboard/abc")

	if res.Status != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", res.Status)
	}
	if res.Error != "Unauthorized" {
		t.Errorf("Expected error Unauthorized, got %q", res.Error)
	}
	if cleared.Load() != 1 {
		t.Errorf("Expected unauthorized hook invoked once, got %d", cleared.Load())
	}
}

func TestNetworkFailureYieldsStatusZero(t *testing.T) {
	client := New(WithBaseURL("http://127.0.0.1:1"))
	res := client.Get(context.Background(), "/unreachable")

	if res.Status != 0 {
		t.Errorf("Expected status 0 for network failure, got %d", res.Status)
	}
	if res.Error == "" {
		t.Error("Expected a network error message")
	}
	if res.Data != nil {
		t.Error("Expected nil data on network failure")
	}
}

func TestPostSerializesBody(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	client.Post(context.Background(), "/auth/login", map[string]string{"phone": "0712345678"})

	if received["phone"] != "0712345678" {
		t.Errorf("Expected phone in body, got %v", received)
	}
}

func TestDecodeResultTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"hi","users":[]}`))
	}))
	defer server.Close()

	type usersResp struct {
		Message string `json:"message"`
	}

	client := New(WithBaseURL(server.URL))
	res := client.Get(context.Background(), "/admin/users")

	resp, err := DecodeResult[usersResp](res)
	if err != nil {
		t.Fatalf("DecodeResult() returned error: %v", err)
	}
	if resp.Message != "hi" {
		t.Errorf("Expected message hi, got %q", resp.Message)
	}
}

func TestDecodeFailedResultReturnsTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(WithBaseURL(server.URL))
	res := client.Get(context.Background(), "/boom")

	var v struct{}
	err := res.Decode(&v)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !IsTransient(err) {
		t.Errorf("Expected 500 to be transient, got %v", err)
	}
}
