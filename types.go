package pozeclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Descriptor describes a single outgoing request. It is immutable per call:
// the transport never mutates it and callers may reuse a value.
type Descriptor struct {
	// Path is appended to the client's base URL ("/auth/login").
	Path string
	// Method is the HTTP method; defaults to GET when empty.
	Method string
	// Body, when non-nil, is JSON-encoded into the request body. For
	// Upload it is sent as-is (it must then be a []byte with a prepared
	// multipart payload).
	Body any
	// Headers are per-call overrides with the highest precedence.
	Headers map[string]string
	// RawBody bypasses JSON encoding; used by Upload.
	RawBody []byte
	// ContentType overrides the Content-Type header; an empty value with
	// OmitContentType set removes the header entirely.
	ContentType    string
	OmitContentType bool
}

// Result is the uniform outcome of a transport exchange. Exactly one of
// Data/Error is set on the happy/unhappy path; Status 0 means the exchange
// never produced an HTTP response (DNS, refused connection, timeout).
type Result struct {
	Data   json.RawMessage
	Error  string
	Status int
}

// OK reports whether the exchange succeeded (2xx with no classified error).
func (r Result) OK() bool { return r.Error == "" }

// Decode unmarshals the JSON payload into v. It returns a NoData error when
// the result carries no payload and the typed transport error when the
// result itself failed.
func (r Result) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Data) == 0 {
		return newError(ErrorTypeNoData, "empty response payload", r.Status, nil)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return newError(ErrorTypeNoData, "malformed response payload", r.Status, err)
	}
	return nil
}

// DecodeResult decodes a Result payload into a fresh T.
func DecodeResult[T any](r Result) (*T, error) {
	var v T
	if err := r.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// TokenSource is the read accessor the transport uses to inject the bearer
// token. The session store implements it; the transport never owns or
// mutates session state directly.
type TokenSource interface {
	Token() (string, bool)
}

// Session is the authenticated identity. A nil/absent session means
// anonymous.
type Session struct {
	Role   string `json:"role"`
	UserID string `json:"userId"`
	Tokens Tokens `json:"tokens"`
}

// Tokens holds the access/refresh token pair issued at login.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Key identifies a query's cache slot. Two keys built from the same ordered
// parts are structurally equal and share one entry.
type Key struct {
	s string
}

// NewKey builds a Key from ordered primitive parts.
func NewKey(parts ...any) Key {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('/')
		}
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(strconv.Itoa(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case bool:
			b.WriteString(strconv.FormatBool(v))
		default:
			raw, _ := json.Marshal(v)
			b.Write(raw)
		}
	}
	return Key{s: b.String()}
}

// String returns the canonical form of the key.
func (k Key) String() string { return k.s }

// IsZero reports whether the key was never built.
func (k Key) IsZero() bool { return k.s == "" }

// EntryStatus is the finite-state machine position of a cache entry.
type EntryStatus int

const (
	StatusIdle EntryStatus = iota
	StatusFetching
	StatusSuccess
	StatusError
)

func (s EntryStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchFunc loads the value for a query. Implementations call the transport
// client and convert a failed Result into an error (see ResultError).
type FetchFunc func() (any, error)

// Policy configures one query's caching behavior.
type Policy struct {
	// StaleTime is how long a successful value is served without refetch.
	StaleTime time.Duration
	// GCTime is how long an entry with zero subscribers is retained.
	GCTime time.Duration
	// RetryCount is the number of retries after a failed fetch; 0 disables
	// retries entirely.
	RetryCount int
	// RetryBackoff is the initial backoff between retries; exponential with
	// jitter up to RetryMaxBackoff.
	RetryBackoff   time.Duration
	RetryMaxBackoff time.Duration
	// Enabled gates execution: a disabled query is constructed idle and
	// fetches only once enabled.
	Enabled bool
}

// DefaultPolicy mirrors the defaults the dashboards ship with.
func DefaultPolicy() Policy {
	return Policy{
		StaleTime:       5 * time.Minute,
		GCTime:          10 * time.Minute,
		RetryCount:      1,
		RetryBackoff:    250 * time.Millisecond,
		RetryMaxBackoff: 5 * time.Second,
		Enabled:         true,
	}
}

// Snapshot is the read-only view a subscriber receives. Data keeps the last
// successful value even while Err is set, so consumers can display stale
// data during revalidation.
type Snapshot struct {
	Data      any
	Err       error
	Status    EntryStatus
	IsLoading bool
	IsStale   bool
	UpdatedAt time.Time
}

// MutationSpec describes a one-shot write. Fn runs exactly once per Mutate
// call with the caller's context; on success the listed keys are
// invalidated.
type MutationSpec struct {
	Fn          func(ctx context.Context) (any, error)
	Invalidates []Key
	// Notifier, when set, receives the side-channel success/failure
	// message. The coordinator only guarantees the invalidation contract.
	Notifier Notifier
	// SuccessMessage overrides the message passed to the notifier; when
	// empty the coordinator tries a "message" field on the returned value.
	SuccessMessage string
}

// Notifier is the side channel for user-visible mutation outcomes.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// RoundTripperFunc adapts a function to http.RoundTripper, handy for tests.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
