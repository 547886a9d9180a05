// Package api provides typed bindings for the Poze HTTP surface: auth,
// dashboard, admin users and deposits. Every binding declares a cache key,
// a fetch function against the transport client and policy parameters; all
// caching, retry and invalidation behavior lives in the coordinator.
package api

import (
	"github.com/Pe-te-r/pozeclient"
)

// Cache keys for the query surface.
var (
	KeyUser       = pozeclient.NewKey("user")
	KeyAdminUsers = pozeclient.NewKey("admin-users")
)

// DashboardKey returns the cache key for one user's dashboard aggregate.
func DashboardKey(userID string) pozeclient.Key {
	return pozeclient.NewKey("dashboard", userID)
}

// DepositsKey returns the cache key for deposits filtered by status.
func DepositsKey(status string) pozeclient.Key {
	return pozeclient.NewKey("deposits", status)
}

// Service bundles the transport client, cache coordinator and session
// store behind the domain operations.
type Service struct {
	client   *pozeclient.Client
	coord    *pozeclient.Coordinator
	sessions *pozeclient.SessionStore
	notifier pozeclient.Notifier
	defaults pozeclient.Policy
}

// Option configures a Service.
type Option func(*Service)

// WithQueryDefaults sets the base policy the endpoint bindings derive
// theirs from, typically Config.QueryPolicy(). Per-endpoint retry counts
// still override the base.
func WithQueryDefaults(p pozeclient.Policy) Option {
	return func(s *Service) { s.defaults = p }
}

// New constructs a Service. notifier may be nil when no side-channel
// notifications are wanted.
func New(client *pozeclient.Client, coord *pozeclient.Coordinator, sessions *pozeclient.SessionStore, notifier pozeclient.Notifier, opts ...Option) *Service {
	s := &Service{
		client:   client,
		coord:    coord,
		sessions: sessions,
		notifier: notifier,
		defaults: pozeclient.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Coordinator exposes the underlying coordinator, mainly for tests and
// manual invalidation.
func (s *Service) Coordinator() *pozeclient.Coordinator { return s.coord }

// Sessions exposes the session store.
func (s *Service) Sessions() *pozeclient.SessionStore { return s.sessions }
