package api

import (
	"context"

	"github.com/Pe-te-r/pozeclient"
)

// Users subscribes to the admin user table. Transient failures are retried
// twice before the error settles.
func (s *Service) Users() *pozeclient.Subscription {
	policy := s.defaults
	policy.RetryCount = 2
	policy.Enabled = s.sessions.IsAuthenticated()

	return s.coord.Subscribe(KeyAdminUsers, func() (any, error) {
		res := s.client.Get(context.Background(), "/admin/users")
		resp, err := pozeclient.DecodeResult[UsersResponse](res)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}, policy)
}

// ChangeUserStatus updates one user's status. On success the admin user
// table is invalidated so active subscribers refetch; the notifier carries
// the server's message either way.
func (s *Service) ChangeUserStatus(ctx context.Context, userID, status string) (*Envelope, error) {
	value, err := s.coord.Mutate(ctx, pozeclient.MutationSpec{
		Fn: func(ctx context.Context) (any, error) {
			res := s.client.Patch(ctx, "/admin/users/"+userID+"/status", map[string]string{"status": status})
			return pozeclient.DecodeResult[Envelope](res)
		},
		Invalidates: []pozeclient.Key{KeyAdminUsers},
		Notifier:    s.notifier,
	})
	if err != nil {
		return nil, err
	}
	return value.(*Envelope), nil
}
