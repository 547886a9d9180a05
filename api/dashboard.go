package api

import (
	"context"

	"github.com/Pe-te-r/pozeclient"
)

// Dashboard subscribes to the dashboard aggregate for userID. The query is
// gated on a known user and an established session: after a 401 teardown a
// fresh subscription comes up disabled instead of fetching without a token.
func (s *Service) Dashboard(userID string) *pozeclient.Subscription {
	policy := s.defaults
	policy.RetryCount = 1
	policy.Enabled = userID != "" && s.sessions.IsAuthenticated()

	return s.coord.Subscribe(DashboardKey(userID), func() (any, error) {
		res := s.client.Get(context.Background(), "/dashboard/"+userID)
		resp, err := pozeclient.DecodeResult[DashboardResponse](res)
		if err != nil {
			return nil, err
		}
		return &resp.Data, nil
	}, policy)
}
