package api

import (
	"context"
	"net/url"
	"time"

	"github.com/Pe-te-r/pozeclient"
)

// DepositParams are the fields for submitting a deposit.
type DepositParams struct {
	Reference string `json:"reference"`
	UserID    string `json:"userId"`
}

// SubmitDeposit submits a deposit transaction. On success the pending
// deposit listing is invalidated.
func (s *Service) SubmitDeposit(ctx context.Context, params DepositParams) (*Envelope, error) {
	value, err := s.coord.Mutate(ctx, pozeclient.MutationSpec{
		Fn: func(ctx context.Context) (any, error) {
			res := s.client.Post(ctx, "/transactions/deposit", params)
			return pozeclient.DecodeResult[Envelope](res)
		},
		Invalidates: []pozeclient.Key{DepositsKey("pending")},
		Notifier:    s.notifier,
	})
	if err != nil {
		return nil, err
	}
	return value.(*Envelope), nil
}

// DepositsByStatus subscribes to the deposit listing filtered by status.
func (s *Service) DepositsByStatus(status string) *pozeclient.Subscription {
	policy := s.defaults
	policy.StaleTime = time.Minute
	policy.Enabled = s.sessions.IsAuthenticated()

	return s.coord.Subscribe(DepositsKey(status), func() (any, error) {
		res := s.client.Get(context.Background(), "/transactions/deposit?status="+url.QueryEscape(status))
		resp, err := pozeclient.DecodeResult[DepositsResponse](res)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}, policy)
}
