package api

import (
	"context"
	"strings"

	"github.com/Pe-te-r/pozeclient"
)

// LoginParams are the credentials for /auth/login.
type LoginParams struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RegisterParams are the fields for /auth/register.
type RegisterParams struct {
	FirstName      string `json:"first_name"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	InvitationCode string `json:"invitation_code,omitempty"`
}

// LoginResponse is the /auth/login success payload.
type LoginResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Data    *pozeclient.Session `json:"data"`
}

// NotificationMessage exposes the server message to the mutation notifier.
func (r LoginResponse) NotificationMessage() string { return r.Message }

// cleanPhone strips whitespace and the leading + so numbers entered in
// display form match what the API expects.
func cleanPhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	return strings.ReplaceAll(phone, "+", "")
}

// Login authenticates with phone/password. On success the returned session
// is stored (the transport starts injecting the new access token on the
// next call) and the current-user query is invalidated.
func (s *Service) Login(ctx context.Context, params LoginParams) (*LoginResponse, error) {
	params.Phone = cleanPhone(params.Phone)

	value, err := s.coord.Mutate(ctx, pozeclient.MutationSpec{
		Fn: func(ctx context.Context) (any, error) {
			res := s.client.Post(ctx, "/auth/login", params)
			resp, err := pozeclient.DecodeResult[LoginResponse](res)
			if err != nil {
				return nil, err
			}
			if resp.Data == nil {
				return nil, pozeclient.ErrNoData
			}
			if err := s.sessions.Login(*resp.Data); err != nil {
				return nil, err
			}
			return resp, nil
		},
		Invalidates: []pozeclient.Key{KeyUser},
		Notifier:    s.notifier,
	})
	if err != nil {
		return nil, err
	}
	return value.(*LoginResponse), nil
}

// Register creates a new account. It does not log the user in.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Envelope, error) {
	params.Phone = cleanPhone(params.Phone)

	value, err := s.coord.Mutate(ctx, pozeclient.MutationSpec{
		Fn: func(ctx context.Context) (any, error) {
			res := s.client.Post(ctx, "/auth/register", params)
			return pozeclient.DecodeResult[Envelope](res)
		},
		Notifier: s.notifier,
	})
	if err != nil {
		return nil, err
	}
	return value.(*Envelope), nil
}

// CurrentUser subscribes to the /auth/me query. Retries are disabled: a
// 401 tears down the session and retrying it is meaningless. The query is
// gated on an established session.
func (s *Service) CurrentUser() *pozeclient.Subscription {
	policy := s.defaults
	policy.RetryCount = 0
	policy.Enabled = s.sessions.IsAuthenticated()

	return s.coord.Subscribe(KeyUser, func() (any, error) {
		res := s.client.Get(context.Background(), "/auth/me")
		var user map[string]any
		if err := res.Decode(&user); err != nil {
			return nil, err
		}
		return user, nil
	}, policy)
}

// Logout clears the session and drops cached per-user state. It is
// idempotent.
func (s *Service) Logout() error {
	if err := s.sessions.Logout(); err != nil {
		return err
	}
	s.coord.Clear()
	return nil
}
