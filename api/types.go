package api

// Envelope is the generic message wrapper most endpoints respond with.
type Envelope struct {
	Message string `json:"message"`
}

// NotificationMessage exposes the server message to the mutation notifier.
func (e Envelope) NotificationMessage() string { return e.Message }

// DashboardUser is the profile block of the dashboard aggregate.
type DashboardUser struct {
	ID            string  `json:"id"`
	FirstName     string  `json:"first_name"`
	Phone         string  `json:"phone"`
	PhoneVerified bool    `json:"phone_verified"`
	Role          string  `json:"role"`
	AvatarURL     *string `json:"avatar_url"`
	Status        string  `json:"status"`
	MemberSince   string  `json:"member_since"`
}

// DashboardSecurity summarizes account security state.
type DashboardSecurity struct {
	LoginAttempts int    `json:"login_attempts"`
	LastLogin     string `json:"last_login"`
	AccountLocked bool   `json:"account_locked"`
	PinSet        bool   `json:"pin_set"`
	PinLocked     bool   `json:"pin_locked"`
}

// DashboardReferral is the user's own referral program state.
type DashboardReferral struct {
	Code                   string `json:"code"`
	IsActive               bool   `json:"is_active"`
	TotalReferrals         int    `json:"total_referrals"`
	TotalEarnings          float64 `json:"total_earnings"`
	TotalEarningsFormatted string `json:"total_earnings_formatted"`
	LastUpdated            string `json:"last_updated"`
}

// RecentReferral is one row of the recent-referrals list.
type RecentReferral struct {
	ID                  string  `json:"id"`
	RefereeID           string  `json:"referee_id"`
	RefereeFirstName    string  `json:"referee_first_name"`
	RefereePhonePartial string  `json:"referee_phone_partial"`
	ReferralCodeUsed    string  `json:"referral_code_used"`
	Status              string  `json:"status"`
	ExpiresAt           string  `json:"expires_at"`
	ClaimedAt           *string `json:"claimed_at"`
	DaysToExpire        int     `json:"days_to_expire"`
	IsExpired           bool    `json:"is_expired"`
}

// DashboardReferralStatistics aggregates referral claims.
type DashboardReferralStatistics struct {
	PendingClaims    int              `json:"pending_claims"`
	ClaimedReferrals int              `json:"claimed_referrals"`
	ExpiredClaims    int              `json:"expired_claims"`
	TotalClaims      int              `json:"total_claims"`
	RecentReferrals  []RecentReferral `json:"recent_referrals"`
}

// DashboardSummary is the rollup block of the aggregate.
type DashboardSummary struct {
	AccountStatus         string `json:"account_status"`
	VerificationComplete  bool   `json:"verification_complete"`
	SecuritySetupComplete bool   `json:"security_setup_complete"`
	ReferralProgramActive bool   `json:"referral_program_active"`
	TotalNetworkSize      int    `json:"total_network_size"`
	LifetimeEarnings      string `json:"lifetime_earnings"`
	ActiveReferralCode    string `json:"active_referral_code"`
}

// DashboardData is the full dashboard aggregate for one user.
type DashboardData struct {
	User               DashboardUser               `json:"user"`
	Security           DashboardSecurity           `json:"security"`
	Referral           DashboardReferral           `json:"referral"`
	ReferralStatistics DashboardReferralStatistics `json:"referral_statistics"`
	Summary            DashboardSummary            `json:"summary"`
}

// DashboardResponse wraps the aggregate with the server message.
type DashboardResponse struct {
	Message string        `json:"message"`
	Data    DashboardData `json:"data"`
}

// UserAuth is the authentication sub-record of an admin user row.
type UserAuth struct {
	LastLogin   *string `json:"last_login"`
	LockedUntil *string `json:"locked_until"`
}

// UserPin is the PIN sub-record of an admin user row.
type UserPin struct {
	PinSet bool `json:"pin_set"`
}

// UserReferral is the referral program sub-record of an admin user row.
type UserReferral struct {
	ReferralCode   string  `json:"referral_code"`
	TotalReferrals int     `json:"total_referrals"`
	TotalEarnings  float64 `json:"total_earnings"`
}

// Referee identifies someone this user referred.
type Referee struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
}

// Referrer identifies who referred this user.
type Referrer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
}

// ReferralMade is a referral issued by the user.
type ReferralMade struct {
	Status    string  `json:"status"`
	ClaimedAt *string `json:"claimed_at"`
	ExpiresAt string  `json:"expires_at"`
	Referee   Referee `json:"referee"`
}

// ReferralUsed is a referral redeemed by the user.
type ReferralUsed struct {
	Status    string   `json:"status"`
	ClaimedAt *string  `json:"claimed_at"`
	ExpiresAt string   `json:"expires_at"`
	Referrer  Referrer `json:"referrer"`
}

// User is one row of the admin user table.
type User struct {
	ID            string         `json:"id"`
	FirstName     string         `json:"first_name"`
	Phone         string         `json:"phone"`
	Status        string         `json:"status"`
	Role          string         `json:"role"`
	CreatedAt     string         `json:"created_at"`
	Auth          UserAuth       `json:"auth"`
	Pin           UserPin        `json:"pin"`
	UserReferral  UserReferral   `json:"userReferral"`
	ReferralsMade []ReferralMade `json:"referralsMade"`
	ReferralsUsed []ReferralUsed `json:"referralsUsed"`
}

// UsersResponse is the admin user-table payload.
type UsersResponse struct {
	Message string `json:"message"`
	Users   []User `json:"users"`
}

// Deposit is one deposit transaction record.
type Deposit struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	UserID    string `json:"userId"`
	Status    string `json:"status"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

// DepositsResponse is the filtered deposit listing payload.
type DepositsResponse struct {
	Message  string    `json:"message"`
	Deposits []Deposit `json:"deposits"`
}
