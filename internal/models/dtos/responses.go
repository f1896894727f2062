package dtos

import "time"

// APIResponse is the standard envelope for every JSON endpoint.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// ActiveOperatorResponse is the resolved working context for a pilot.
type ActiveOperatorResponse struct {
	MembershipID string    `json:"membership_id"`
	OperatorID   string    `json:"operator_id"`
	OperatorName string    `json:"operator_name"`
	Slug         string    `json:"slug"`
	Role         string    `json:"role"`
	JoinedAt     time.Time `json:"joined_at"`
}

// OperatorSummary is a public search result row. It deliberately carries no
// membership information.
type OperatorSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	AESANumber *string `json:"aesa_number,omitempty"`
}

// MembershipSummary describes one pilot↔operator relation.
type MembershipSummary struct {
	MembershipID    string `json:"membership_id"`
	OperatorID      string `json:"operator_id"`
	OperatorName    string `json:"operator_name"`
	PilotID         string `json:"pilot_id"`
	Role            string `json:"role"`
	RequestState    string `json:"request_state"`
	MembershipState string `json:"membership_state"`
	Active          bool   `json:"active"`
}

// PilotDetailResponse is returned by /user/details.
type PilotDetailResponse struct {
	PilotID          string              `json:"pilot_id"`
	Email            string              `json:"email"`
	DisplayName      string              `json:"display_name"`
	TelegramVerified bool                `json:"telegram_verified"`
	Memberships      []MembershipSummary `json:"memberships"`
}

// SessionResponse is returned when a pilot opens a new session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// LinkCodeResponse is returned when a pilot requests a Telegram link code.
type LinkCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CheckoutResponse carries the provider-hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// FlightResponse is a single logged flight.
type FlightResponse struct {
	ID          string    `json:"id"`
	OperatorID  string    `json:"operator_id"`
	PilotID     string    `json:"pilot_id"`
	Location    string    `json:"location"`
	DurationMin int       `json:"duration_min"`
	FlownAt     time.Time `json:"flown_at"`
}
