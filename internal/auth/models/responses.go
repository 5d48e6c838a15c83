package models

// LoginResult is the successful response of the login endpoints.
// Either a session was materialized (User + Token set) or the account
// requires a second factor before a session exists.
type LoginResult struct {
	User              *SessionSnapshot `json:"user,omitempty"`
	Token             string           `json:"token,omitempty"`
	TwoFactorRequired bool             `json:"twoFactorRequired,omitempty"`
}
