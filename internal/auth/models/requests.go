package models

import (
	s "ssogate/pkg/string"
)

// EmailLoginRequest is the body of POST /auth/{app}/login/email.
type EmailLoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Normalize trims identifying fields before validation.
func (r *EmailLoginRequest) Normalize() {
	s.TrimStrings(&r.Email)
}

// GuestLoginRequest is the body of POST /auth/{app}/login/guest.
// Guest access codes have a fixed length; anything else is rejected before
// the credential store is touched.
type GuestLoginRequest struct {
	Code string `json:"code" validate:"required,len=32"`
}

// Normalize trims the code before validation.
func (r *GuestLoginRequest) Normalize() {
	s.TrimStrings(&r.Code)
}

// TwoFactorRequest is the body of POST /auth/{app}/2fa.
type TwoFactorRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Pin   string `json:"pin" validate:"required,len=6,numeric"`
}

// Normalize trims identifying fields before validation.
func (r *TwoFactorRequest) Normalize() {
	s.TrimStrings(&r.Email, &r.Pin)
}

// ValidateTokenRequest is the body of POST /auth/{app}/validate-token.
type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required,notblank,max=512"`
}

// Normalize trims the token before validation.
func (r *ValidateTokenRequest) Normalize() {
	s.TrimStrings(&r.Token)
}
