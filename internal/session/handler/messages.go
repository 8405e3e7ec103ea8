package handler

import (
	"encoding/json"
	"strings"

	s "webshop/pkg/string"
	"webshop/pkg/validation"
)

// Inbound message types sent by the UI.
const (
	MsgSignOut               = "signOut"
	MsgPhoneLogin            = "phoneLogin"
	MsgPhoneConfirm          = "phoneConfirm"
	MsgRegisterEmail         = "registerEmail"
	MsgLoginEmail            = "loginEmail"
	MsgResetPassword         = "resetPassword"
	MsgResendVerification    = "resendVerification"
	MsgOnboardingDone        = "onboardingDone"
	MsgOnboardingRefreshAuth = "onboardingRefreshAuth"
	MsgPing                  = "ping"
)

// Inbound is one message from the UI. Payload is decoded per type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PhoneLoginRequest struct {
	Phone          string `json:"phone" validate:"notblank,max=32"`
	RecaptchaToken string `json:"recaptchaToken" validate:"max=4096"`
}

func (r *PhoneLoginRequest) Sanitize() {
	s.TrimStrings(&r.Phone, &r.RecaptchaToken)
}

func (r *PhoneLoginRequest) Validate() error {
	return validation.Validate(r)
}

type PhoneConfirmRequest struct {
	Code string `json:"code" validate:"len=6,numeric"`
}

func (r *PhoneConfirmRequest) Sanitize() {
	s.TrimStrings(&r.Code)
}

func (r *PhoneConfirmRequest) Validate() error {
	return validation.Validate(r)
}

// EmailPasswordRequest is shared by loginEmail and registerEmail.
type EmailPasswordRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"notblank,max=128"`
}

func (r *EmailPasswordRequest) Sanitize() {
	s.TrimStrings(&r.Email)
}

func (r *EmailPasswordRequest) Normalize() {
	r.Email = strings.ToLower(r.Email)
}

func (r *EmailPasswordRequest) Validate() error {
	return validation.Validate(r)
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (r *ResetPasswordRequest) Sanitize() {
	s.TrimStrings(&r.Email)
}

func (r *ResetPasswordRequest) Normalize() {
	r.Email = strings.ToLower(r.Email)
}

func (r *ResetPasswordRequest) Validate() error {
	return validation.Validate(r)
}
