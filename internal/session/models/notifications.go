package models

import (
	farecontract "webshop/internal/farecontract/models"
	profile "webshop/internal/profile/models"
)

// NotificationType names an outbound message to the UI.
type NotificationType string

const (
	NotifyHello             NotificationType = "hello"
	NotifySignInInfo        NotificationType = "signInInfo"
	NotifySignInError       NotificationType = "signInError"
	NotifyFareContracts     NotificationType = "fareContracts"
	NotifyOnboardingStart   NotificationType = "onboardingStart"
	NotifyVerifyUserStart   NotificationType = "verifyUserStart"
	NotifyPhoneLoginStarted NotificationType = "phoneLoginStarted"
	NotifyPhoneError        NotificationType = "phoneError"
	NotifyEmailError        NotificationType = "emailError"
	NotifyPasswordResetSent NotificationType = "passwordResetSent"
	NotifyPong              NotificationType = "pong"
)

// Notification is one outbound message.
type Notification struct {
	Type    NotificationType `json:"type"`
	Payload any              `json:"payload,omitempty"`
}

// Hello is the first message on every connection. Browsers that had no
// install id keep the one minted here.
type Hello struct {
	InstallID string `json:"installId"`
}

type SignInInfo struct {
	Token     string          `json:"token"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	AccountID string          `json:"uid"`
	Provider  string          `json:"provider"`
	Profile   profile.Profile `json:"profile"`
}

// ErrorInfo carries a provider error code and its user-facing message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type FareContracts struct {
	Contracts []farecontract.FareContract `json:"fareContracts"`
}

type OnboardingStart struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type VerifyUserStart struct {
	Email string `json:"email"`
}

type PhoneLoginStarted struct {
	Phone string `json:"phone"`
}

type PasswordResetSent struct {
	Email string `json:"email"`
}
