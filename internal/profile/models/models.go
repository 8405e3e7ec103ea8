package models

import (
	"encoding/json"
	"fmt"
	"time"

	"webshop/pkg/domain"
)

// Sign-in providers as reported by the identity backend.
const (
	ProviderPassword = "password"
	ProviderPhone    = "phone"
	ProviderGoogle   = "google.com"
)

// Profile is the normalized customer record forwarded to the UI.
// Optional fields are pointers or empty slices; nothing is guessed.
type Profile struct {
	AccountID     domain.AccountID       `json:"accountId"`
	FirstName     string                 `json:"firstName"`
	LastName      string                 `json:"lastName"`
	Email         string                 `json:"email"`
	Phone         string                 `json:"phone"`
	TravelCard    *TravelCard            `json:"travelCard,omitempty"`
	Consents      []Consent              `json:"consents"`
	SignInMethods []SignInMethod         `json:"signInMethods"`
	Created       *domain.NormalizedTime `json:"created,omitempty"`
}

// TravelCard describes the customer's registered travel card.
type TravelCard struct {
	ID      int64                  `json:"id"`
	Expires *domain.NormalizedTime `json:"expires,omitempty"`
}

// Consent is one consent choice made by the customer.
type Consent struct {
	ID       int                    `json:"id"`
	Choice   bool                   `json:"choice"`
	Email    string                 `json:"email,omitempty"`
	Modified *domain.NormalizedTime `json:"modified,omitempty"`
}

// SignInMethod is a denormalized link to an identity provider.
type SignInMethod struct {
	Provider string `json:"provider"`
	UID      string `json:"uid"`
}

// Snapshot is one delivery of the profile watch.
type Snapshot struct {
	Exists  bool
	Profile Profile
}

// Document is the stored wire shape of a customer document.
type Document struct {
	FirstName     string              `json:"firstName"`
	Surname       string              `json:"surname"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	TravelCard    *travelCardDocument `json:"travelcard"`
	Consents      []consentDocument   `json:"consents"`
	SignInMethods []SignInMethod      `json:"signInMethods"`
	Created       *domain.BackendTime `json:"created"`
}

type travelCardDocument struct {
	ID      int64               `json:"id"`
	Expires *domain.BackendTime `json:"expires"`
}

type consentDocument struct {
	ID       int                 `json:"id"`
	Choice   bool                `json:"choice"`
	Email    string              `json:"email"`
	Modified *domain.BackendTime `json:"modified"`
}

// DecodeDocument parses raw document data.
func DecodeDocument(data json.RawMessage) (Document, error) {
	var doc Document
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode profile document: %w", err)
	}
	return doc, nil
}

// ToProfile is a pure conversion with every backend time normalized in loc.
func (d Document) ToProfile(accountID domain.AccountID, loc *time.Location) Profile {
	p := Profile{
		AccountID:     accountID,
		FirstName:     d.FirstName,
		LastName:      d.Surname,
		Email:         d.Email,
		Phone:         d.Phone,
		Consents:      make([]Consent, 0, len(d.Consents)),
		SignInMethods: make([]SignInMethod, 0, len(d.SignInMethods)),
		Created:       domain.NormalizeOptional(d.Created, loc),
	}
	if d.TravelCard != nil {
		p.TravelCard = &TravelCard{
			ID:      d.TravelCard.ID,
			Expires: domain.NormalizeOptional(d.TravelCard.Expires, loc),
		}
	}
	for _, c := range d.Consents {
		p.Consents = append(p.Consents, Consent{
			ID:       c.ID,
			Choice:   c.Choice,
			Email:    c.Email,
			Modified: domain.NormalizeOptional(c.Modified, loc),
		})
	}
	p.SignInMethods = append(p.SignInMethods, d.SignInMethods...)
	return p
}

// HasProvider reports whether the profile is linked to provider.
func (p Profile) HasProvider(provider string) bool {
	for _, m := range p.SignInMethods {
		if m.Provider == provider {
			return true
		}
	}
	return false
}
