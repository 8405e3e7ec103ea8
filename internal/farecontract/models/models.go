package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"webshop/pkg/domain"
)

// ValidityState is the derived lifecycle of a fare contract at an instant.
type ValidityState string

const (
	StateWaiting ValidityState = "waiting"
	StateValid   ValidityState = "valid"
	StateExpired ValidityState = "expired"
)

// FareContract is one purchased ticket with its derived validity window.
// ValidFrom and ValidTo are epoch milliseconds.
type FareContract struct {
	ID           string                 `json:"id"`
	OrderID      string                 `json:"orderId"`
	Created      *domain.NormalizedTime `json:"created,omitempty"`
	State        int                    `json:"state"`
	TotalAmount  string                 `json:"totalAmount"`
	Currency     string                 `json:"currency"`
	PaymentType  []int                  `json:"paymentType"`
	TravelRights []TravelRight          `json:"travelRights"`
	ValidFrom    int64                  `json:"validFrom"`
	ValidTo      int64                  `json:"validTo"`
}

// TravelRight is a single right granted by a fare contract.
type TravelRight struct {
	ID             string                 `json:"id"`
	Type           string                 `json:"type"`
	Status         int                    `json:"status"`
	FareProductRef string                 `json:"fareProductRef"`
	UserProfileRef string                 `json:"userProfileRef"`
	StartDateTime  *domain.NormalizedTime `json:"startDateTime,omitempty"`
	EndDateTime    *domain.NormalizedTime `json:"endDateTime,omitempty"`
	UsedAccesses   []UsedAccess           `json:"usedAccesses,omitempty"`
}

// UsedAccess records one activation of a carnet-style travel right.
type UsedAccess struct {
	StartDateTime *domain.NormalizedTime `json:"startDateTime,omitempty"`
	EndDateTime   *domain.NormalizedTime `json:"endDateTime,omitempty"`
}

// Document is the stored wire shape of a fare contract.
type Document struct {
	OrderID      string                `json:"orderId"`
	Created      *domain.BackendTime   `json:"created"`
	State        int                   `json:"state"`
	TotalAmount  string                `json:"totalAmount"`
	Currency     string                `json:"currency"`
	PaymentType  []int                 `json:"paymentType"`
	TravelRights []travelRightDocument `json:"travelRights"`
}

type travelRightDocument struct {
	ID             string               `json:"id"`
	Type           string               `json:"type"`
	Status         int                  `json:"status"`
	FareProductRef string               `json:"fareProductRef"`
	UserProfileRef string               `json:"userProfileRef"`
	StartDateTime  *domain.BackendTime  `json:"startDateTime"`
	EndDateTime    *domain.BackendTime  `json:"endDateTime"`
	UsedAccesses   []usedAccessDocument `json:"usedAccesses"`
}

type usedAccessDocument struct {
	StartDateTime *domain.BackendTime `json:"startDateTime"`
	EndDateTime   *domain.BackendTime `json:"endDateTime"`
}

// DecodeDocument parses raw document data.
func DecodeDocument(data json.RawMessage) (Document, error) {
	var doc Document
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode fare contract document: %w", err)
	}
	return doc, nil
}

// ToFareContract is a pure conversion: times are normalized in loc and the
// validity window is computed from the travel rights.
func (d Document) ToFareContract(id string, loc *time.Location) FareContract {
	fc := FareContract{
		ID:           id,
		OrderID:      d.OrderID,
		Created:      domain.NormalizeOptional(d.Created, loc),
		State:        d.State,
		TotalAmount:  d.TotalAmount,
		Currency:     d.Currency,
		PaymentType:  d.PaymentType,
		TravelRights: make([]TravelRight, 0, len(d.TravelRights)),
	}
	for _, tr := range d.TravelRights {
		right := TravelRight{
			ID:             tr.ID,
			Type:           tr.Type,
			Status:         tr.Status,
			FareProductRef: tr.FareProductRef,
			UserProfileRef: tr.UserProfileRef,
			StartDateTime:  domain.NormalizeOptional(tr.StartDateTime, loc),
			EndDateTime:    domain.NormalizeOptional(tr.EndDateTime, loc),
		}
		for _, ua := range tr.UsedAccesses {
			right.UsedAccesses = append(right.UsedAccesses, UsedAccess{
				StartDateTime: domain.NormalizeOptional(ua.StartDateTime, loc),
				EndDateTime:   domain.NormalizeOptional(ua.EndDateTime, loc),
			})
		}
		fc.TravelRights = append(fc.TravelRights, right)
	}
	fc.ValidFrom, fc.ValidTo = ValidityWindow(fc.TravelRights)
	return fc
}

// ValidityWindow returns the smallest start and largest end over rights.
// A right without a start or end counts as 0, so one open-ended right
// pulls ValidFrom to 0 and a contract whose rights all lack an end gets
// ValidTo 0. An empty list yields 0, 0.
func ValidityWindow(rights []TravelRight) (validFrom, validTo int64) {
	if len(rights) == 0 {
		return 0, 0
	}
	for i, r := range rights {
		start, end := millisOrZero(r.StartDateTime), millisOrZero(r.EndDateTime)
		if i == 0 || start < validFrom {
			validFrom = start
		}
		if i == 0 || end > validTo {
			validTo = end
		}
	}
	return validFrom, validTo
}

func millisOrZero(t *domain.NormalizedTime) int64 {
	if t == nil {
		return 0
	}
	return t.Timestamp
}

// StateAt classifies the contract at now.
func (fc FareContract) StateAt(now time.Time) ValidityState {
	ms := now.UnixMilli()
	switch {
	case ms < fc.ValidFrom:
		return StateWaiting
	case ms <= fc.ValidTo:
		return StateValid
	default:
		return StateExpired
	}
}

// SortNewestFirst orders contracts by creation time, most recent first.
// Contracts without a creation time sort last; ties keep ID order.
func SortNewestFirst(contracts []FareContract) {
	sort.SliceStable(contracts, func(i, j int) bool {
		ci, cj := millisOrZero(contracts[i].Created), millisOrZero(contracts[j].Created)
		if ci != cj {
			return ci > cj
		}
		return contracts[i].ID < contracts[j].ID
	})
}
