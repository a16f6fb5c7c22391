package domain

import (
	"strings"
	"time"
)

type CustomerDetails struct {
	Name     string `json:"name" bson:"name" validate:"required"`
	Phone    string `json:"phone" bson:"phone" validate:"required"`
	Address  string `json:"address" bson:"address" validate:"required"`
	City     string `json:"city" bson:"city" validate:"required"`
	Postcode string `json:"postcode" bson:"postcode" validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed, so blank input
// fails the required check.
func (c CustomerDetails) Trimmed() CustomerDetails {
	return CustomerDetails{
		Name:     strings.TrimSpace(c.Name),
		Phone:    strings.TrimSpace(c.Phone),
		Address:  strings.TrimSpace(c.Address),
		City:     strings.TrimSpace(c.City),
		Postcode: strings.TrimSpace(c.Postcode),
	}
}

// OrderRequest is one order awaiting submission. A nil Customer means the
// customer details are missing.
type OrderRequest struct {
	Line     CartLine         `json:"line"`
	Customer *CustomerDetails `json:"customerDetails"`
}

// Order is an immutable record in the document store. CreatedAt is assigned
// by the store.
type Order struct {
	ID              string `json:"orderId" bson:"_id"`
	CartLine        `bson:",inline"`
	CustomerDetails CustomerDetails `json:"customerDetails" bson:"customer_details"`
	OwnerID         string          `json:"ownerId" bson:"owner_id"`
	CreatedAt       time.Time       `json:"createdAt" bson:"created_at"`
}

// OrderStatus carries the selector flags for order add and fetch activity.
type OrderStatus struct {
	Adding     bool   `json:"adding"`
	AddError   string `json:"add_error,omitempty"`
	Fetching   bool   `json:"fetching"`
	FetchError string `json:"fetch_error,omitempty"`
}

type FormState string

const (
	FormStateClosed     FormState = "closed"
	FormStateOpen       FormState = "open"
	FormStateSubmitting FormState = "submitting"
)

// String representation (for logging)
func (s FormState) String() string {
	return string(s)
}
