package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrOwnerNotFound = errors.New("image owner not found")

// User models an account synced from the external identity provider.
// ExternalID is the provider-issued stable identifier; ID is the internal
// storage identifier. Ownership comparisons always use internal ids.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	// CreditBalance is debited once per paid transformation. There is no
	// enforced floor; the balance may go negative.
	CreditBalance int64     `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
