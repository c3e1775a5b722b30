package handler

// Request types for the user ledger endpoints. The create payload mirrors the
// identity provider's sign-up event; updates are partial.

type createUserRequest struct {
	ExternalID    string `json:"external_id" validate:"required"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	CreditBalance int64  `json:"credit_balance"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type adjustCreditsRequest struct {
	// Delta may be negative (debit) or positive (purchase). Zero is rejected.
	Delta int64 `json:"delta" validate:"required"`
}
