package wallet

// TransferRequest is the body of POST /wallet/transfer
type TransferRequest struct {
	DestinationEmail string `json:"destination_email" validate:"required,email"`
	Amount           string `json:"amount" validate:"required,money"`
}

// SummaryResponse is the body of GET /wallet/me
type SummaryResponse struct {
	Balance      string `json:"balance"`
	Currency     string `json:"currency"`
	HasPaidToday bool   `json:"has_paid_today"`
}
