package payment

// FundRequest is the body of POST /payments/fund
type FundRequest struct {
	Amount string `json:"amount" validate:"required,money"`
}

// FundResponse is returned for a successfully initialized funding session
type FundResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// WebhookEvent is the provider's callback payload. Only charge.success
// events carry ledger consequences.
type WebhookEvent struct {
	Event string           `json:"event"`
	Data  WebhookEventData `json:"data"`
}

// WebhookEventData carries the charge details. Amount is in minor currency
// units (kobo for NGN).
type WebhookEventData struct {
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Customer  WebhookCustomer `json:"customer"`
}

type WebhookCustomer struct {
	Email string `json:"email"`
}
