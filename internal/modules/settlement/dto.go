package settlement

// CreateIntentRequest starts a payment for a booking on behalf of the
// booking's mentee.
type CreateIntentRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

// WebhookEvent mirrors the provider's event envelope. Only the fields
// this service reads are modeled.
type WebhookEvent struct {
	ID   string `json:"id" binding:"required"`
	Type string `json:"type" binding:"required"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Metadata struct {
				BookingID string `json:"booking_id"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}
