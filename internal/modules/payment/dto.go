package payment

type CreatePaymentRequest struct {
	OrderID   int64  `json:"order_id" binding:"required" example:"123"`
	Gateway   string `json:"gateway" binding:"required" example:"modulbank"`
	PromoCode string `json:"promo_code,omitempty" example:"WELCOME10"`
}

type CreatePaymentResponse struct {
	PaymentID      int64  `json:"payment_id" example:"7"`
	RedirectURL    string `json:"redirect_url" example:"https://pay.modulbank.ru/pay?..."`
	Amount         int64  `json:"amount" example:"575000"`
	DiscountAmount int64  `json:"discount_amount" example:"57500"`
	Currency       string `json:"currency" example:"RUB"`
	Status         string `json:"status" example:"pending"`
}

// yukassaWebhookEvent is the envelope YuKassa posts. Only the payment id
// and type are read from it; everything else is re-fetched from the API.
type yukassaWebhookEvent struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	Object struct {
		ID       string            `json:"id"`
		Status   string            `json:"status"`
		Metadata map[string]string `json:"metadata"`
	} `json:"object"`
}
