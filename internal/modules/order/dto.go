package order

import "copyprocloud/internal/domain"

// SubmitOrderRequest mirrors the site's order form.
type SubmitOrderRequest struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Service        string   `json:"service"`
	Details        string   `json:"details"`
	AdditionalInfo string   `json:"additional_info,omitempty"`
	Deadline       string   `json:"deadline,omitempty"`
	Addons         []string `json:"addons,omitempty"`
}

// QuoteResponse is the live form feedback: step progress, the price
// estimate in rubles, and a human-readable delivery window.
type QuoteResponse struct {
	CompletedSteps []int  `json:"completed_steps"`
	CurrentStep    int    `json:"current_step"`
	Percent        int    `json:"percent"`
	EstimatedPrice int64  `json:"estimated_price"`
	DeliveryTime   string `json:"delivery_time"`
}

type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type UpdatePriorityRequest struct {
	Priority domain.OrderPriority `json:"priority"`
}

type AssignRequest struct {
	AdminID int64 `json:"admin_id"`
}
