package plans

import (
	"time"

	"visionary-backend/finance"
)

// SavedPlan is one generated business plan kept for a user, together with
// the wizard snapshot it was generated from.
type SavedPlan struct {
	ID          int                      `json:"id"`
	UserID      int                      `json:"user_id"`
	UserEmail   string                   `json:"user_email"`
	CompanyName string                   `json:"company_name"`
	PlanText    string                   `json:"plan_text"`
	FormData    finance.BusinessFormData `json:"data"`
	CreatedAt   time.Time                `json:"created_at"`
}
