package receipts

import (
	"time"

	"visionary-backend/tiers"
)

// Receipt statuses. Approval and rejection are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Receipt is a manual payment claim: an uploaded proof of bank transfer
// awaiting admin review.
type Receipt struct {
	ID          int        `json:"id"`
	UserID      int        `json:"user_id"`
	Email       string     `json:"email"`
	Tier        tiers.Tier `json:"tier"`
	Amount      float64    `json:"amount"`
	FileName    string     `json:"file_name"`
	FileData    string     `json:"file_data,omitempty"` // base64 data URL, opaque
	TextPreview string     `json:"text_preview,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}
