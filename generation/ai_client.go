package generation

import (
	"context"

	"visionary-backend/finance"
	"visionary-backend/tiers"
)

// AIClient abstracts the completion client so unit tests can substitute a
// mock. Only the two calls the orchestrator issues are listed.
type AIClient interface {
	GeneratePlan(ctx context.Context, form finance.BusinessFormData, lang string, tier tiers.Tier) (string, error)
	StreamPlan(ctx context.Context, form finance.BusinessFormData, lang string, tier tiers.Tier) (<-chan string, error)
}
