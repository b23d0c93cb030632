package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"visionary-backend/finance"
	"visionary-backend/tiers"
)

type Client struct {
	api   *openai.Client
	Model string
}

func NewClient() *Client {
	key := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("PLAN_MODEL")
	if model == "" {
		model = openai.GPT4o
	}
	c := openai.NewClient(key)
	return &Client{api: c, Model: model}
}

// GeneratePlan issues exactly one completion request for a business plan.
// Callers must not retry automatically; a failure surfaces to the user.
func (c *Client) GeneratePlan(ctx context.Context, form finance.BusinessFormData, lang string, tier tiers.Tier) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(form, lang, tier)},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// StreamPlan is the streaming variant used by the SSE endpoint. The
// returned channel yields tokens and is closed when the stream ends.
func (c *Client) StreamPlan(ctx context.Context, form finance.BusinessFormData, lang string, tier tiers.Tier) (<-chan string, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(form, lang, tier)},
		},
	})
	if err != nil {
		return nil, err
	}

	ch := make(chan string)

	go func() {
		defer stream.Close()
		defer close(ch)
		for {
			resp, err := stream.Recv()
			if err != nil {
				break
			}
			if len(resp.Choices) > 0 {
				ch <- resp.Choices[0].Delta.Content
			}
		}
	}()

	return ch, nil
}

// BuildPrompt assembles the generation prompt from the wizard snapshot.
// Pro-tier requests ask for the deeper analysis variant.
func BuildPrompt(form finance.BusinessFormData, lang string, tier tiers.Tier) string {
	language := "English"
	if lang == "fi" {
		language = "Finnish"
	}

	closing := "Format the output using professional Markdown."
	if tier == tiers.Pro {
		closing = "This is a PRO generation. Provide extreme detail, deep competitive analysis, 5-year outlook, and specific strategic recommendations based on current market trends."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a professional, detailed, and structured business plan in %s based on the following data:\n\n", language)
	fmt.Fprintf(&b, "Company Name: %s\n", form.CompanyName)
	fmt.Fprintf(&b, "Business Type: %s\n", form.BusinessType)
	fmt.Fprintf(&b, "Product/Service: %s\n", form.Description)
	fmt.Fprintf(&b, "Value Proposition: %s\n", form.Uniqueness)
	fmt.Fprintf(&b, "Target Audience: %s\n\n", form.TargetAudience)
	fmt.Fprintf(&b, "Market Context:\n- Competitors: %s\n- Differentiators: %s\n- Trends: %s\n\n",
		form.Competitors, form.CompetitorDifferentiator, form.MarketTrends)
	fmt.Fprintf(&b, "Business Model:\n- Revenue Streams: %s\n- Resources: %s\n- Delivery: %s\n\n",
		form.RevenueStreams, form.Resources, form.DeliveryProcess)
	fmt.Fprintf(&b, "Marketing:\n- Reach Strategy: %s\n- Channels: %s\n- Brand Image: %s\n\n",
		form.CustomerReach, form.MarketingChannels, form.BrandImage)
	fmt.Fprintf(&b, "Financial Summary:\n- Revenue Goal: %.0f EUR/year\n- Major Startup Costs: %s\n- Monthly Fixed Costs: %s\n- Monthly Variable Costs: %s\n\n",
		form.RevenueGoal, joinCosts(form.StartupCosts), joinCosts(form.FixedCosts), joinCosts(form.VariableCosts))
	fmt.Fprintf(&b, "Risks:\n- Risks: %s\n- Mitigation: %s\n\n", form.Risks, form.Mitigation)
	b.WriteString(closing)
	b.WriteString("\nInclude sections for Executive Summary, Company Overview, Market Analysis, Operations, Marketing Strategy, Financial Plan (including a brief analysis of break-even and profitability based on the numbers), and Risk Management.")
	return b.String()
}

func joinCosts(items []finance.ExpenseItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s: %.0f EUR", item.Name, item.Amount))
	}
	return strings.Join(parts, ", ")
}
