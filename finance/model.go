package finance

// ExpenseItem is one named cost line entered in the wizard.
type ExpenseItem struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// BusinessFormData is the full wizard snapshot. Only the cost lists and the
// revenue goal participate in the projection; the narrative fields travel
// untouched to the generation prompt and into the saved-plan snapshot.
type BusinessFormData struct {
	BusinessType             string        `json:"businessType"`
	CompanyName              string        `json:"companyName"`
	Description              string        `json:"description"`
	Uniqueness               string        `json:"uniqueness"`
	TargetAudience           string        `json:"targetAudience"`
	Competitors              string        `json:"competitors"`
	CompetitorDifferentiator string        `json:"competitorDifferentiator"`
	MarketTrends             string        `json:"marketTrends"`
	RevenueStreams           string        `json:"revenueStreams"`
	Resources                string        `json:"resources"`
	DeliveryProcess          string        `json:"deliveryProcess"`
	CustomerReach            string        `json:"customerReach"`
	MarketingChannels        string        `json:"marketingChannels"`
	BrandImage               string        `json:"brandImage"`
	StartupCosts             []ExpenseItem `json:"startupCosts"`
	FixedCosts               []ExpenseItem `json:"fixedCosts"`
	VariableCosts            []ExpenseItem `json:"variableCosts"`
	RevenueGoal              float64       `json:"revenueGoal"`
	Risks                    string        `json:"risks"`
	Mitigation               string        `json:"mitigation"`
}
