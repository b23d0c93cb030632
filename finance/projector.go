package finance

import "math"

// BreakdownEntry is one slice of the startup-cost chart, one per item as
// entered (duplicate names are kept separate).
type BreakdownEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthlyExpenses are the two recurring-cost buckets.
type MonthlyExpenses struct {
	Fixed    float64 `json:"fixed"`
	Variable float64 `json:"variable"`
}

// ProjectionPoint is one month of the cumulative straight-line series.
type ProjectionPoint struct {
	Month   int `json:"month"`
	Revenue int `json:"revenue"`
	Profit  int `json:"profit"`
}

// Projection holds the chart-ready series derived from the wizard numbers.
type Projection struct {
	ExpenseBreakdown []BreakdownEntry  `json:"expenseBreakdown"`
	MonthlyExpenses  MonthlyExpenses   `json:"monthlyExpenses"`
	Series           []ProjectionPoint `json:"series"`
}

// Project derives the three chart series from the raw cost and revenue-goal
// inputs. The 12-month series is cumulative and linear: month m carries
// round(goal/12 * m) revenue and round((goal/12 - monthlyCost) * m) profit,
// each point rounded independently. Months where costs exceed the monthly
// goal yield negative cumulative profit; that is intentional and kept.
func Project(form BusinessFormData) Projection {
	breakdown := make([]BreakdownEntry, 0, len(form.StartupCosts))
	for _, item := range form.StartupCosts {
		breakdown = append(breakdown, BreakdownEntry{Name: item.Name, Value: item.Amount})
	}

	fixed := sumAmounts(form.FixedCosts)
	variable := sumAmounts(form.VariableCosts)

	monthlyGoal := form.RevenueGoal / 12
	monthlyCost := fixed + variable

	series := make([]ProjectionPoint, 0, 12)
	for m := 1; m <= 12; m++ {
		series = append(series, ProjectionPoint{
			Month:   m,
			Revenue: int(math.Round(monthlyGoal * float64(m))),
			Profit:  int(math.Round((monthlyGoal - monthlyCost) * float64(m))),
		})
	}

	return Projection{
		ExpenseBreakdown: breakdown,
		MonthlyExpenses:  MonthlyExpenses{Fixed: fixed, Variable: variable},
		Series:           series,
	}
}

func sumAmounts(items []ExpenseItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Amount
	}
	return total
}
