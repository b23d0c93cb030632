package finance

import "testing"

func TestProjectTwelveMonthSeries(t *testing.T) {
	form := BusinessFormData{
		RevenueGoal:   12000,
		FixedCosts:    []ExpenseItem{{ID: "1", Name: "Rent", Amount: 500}},
		VariableCosts: []ExpenseItem{{ID: "1", Name: "Marketing", Amount: 300}},
	}
	p := Project(form)

	if len(p.Series) != 12 {
		t.Fatalf("expected 12 points, got %d", len(p.Series))
	}
	first := p.Series[0]
	if first.Month != 1 || first.Revenue != 1000 || first.Profit != 200 {
		t.Errorf("month 1 = %+v, want month=1 revenue=1000 profit=200", first)
	}
	last := p.Series[11]
	if last.Month != 12 || last.Revenue != 12000 || last.Profit != 2400 {
		t.Errorf("month 12 = %+v, want month=12 revenue=12000 profit=2400", last)
	}
}

func TestProjectNegativeProfitNotClamped(t *testing.T) {
	form := BusinessFormData{
		RevenueGoal:   1200, // 100/month against 900 of monthly costs
		FixedCosts:    []ExpenseItem{{Name: "Rent", Amount: 600}},
		VariableCosts: []ExpenseItem{{Name: "Stock", Amount: 300}},
	}
	p := Project(form)
	for _, point := range p.Series {
		want := -800 * point.Month
		if point.Profit != want {
			t.Errorf("month %d profit = %d, want %d", point.Month, point.Profit, want)
		}
	}
}

func TestProjectRoundsEachPointIndependently(t *testing.T) {
	form := BusinessFormData{RevenueGoal: 1000} // monthly goal 83.333...
	p := Project(form)
	if got := p.Series[0].Revenue; got != 83 {
		t.Errorf("month 1 revenue = %d, want 83", got)
	}
	if got := p.Series[5].Revenue; got != 500 {
		t.Errorf("month 6 revenue = %d, want 500", got)
	}
	if got := p.Series[11].Revenue; got != 1000 {
		t.Errorf("month 12 revenue = %d, want 1000", got)
	}
}

func TestProjectBreakdownKeepsDuplicateNames(t *testing.T) {
	form := BusinessFormData{
		StartupCosts: []ExpenseItem{
			{Name: "Equipment", Amount: 1000},
			{Name: "Equipment", Amount: 250},
			{Name: "Registration", Amount: 100},
		},
	}
	p := Project(form)
	if len(p.ExpenseBreakdown) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(p.ExpenseBreakdown))
	}
	if p.ExpenseBreakdown[0].Value != 1000 || p.ExpenseBreakdown[1].Value != 250 {
		t.Errorf("duplicate names must stay separate: %+v", p.ExpenseBreakdown)
	}
}

func TestProjectMonthlyBuckets(t *testing.T) {
	form := BusinessFormData{
		FixedCosts:    []ExpenseItem{{Amount: 100}, {Amount: 150}},
		VariableCosts: []ExpenseItem{{Amount: 75}},
	}
	p := Project(form)
	if p.MonthlyExpenses.Fixed != 250 {
		t.Errorf("fixed = %v, want 250", p.MonthlyExpenses.Fixed)
	}
	if p.MonthlyExpenses.Variable != 75 {
		t.Errorf("variable = %v, want 75", p.MonthlyExpenses.Variable)
	}
}
