package housing

import (
	"context"
	"fmt"
	"math"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

// LoanType selects which average loan size metric feeds the
// affordability calculation.
type LoanType string

// Loan types with a tracked average loan size.
const (
	LoanFirstHomeBuyer LoanType = "first_home_buyer"
	LoanOwnerOccupier  LoanType = "owner_occupier"
)

// loanTermYears is the assumed principal-and-interest loan term.
const loanTermYears = 30

// Affordability is the result of a housing affordability calculation.
type Affordability struct {
	LoanType          LoanType
	DualIncome        bool
	LoanAmount        float64 // dollars
	AnnualIncome      float64 // dollars
	InterestRate      float64 // per cent
	MonthlyRepayment  float64 // dollars
	RepaymentToIncome float64 // per cent of gross income
	DebtToIncome      float64 // ratio
	StressLevel       string
	StressDescription string
}

// Sentence renders the assessment as one answer sentence.
func (a Affordability) Sentence() string {
	return fmt.Sprintf(
		"A %s loan of $%.0f at %.2f%% costs $%.0f per month, %.1f%% of a $%.0f gross income (debt-to-income %.1fx): %s stress (%s).",
		a.LoanType, a.LoanAmount, a.InterestRate, a.MonthlyRepayment,
		a.RepaymentToIncome, a.AnnualIncome, a.DebtToIncome,
		a.StressLevel, a.StressDescription)
}

// affordability combines the latest average loan size, weekly earnings
// and variable mortgage rate into a repayment stress assessment.
func (h *Handler) affordability(ctx context.Context, loanType LoanType, dualIncome bool) (Affordability, error) {
	loanMetric := MetricLoanSizeFirstHome
	if loanType == LoanOwnerOccupier {
		loanMetric = MetricLoanSizeOwnerOcc
	}

	loan, err := h.metrics.Latest(ctx, loanMetric)
	if err != nil {
		return Affordability{}, fmt.Errorf("loan size: %w", err)
	}
	earnings, err := h.metrics.Latest(ctx, MetricWeeklyEarnings)
	if err != nil {
		return Affordability{}, fmt.Errorf("earnings: %w", err)
	}
	rate, err := h.metrics.Latest(ctx, MetricVariableRate)
	if err != nil {
		return Affordability{}, fmt.Errorf("mortgage rate: %w", err)
	}

	return computeAffordability(loanType, dualIncome, loan, earnings, rate), nil
}

func computeAffordability(loanType LoanType, dualIncome bool, loan, earnings, rate *domain.Observation) Affordability {
	// Loan sizes are published in thousands of dollars.
	loanAmount := loan.Value * 1000
	annualIncome := earnings.Value * 52
	if dualIncome {
		annualIncome *= 2
	}

	monthly := monthlyRepayment(loanAmount, rate.Value, loanTermYears)
	repaymentToIncome := 0.0
	debtToIncome := 0.0
	if annualIncome > 0 {
		repaymentToIncome = monthly * 12 / annualIncome * 100
		debtToIncome = loanAmount / annualIncome
	}

	level, desc := stressLevel(repaymentToIncome)
	return Affordability{
		LoanType:          loanType,
		DualIncome:        dualIncome,
		LoanAmount:        loanAmount,
		AnnualIncome:      annualIncome,
		InterestRate:      rate.Value,
		MonthlyRepayment:  monthly,
		RepaymentToIncome: repaymentToIncome,
		DebtToIncome:      debtToIncome,
		StressLevel:       level,
		StressDescription: desc,
	}
}

// monthlyRepayment is the standard principal-and-interest amortisation
// formula. ratePct is the annual rate in per cent.
func monthlyRepayment(principal, ratePct float64, years int) float64 {
	n := float64(years * 12)
	monthlyRate := ratePct / 100 / 12
	if monthlyRate <= 0 {
		return principal / n
	}
	factor := math.Pow(1+monthlyRate, n)
	return principal * monthlyRate * factor / (factor - 1)
}

// stressLevel maps repayment-to-income share to the conventional
// mortgage stress bands.
func stressLevel(repaymentToIncomePct float64) (string, string) {
	switch {
	case repaymentToIncomePct < 25:
		return "LOW", "comfortable, can build savings"
	case repaymentToIncomePct < 30:
		return "MODERATE", "manageable, limited buffer"
	case repaymentToIncomePct < 35:
		return "HIGH", "stretched, vulnerable to rate rises"
	default:
		return "SEVERE", "mortgage stress, risk of default"
	}
}
