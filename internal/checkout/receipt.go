package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the outcome of one checkout. A receipt with no lines means the
// cart was empty and nothing happened.
type Receipt struct {
	OrderID      string
	CustomerID   string
	PurchaseDate string
	CreatedAt    time.Time
	Lines        []ReceiptLine
	Total        decimal.Decimal
	HasCourse    bool
}

// ReceiptLine is one purchased drug priced at checkout time.
type ReceiptLine struct {
	DrugName        string
	Quantity        int
	UnitPrice       decimal.Decimal
	LineTotal       decimal.Decimal
	CourseDays      int
	DosageFrequency string
	CourseEndDate   string
}

func (r *Receipt) Empty() bool {
	return r == nil || len(r.Lines) == 0
}

// CourseLines returns the lines that enrolled the customer in reminders.
func (r *Receipt) CourseLines() []ReceiptLine {
	if r == nil {
		return nil
	}
	out := []ReceiptLine{}
	for _, l := range r.Lines {
		if l.CourseDays > 0 {
			out = append(out, l)
		}
	}
	return out
}
