package loans

import (
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
)

// StatusOf derives the display state of a lending record at the given
// instant. Returned wins over everything; a loan due exactly now is still
// active, only a due date strictly in the past counts as overdue.
func StatusOf(loan *models.Loan, now time.Time) enums.LoanStatus {
	if loan == nil {
		return enums.LoanStatusActive
	}
	if loan.IsReturned {
		return enums.LoanStatusReturned
	}
	if loan.DueDate.Before(now) {
		return enums.LoanStatusOverdue
	}
	return enums.LoanStatusActive
}

func viewOf(loan *models.Loan, now time.Time) *LoanView {
	if loan == nil {
		return nil
	}
	return &LoanView{
		ID:         loan.ID,
		BookID:     loan.BookID,
		ReaderID:   loan.ReaderID,
		LendDate:   loan.LendDate,
		DueDate:    loan.DueDate,
		ReturnedAt: loan.ReturnedAt,
		IsReturned: loan.IsReturned,
		Status:     StatusOf(loan, now),
		CreatedAt:  loan.CreatedAt,
		UpdatedAt:  loan.UpdatedAt,
	}
}
