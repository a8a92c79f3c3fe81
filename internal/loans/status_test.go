package loans

import (
	"testing"
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
)

func TestStatusOf(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	returnedAt := now.Add(-time.Hour)

	cases := []struct {
		name string
		loan models.Loan
		want enums.LoanStatus
	}{
		{
			name: "due in the future",
			loan: models.Loan{DueDate: now.Add(24 * time.Hour)},
			want: enums.LoanStatusActive,
		},
		{
			name: "due exactly now",
			loan: models.Loan{DueDate: now},
			want: enums.LoanStatusActive,
		},
		{
			name: "due in the past",
			loan: models.Loan{DueDate: now.Add(-time.Minute)},
			want: enums.LoanStatusOverdue,
		},
		{
			name: "returned wins over overdue",
			loan: models.Loan{DueDate: now.Add(-48 * time.Hour), IsReturned: true, ReturnedAt: &returnedAt},
			want: enums.LoanStatusReturned,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusOf(&tc.loan, now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestStatusOfNilLoan(t *testing.T) {
	if got := StatusOf(nil, time.Now()); got != enums.LoanStatusActive {
		t.Fatalf("unexpected status %s", got)
	}
}
