package enums

// LoanStatus is the derived display state of a lending record. It is computed
// from the record's dates on every read and never persisted.
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusOverdue  LoanStatus = "overdue"
	LoanStatusReturned LoanStatus = "returned"
)

func (s LoanStatus) String() string {
	return string(s)
}

func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusActive, LoanStatusOverdue, LoanStatusReturned:
		return true
	}
	return false
}
