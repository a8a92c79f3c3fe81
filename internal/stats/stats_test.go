package stats

import (
	"context"
	"testing"
	"time"
)

type fixedCounter int64

func (c fixedCounter) Count(ctx context.Context) (int64, error) {
	return int64(c), nil
}

type fixedLoanCounter struct {
	active  int64
	overdue int64
}

func (c fixedLoanCounter) CountActive(ctx context.Context) (int64, error) {
	return c.active, nil
}

func (c fixedLoanCounter) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	return c.overdue, nil
}

func TestDashboard(t *testing.T) {
	svc, err := NewService(fixedCounter(42), fixedCounter(17), fixedLoanCounter{active: 9, overdue: 3})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalBooks != 42 || dash.TotalReaders != 17 {
		t.Fatalf("unexpected totals: %+v", dash)
	}
	if dash.ActiveLendings != 9 || dash.OverdueLendings != 3 {
		t.Fatalf("unexpected lending counts: %+v", dash)
	}
}

func TestDashboardRequiresCounters(t *testing.T) {
	if _, err := NewService(nil, fixedCounter(0), fixedLoanCounter{}); err == nil {
		t.Fatal("expected book counter requirement")
	}
	if _, err := NewService(fixedCounter(0), nil, fixedLoanCounter{}); err == nil {
		t.Fatal("expected reader counter requirement")
	}
	if _, err := NewService(fixedCounter(0), fixedCounter(0), nil); err == nil {
		t.Fatal("expected loan counter requirement")
	}
}
