package jobs

import (
	"testing"
	"time"

	"staffpay/internal/domain/payroll"
	"staffpay/internal/platform/config"
)

func TestPreviousPeriod(t *testing.T) {
	cases := []struct {
		now  time.Time
		want payroll.Period
	}{
		{time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC), payroll.NewPeriod(2026, time.February)},
		{time.Date(2026, time.March, 29, 0, 0, 0, 0, time.UTC), payroll.NewPeriod(2026, time.February)},
		{time.Date(2026, time.May, 31, 12, 0, 0, 0, time.UTC), payroll.NewPeriod(2026, time.April)},
		{time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), payroll.NewPeriod(2026, time.June)},
		{time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC), payroll.NewPeriod(2025, time.December)},
	}
	for _, tc := range cases {
		if got := previousPeriod(tc.now); got != tc.want {
			t.Fatalf("previousPeriod(%s) = %s, want %s", tc.now.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestNewServiceUsesWallClock(t *testing.T) {
	svc := New(nil, config.Config{}, nil, nil)
	if svc.now == nil {
		t.Fatal("expected clock to be set")
	}
}
