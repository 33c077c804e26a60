package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestClassify(t *testing.T) {
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	punchIn := date.Add(9 * time.Hour)
	threshold := decimal.RequireFromString("4")

	cases := []struct {
		name string
		rec  DayRecord
		want DayClass
	}{
		{
			name: "full day approved",
			rec:  DayRecord{Date: date, PunchIn: timePtr(punchIn), WorkingHours: decPtr("8"), Status: StatusApproved},
			want: ClassPresent,
		},
		{
			name: "below threshold is half day",
			rec:  DayRecord{Date: date, PunchIn: timePtr(punchIn), WorkingHours: decPtr("3.5"), Status: StatusApproved},
			want: ClassHalfDay,
		},
		{
			name: "exactly at threshold is present",
			rec:  DayRecord{Date: date, PunchIn: timePtr(punchIn), WorkingHours: decPtr("4"), Status: StatusApproved},
			want: ClassPresent,
		},
		{
			name: "no punch in is absent",
			rec:  DayRecord{Date: date, Status: StatusAbsent},
			want: ClassAbsent,
		},
		{
			name: "rejected is absent regardless of hours",
			rec:  DayRecord{Date: date, PunchIn: timePtr(punchIn), WorkingHours: decPtr("8"), Status: StatusRejected},
			want: ClassAbsent,
		},
		{
			name: "leave is absent",
			rec:  DayRecord{Date: date, PunchIn: timePtr(punchIn), Status: StatusLeave},
			want: ClassAbsent,
		},
		{
			name: "open session counts as present",
			rec:  DayRecord{Date: date, PunchIn: timePtr(punchIn), Status: StatusPending},
			want: ClassPresent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.rec, threshold))
		})
	}
}

func TestClassifyZeroThresholdNeverHalves(t *testing.T) {
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	punchIn := date.Add(9 * time.Hour)
	rec := DayRecord{Date: date, PunchIn: timePtr(punchIn), WorkingHours: decPtr("1"), Status: StatusApproved}

	assert.Equal(t, ClassPresent, Classify(rec, decimal.Zero))
}

func TestDayRecordValidate(t *testing.T) {
	date := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	punchIn := date.Add(9 * time.Hour)

	t.Run("valid", func(t *testing.T) {
		rec := DayRecord{Date: date, PunchIn: timePtr(punchIn), WorkingHours: decPtr("8"), Status: StatusApproved}
		require.NoError(t, rec.Validate())
	})

	t.Run("zero date", func(t *testing.T) {
		rec := DayRecord{Status: StatusPending}
		require.Error(t, rec.Validate())
	})

	t.Run("approved without punch in", func(t *testing.T) {
		rec := DayRecord{Date: date, Status: StatusApproved}
		require.Error(t, rec.Validate())
	})

	t.Run("punch out before punch in", func(t *testing.T) {
		out := punchIn.Add(-time.Hour)
		rec := DayRecord{Date: date, PunchIn: timePtr(punchIn), PunchOut: &out, Status: StatusPending}
		require.Error(t, rec.Validate())
	})

	t.Run("hours above 24", func(t *testing.T) {
		rec := DayRecord{Date: date, PunchIn: timePtr(punchIn), WorkingHours: decPtr("25"), Status: StatusPending}
		require.Error(t, rec.Validate())
	})

	t.Run("negative late minutes", func(t *testing.T) {
		rec := DayRecord{Date: date, PunchIn: timePtr(punchIn), LateMinutes: -5, Status: StatusPending}
		require.Error(t, rec.Validate())
	})
}

func TestParseWorkdayStart(t *testing.T) {
	hour, minute, err := ParseWorkdayStart("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 30, minute)

	for _, raw := range []string{"", "9", "24:00", "09:60", "aa:bb"} {
		_, _, err := ParseWorkdayStart(raw)
		assert.Error(t, err, raw)
	}
}
