package attendance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Workday is the company workday start in the company's own timezone.
type Workday struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// PolicySource supplies the workday used to compute late minutes at
// punch-in.
type PolicySource interface {
	Workday(ctx context.Context, staffID string) (Workday, error)
}

type Service struct {
	store  *Store
	policy PolicySource
	now    func() time.Time
}

func NewService(store *Store, policy PolicySource) *Service {
	return &Service{store: store, policy: policy, now: time.Now}
}

// PunchIn opens today's attendance record. Late minutes are measured
// against the company workday start; punching in twice on the same day is
// rejected.
func (s *Service) PunchIn(ctx context.Context, staffID string) (DayRecord, error) {
	at := s.now().UTC()
	date := midnight(at)

	closed, err := s.store.PeriodClosed(ctx, staffID, date)
	if err != nil {
		return DayRecord{}, err
	}
	if closed {
		return DayRecord{}, ErrPeriodClosed
	}

	if _, err := s.store.RecordForDate(ctx, staffID, date); err == nil {
		return DayRecord{}, ErrAlreadyPunchedIn
	} else if !errors.Is(err, ErrNotFound) {
		return DayRecord{}, err
	}

	late := 0
	if s.policy != nil {
		if wd, err := s.policy.Workday(ctx, staffID); err == nil {
			late = lateMinutes(at, wd)
		}
	}
	return s.store.CreatePunchIn(ctx, staffID, date, at, late)
}

// PunchOut closes today's record and computes working hours.
func (s *Service) PunchOut(ctx context.Context, staffID string) (DayRecord, error) {
	at := s.now().UTC()
	date := midnight(at)

	rec, err := s.store.RecordForDate(ctx, staffID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DayRecord{}, ErrNotPunchedIn
		}
		return DayRecord{}, err
	}
	if rec.PunchOut != nil {
		return DayRecord{}, ErrAlreadyPunchedOut
	}

	hours := decimal.NewFromFloat(at.Sub(*rec.PunchIn).Hours())
	if hours.IsNegative() {
		hours = decimal.Zero
	}
	return s.store.SetPunchOut(ctx, rec.ID, at, hours.StringFixed(4))
}

// Approve marks a pending record approved. A record with no punch-in can
// never be approved as present, and records in a closed salary period are
// immutable.
func (s *Service) Approve(ctx context.Context, recordID, approverID string) (DayRecord, error) {
	return s.review(ctx, recordID, approverID, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, recordID, approverID string) (DayRecord, error) {
	return s.review(ctx, recordID, approverID, StatusRejected)
}

func (s *Service) review(ctx context.Context, recordID, approverID, status string) (DayRecord, error) {
	rec, err := s.store.RecordByID(ctx, recordID)
	if err != nil {
		return DayRecord{}, err
	}
	if rec.Status != StatusPending {
		return DayRecord{}, ErrAlreadyProcessed
	}
	closed, err := s.store.PeriodClosed(ctx, rec.StaffID, rec.Date)
	if err != nil {
		return DayRecord{}, err
	}
	if closed {
		return DayRecord{}, ErrPeriodClosed
	}
	if status == StatusApproved && rec.PunchIn == nil {
		return DayRecord{}, &ValidationError{StaffID: rec.StaffID, Date: rec.Date, Field: "status", Reason: "record without punch-in cannot be approved"}
	}
	return s.store.SetReviewStatus(ctx, rec.ID, status, approverID)
}

func (s *Service) Month(ctx context.Context, staffID string, year int, month time.Month) ([]DayRecord, error) {
	return s.store.MonthRecords(ctx, staffID, year, month)
}

// lateMinutes scores the punch against the workday start on the punch's
// calendar day in the company timezone. A 09:05 IST punch with a 09:00
// start is 5 minutes late regardless of the server clock.
func lateMinutes(at time.Time, wd Workday) int {
	loc := wd.Location
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), wd.Hour, wd.Minute, 0, 0, loc)
	if !at.After(start) {
		return 0
	}
	return int(at.Sub(start).Minutes())
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseWorkdayStart parses an HH:MM policy value.
func ParseWorkdayStart(value string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid workday start %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid workday start hour %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid workday start minute %q", value)
	}
	return hour, minute, nil
}
