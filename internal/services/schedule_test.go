package services

import (
	"delivery-map-client/internal/domain"
	"testing"
)

func TestToAbsoluteTime(t *testing.T) {
	cases := []struct {
		offset int
		base   string
		want   string
	}{
		{90, "08:00", "09:30"},
		{0, "08:00", "08:00"},
		{-30, "08:00", "07:30"},
		{1500, "08:00", "33:00"},
		{5, "00:00", "00:05"},
	}

	for _, tc := range cases {
		got, err := ToAbsoluteTime(tc.offset, tc.base)
		if err != nil {
			t.Fatalf("ToAbsoluteTime(%d, %q): unexpected error: %v", tc.offset, tc.base, err)
		}
		if got != tc.want {
			t.Errorf("ToAbsoluteTime(%d, %q) = %q, want %q", tc.offset, tc.base, got, tc.want)
		}
	}

	if _, err := ToAbsoluteTime(-600, "08:00"); err == nil {
		t.Errorf("expected error for a time before midnight")
	}
	if _, err := ToAbsoluteTime(10, "8h"); err == nil {
		t.Errorf("expected error for malformed base")
	}
}

func TestClockToOffset_InvertsToAbsoluteTime(t *testing.T) {
	for _, off := range []int{-15, 0, 45, 600} {
		clock, err := ToAbsoluteTime(off, "07:45")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := ClockToOffset(clock, "07:45")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != off {
			t.Errorf("round trip of %d gave %d", off, got)
		}
	}
}

func TestFormatTotal(t *testing.T) {
	if got := FormatTotal(95).String(); got != "1h 35m" {
		t.Errorf("FormatTotal(95) = %q", got)
	}
	if got := FormatTotal(59); got != (TotalTime{Hours: 0, Minutes: 59}) {
		t.Errorf("FormatTotal(59) = %+v", got)
	}
	if got := FormatTotal(-3); got != (TotalTime{}) {
		t.Errorf("FormatTotal(-3) = %+v", got)
	}
}

func TestValidateWindow(t *testing.T) {
	if err := ValidateWindow("08:30", "09:30"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateWindow("09:00", "09:00"); err != nil {
		t.Fatalf("equal bounds must be accepted: %v", err)
	}

	for _, w := range [][2]string{{"10:00", "09:00"}, {"8:7", "09:00"}, {"08:00", ""}, {"ab:cd", "09:00"}, {"+8:30", "09:00"}, {"08:30", "1000:00"}} {
		err := ValidateWindow(w[0], w[1])
		if domain.KindOf(err) != domain.KindValidation {
			t.Errorf("ValidateWindow(%q, %q) kind = %v, want validation", w[0], w[1], domain.KindOf(err))
		}
	}
}

func TestDeriveSchedule(t *testing.T) {
	// build test data
	plan := domain.PlanResult{
		Status:       domain.StatusSuccess,
		Sequence:     []domain.Node{n(2, 0), n(2, 2)},
		ArrivalTimes: []string{"08:10", "09:40"},
		TotalTime:    100,
	}
	deliveries := []domain.Delivery{
		{Location: n(2, 0), Earliest: 0, Latest: 60},
		{Location: n(2, 2), Earliest: 30, Latest: 90},
	}

	// verify behavior
	s, err := DeriveSchedule(plan, deliveries, "08:00", n(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Departure != "08:00" || s.Total.String() != "1h 40m" {
		t.Fatalf("departure=%q total=%q", s.Departure, s.Total)
	}
	if len(s.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(s.Rows))
	}

	r := s.Rows[0]
	if r.Order != 1 || r.Arrival != "08:10" || r.WindowEarliest != "08:00" || r.WindowLatest != "09:00" || r.Late {
		t.Errorf("row 1 = %+v", r)
	}
	r = s.Rows[1]
	if r.Order != 2 || !r.Late || r.WindowLatest != "09:30" {
		t.Errorf("row 2 = %+v", r)
	}
}

func TestDeriveSchedule_MinuteArrivals(t *testing.T) {
	plan := domain.PlanResult{
		Status:         domain.StatusSuccess,
		Sequence:       []domain.Node{n(1, 1)},
		ArrivalTimes:   []string{""},
		ArrivalMinutes: []int{25},
		TotalTime:      25,
	}

	s, err := DeriveSchedule(plan, nil, "08:00", n(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Rows[0].Arrival != "08:25" || s.Rows[0].HasWindow {
		t.Fatalf("row = %+v", s.Rows[0])
	}
}

func TestDeriveSchedule_RejectsFailedPlan(t *testing.T) {
	_, err := DeriveSchedule(domain.PlanResult{Status: "infeasible"}, nil, "08:00", n(0, 0))
	if domain.KindOf(err) != domain.KindInfeasible {
		t.Fatalf("kind = %v, want infeasible", domain.KindOf(err))
	}
}
