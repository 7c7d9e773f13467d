package services

import (
	"delivery-map-client/internal/domain"
	"errors"
	"fmt"
)

// ToAbsoluteTime converts a minute offset from base ("HH:MM") into a wall
// clock. Hours are not wrapped, so a trip past midnight reads "25:10".
func ToAbsoluteTime(minutesOffset int, base string) (string, error) {
	b, err := domain.ParseClock(base)
	if err != nil {
		return "", fmt.Errorf("to absolute time: base: %w", err)
	}

	clock, err := domain.FormatClock(b + minutesOffset)
	if err != nil {
		return "", fmt.Errorf("to absolute time: offset %d from %s: %w", minutesOffset, base, err)
	}
	return clock, nil
}

// ClockToOffset is the inverse of ToAbsoluteTime.
func ClockToOffset(clock, base string) (int, error) {
	b, err := domain.ParseClock(base)
	if err != nil {
		return 0, fmt.Errorf("clock to offset: base: %w", err)
	}
	c, err := domain.ParseClock(clock)
	if err != nil {
		return 0, fmt.Errorf("clock to offset: %w", err)
	}
	return c - b, nil
}

// TotalTime is a duration split into whole hours and remaining minutes.
type TotalTime struct {
	Hours   int
	Minutes int
}

// FormatTotal splits minutes by integer division. Negative totals count as zero.
func FormatTotal(minutes int) TotalTime {
	if minutes < 0 {
		minutes = 0
	}
	return TotalTime{Hours: minutes / 60, Minutes: minutes % 60}
}

func (t TotalTime) String() string { return fmt.Sprintf("%dh %dm", t.Hours, t.Minutes) }

// ValidateWindow checks a form window before anything is sent to the backend.
func ValidateWindow(earliest, latest string) error {
	e, err := domain.ParseClock(earliest)
	if err != nil {
		return domain.NewError(domain.KindValidation, "ValidateWindow", fmt.Errorf("earliest: %w", err))
	}
	l, err := domain.ParseClock(latest)
	if err != nil {
		return domain.NewError(domain.KindValidation, "ValidateWindow", fmt.Errorf("latest: %w", err))
	}
	if e > l {
		return domain.NewError(domain.KindValidation, "ValidateWindow",
			errors.New("earliest time must be before latest time"))
	}
	return nil
}

// ScheduleRow is one stop of the delivery schedule in visit order.
type ScheduleRow struct {
	Order    int
	Location domain.Node
	Arrival  string
	// Window bounds as wall clocks; empty when the stop has no delivery on record.
	WindowEarliest string
	WindowLatest   string
	HasWindow      bool
	// Late is set when Arrival is after WindowLatest.
	Late bool
}

type Schedule struct {
	Start     domain.Node
	Departure string
	Rows      []ScheduleRow
	Total     TotalTime
}

// DeriveSchedule joins a successful plan with the delivery windows it was computed for.
// Arrivals reported as minute offsets are converted against base.
func DeriveSchedule(plan domain.PlanResult, deliveries []domain.Delivery, base string, start domain.Node) (Schedule, error) {
	if !plan.Succeeded() {
		return Schedule{}, domain.NewError(domain.KindInfeasible, "DeriveSchedule", errors.New("plan did not succeed"))
	}

	if _, err := domain.ParseClock(base); err != nil {
		return Schedule{}, fmt.Errorf("derive schedule: base: %w", err)
	}

	windows := make(map[domain.Node]domain.Delivery, len(deliveries))
	for _, d := range deliveries {
		windows[d.Location] = d
	}

	rows := make([]ScheduleRow, 0, len(plan.Sequence))
	for i, loc := range plan.Sequence {
		row := ScheduleRow{Order: i + 1, Location: loc}

		arrival, err := arrivalAt(plan, i, base)
		if err != nil {
			return Schedule{}, fmt.Errorf("derive schedule: stop %d: %w", i+1, err)
		}
		row.Arrival = arrival

		if d, ok := windows[loc]; ok {
			row.HasWindow = true
			if row.WindowEarliest, err = ToAbsoluteTime(d.Earliest, base); err != nil {
				return Schedule{}, fmt.Errorf("derive schedule: stop %d: %w", i+1, err)
			}
			if row.WindowLatest, err = ToAbsoluteTime(d.Latest, base); err != nil {
				return Schedule{}, fmt.Errorf("derive schedule: stop %d: %w", i+1, err)
			}
			row.Late = isLate(row.Arrival, row.WindowLatest)
		}

		rows = append(rows, row)
	}

	return Schedule{
		Start:     start,
		Departure: base,
		Rows:      rows,
		Total:     FormatTotal(plan.TotalTime),
	}, nil
}

func arrivalAt(plan domain.PlanResult, i int, base string) (string, error) {
	if i < len(plan.ArrivalTimes) && plan.ArrivalTimes[i] != "" {
		return plan.ArrivalTimes[i], nil
	}
	if i < len(plan.ArrivalMinutes) {
		return ToAbsoluteTime(plan.ArrivalMinutes[i], base)
	}
	return "", errors.New("no arrival time")
}

func isLate(arrival, latest string) bool {
	a, err := domain.ParseClock(arrival)
	if err != nil {
		return false
	}
	l, err := domain.ParseClock(latest)
	if err != nil {
		return false
	}
	return a > l
}
