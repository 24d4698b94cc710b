package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

var (
	ErrInvalidDayOff      = errors.New("dayOff must be a weekday name")
	ErrInvalidWorkHours   = errors.New("workHours.start must be before workHours.end")
	ErrInvalidSpecialDate = errors.New("invalid special date")
	ErrDuplicateDate      = errors.New("special date already present")
	ErrInvalidTemplate    = errors.New("invalid time slot template")
)

// WorkHours is the daily opening window, start inclusive and end exclusive.
type WorkHours struct {
	Start types.TimeString
	End   types.TimeString
}

// SpecialDate overrides the weekly pattern for a single calendar day.
// IsClosed=false forces the day open even when it falls on the day off.
type SpecialDate struct {
	Date     time.Time
	Reason   string
	IsClosed bool
}

// TemplateEntry is one bookable start time of the day.
type TemplateEntry struct {
	Time     types.TimeString
	IsActive bool
}

// ScheduleConfiguration describes when a facility is bookable.
// There is at most one per facility.
type ScheduleConfiguration struct {
	FacilityID        int64
	DayOff            time.Weekday
	WorkHours         WorkHours
	SpecialDates      []SpecialDate
	TimeSlotTemplate  []TemplateEntry
	DefaultEmployeeID *int64 // assigned to newly generated slots
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SpecialDateFor returns the override for the calendar day of date.
func (c *ScheduleConfiguration) SpecialDateFor(date time.Time) (SpecialDate, bool) {
	day := DateOnly(date)
	for _, sd := range c.SpecialDates {
		if DateOnly(sd.Date).Equal(day) {
			return sd, true
		}
	}
	return SpecialDate{}, false
}

// IsOpenOn resolves the day-off rule and special-date overrides for date.
func (c *ScheduleConfiguration) IsOpenOn(date time.Time) bool {
	if sd, ok := c.SpecialDateFor(date); ok {
		return !sd.IsClosed
	}
	return date.Weekday() != c.DayOff
}

// ActiveTimes returns the sorted, de-duplicated active template times that fall
// inside the working hours.
func (c *ScheduleConfiguration) ActiveTimes() []types.TimeString {
	seen := make(map[types.TimeString]struct{}, len(c.TimeSlotTemplate))
	times := make([]types.TimeString, 0, len(c.TimeSlotTemplate))

	for _, entry := range c.TimeSlotTemplate {
		if !entry.IsActive {
			continue
		}
		if entry.Time.IsBefore(c.WorkHours.Start) || !entry.Time.IsBefore(c.WorkHours.End) {
			continue
		}
		if _, dup := seen[entry.Time]; dup {
			continue
		}
		seen[entry.Time] = struct{}{}
		times = append(times, entry.Time)
	}

	sort.Slice(times, func(i, j int) bool { return times[i].IsBefore(times[j]) })
	return times
}

// HasSpecialDate reports whether an override exists for the calendar day of date.
func (c *ScheduleConfiguration) HasSpecialDate(date time.Time) bool {
	_, ok := c.SpecialDateFor(date)
	return ok
}

// Validate checks the whole configuration. Errors wrap the sentinels above.
func (c *ScheduleConfiguration) Validate() error {
	if c.DayOff < time.Sunday || c.DayOff > time.Saturday {
		return ErrInvalidDayOff
	}

	if err := c.WorkHours.Start.Validate(); err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidWorkHours, err)
	}
	if err := c.WorkHours.End.Validate(); err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidWorkHours, err)
	}
	if !c.WorkHours.Start.IsBefore(c.WorkHours.End) {
		return ErrInvalidWorkHours
	}

	seenDates := make(map[string]struct{}, len(c.SpecialDates))
	for _, sd := range c.SpecialDates {
		if err := sd.Validate(); err != nil {
			return err
		}
		key := sd.Date.Format(DateFormat)
		if _, dup := seenDates[key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateDate, key)
		}
		seenDates[key] = struct{}{}
	}

	if len(c.TimeSlotTemplate) > MaxTemplateEntries {
		return fmt.Errorf("%w: at most %d entries", ErrInvalidTemplate, MaxTemplateEntries)
	}
	seenTimes := make(map[types.TimeString]struct{}, len(c.TimeSlotTemplate))
	for _, entry := range c.TimeSlotTemplate {
		if err := entry.Time.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
		}
		if _, dup := seenTimes[entry.Time]; dup {
			return fmt.Errorf("%w: duplicate time %s", ErrInvalidTemplate, entry.Time)
		}
		seenTimes[entry.Time] = struct{}{}
	}

	return nil
}

// Validate checks a single special date.
func (s SpecialDate) Validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidSpecialDate)
	}
	if len(s.Reason) > MaxSpecialDateReason {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidSpecialDate, MaxSpecialDateReason)
	}
	return nil
}

// SortSpecialDates orders overrides by date.
func (c *ScheduleConfiguration) SortSpecialDates() {
	sort.Slice(c.SpecialDates, func(i, j int) bool {
		return c.SpecialDates[i].Date.Before(c.SpecialDates[j].Date)
	})
}

// ParseWeekday accepts canonical weekday names case-insensitively ("Friday", "friday").
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(strings.TrimSpace(name), d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDayOff, name)
}

// ParseDate parses YYYY-MM-DD into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// DateOnly drops the time of day, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
